package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/apisentinel/scanner/internal/probes"
	"github.com/apisentinel/scanner/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTest(name, details string) probes.Test {
	return probes.Test{
		Name: name,
		Run: func(ctx context.Context, endpoint string, client *transport.Client) (string, error) {
			return details, nil
		},
	}
}

func failingTest(name string) probes.Test {
	return probes.Test{
		Name: name,
		Run: func(ctx context.Context, endpoint string, client *transport.Client) (string, error) {
			return "", errors.New("timeout")
		},
	}
}

func TestScanEndpointRegistrationOrder(t *testing.T) {
	tests := []probes.Test{
		fixedTest("BOLA", "ids readable"),
		fixedTest("BFLA", "admin reachable"),
		fixedTest("SQLi", "error leaked"),
	}

	results := scanEndpoint(context.Background(), "http://t.com/api", tests, nil, false)

	require.Len(t, results, 3)
	assert.Equal(t, "BOLA", results[0].Name)
	assert.Equal(t, "BFLA", results[1].Name)
	assert.Equal(t, "SQLi", results[2].Name)
}

func TestScanEndpointSkipsNegativeResults(t *testing.T) {
	tests := []probes.Test{
		fixedTest("BOLA", ""),
		fixedTest("SQLi", "error leaked"),
		fixedTest("BFLA", ""),
	}

	results := scanEndpoint(context.Background(), "http://t.com/api", tests, nil, false)

	require.Len(t, results, 1)
	assert.Equal(t, "SQLi", results[0].Name)
	assert.Equal(t, "error leaked", results[0].Details)
}

func TestScanEndpointIsolatesFailures(t *testing.T) {
	tests := []probes.Test{
		failingTest("broken"),
		fixedTest("SQLi", "error leaked"),
	}

	results := scanEndpoint(context.Background(), "http://t.com/api", tests, nil, false)

	require.Len(t, results, 1)
	assert.Equal(t, "SQLi", results[0].Name)
}

func TestScanEndpointAllFailed(t *testing.T) {
	tests := []probes.Test{failingTest("a"), failingTest("b")}

	results := scanEndpoint(context.Background(), "http://t.com/api", tests, nil, false)

	assert.Empty(t, results)
}
