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

func fixedStrategy(name string, endpoints ...string) probes.Strategy {
	return probes.Strategy{
		Name: name,
		Run: func(ctx context.Context, target string, client *transport.Client) ([]string, error) {
			return endpoints, nil
		},
	}
}

func failingStrategy(name string) probes.Strategy {
	return probes.Strategy{
		Name: name,
		Run: func(ctx context.Context, target string, client *transport.Client) ([]string, error) {
			return nil, errors.New("boom")
		},
	}
}

func TestDiscoverDeduplicates(t *testing.T) {
	strategies := []probes.Strategy{
		fixedStrategy("a", "http://t.com/api", "http://t.com/v1"),
		fixedStrategy("b", "http://t.com/api", "http://t.com/rest"),
	}

	endpoints := discover(context.Background(), "http://t.com", strategies, nil, false)

	assert.Equal(t, []string{"http://t.com/api", "http://t.com/v1", "http://t.com/rest"}, endpoints)
}

func TestDiscoverIdempotentUnion(t *testing.T) {
	strategies := []probes.Strategy{
		fixedStrategy("a", "http://t.com/api"),
		fixedStrategy("b", "http://t.com/api", "http://t.com/v1"),
	}

	first := discover(context.Background(), "http://t.com", strategies, nil, false)
	second := discover(context.Background(), "http://t.com", strategies, nil, false)

	assert.Equal(t, first, second)

	seen := make(map[string]int)
	for _, ep := range first {
		seen[ep]++
	}
	for ep, n := range seen {
		assert.Equal(t, 1, n, "endpoint %s appears more than once", ep)
	}
}

func TestDiscoverIsolatesFailures(t *testing.T) {
	strategies := []probes.Strategy{
		failingStrategy("broken"),
		fixedStrategy("working", "http://t.com/api"),
		failingStrategy("also-broken"),
	}

	endpoints := discover(context.Background(), "http://t.com", strategies, nil, false)

	require.Len(t, endpoints, 1)
	assert.Equal(t, "http://t.com/api", endpoints[0])
}

func TestDiscoverAllFailuresYieldEmptySet(t *testing.T) {
	strategies := []probes.Strategy{failingStrategy("a"), failingStrategy("b")}

	endpoints := discover(context.Background(), "http://t.com", strategies, nil, false)

	assert.Empty(t, endpoints)
}

func TestDiscoverStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	counting := probes.Strategy{
		Name: "counting",
		Run: func(ctx context.Context, target string, client *transport.Client) ([]string, error) {
			calls++
			cancel()
			return []string{"http://t.com/api"}, nil
		},
	}

	endpoints := discover(ctx, "http://t.com", []probes.Strategy{counting, counting}, nil, false)

	assert.Equal(t, 1, calls, "no strategy runs after cancellation")
	assert.Equal(t, []string{"http://t.com/api"}, endpoints)
}
