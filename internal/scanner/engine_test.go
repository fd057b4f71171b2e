package scanner

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/apisentinel/scanner/internal/config"
	"github.com/apisentinel/scanner/internal/probes"
	"github.com/apisentinel/scanner/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(threads int) config.Config {
	return config.Config{
		Threads:       threads,
		Timeout:       5,
		RetryAttempts: 0,
		MaxResponseMB: 10,
		CommonPaths:   config.DefaultCommonPaths,
	}
}

// vulnerableAPIServer exposes /api and leaks a database error when the
// SQLi probe appends its quote.
func vulnerableAPIServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api" || r.Method != http.MethodGet {
			w.WriteHeader(404)
			return
		}
		if r.URL.Query().Get("id") == "1'" {
			w.WriteHeader(500)
			w.Write([]byte("You have an error in your SQL syntax near ''1'''"))
			return
		}
		w.WriteHeader(200)
		w.Write([]byte(`{"status":"ok"}`))
	}))
}

func TestEngineEndToEnd(t *testing.T) {
	server := vulnerableAPIServer()
	defer server.Close()

	engine := NewEngine(testConfig(2))
	err := engine.Run([]string{server.URL})
	require.NoError(t, err)

	snapshot := engine.Findings().Snapshot()
	require.Len(t, snapshot[SeverityCritical], 1)
	assert.Equal(t, "SQLi", snapshot[SeverityCritical][0].Vulnerability)
	assert.Equal(t, server.URL+"/api", snapshot[SeverityCritical][0].Endpoint)

	assert.Equal(t, int64(1), engine.Progress().Completed())
	assert.Equal(t, 100.0, engine.Progress().Percent())
}

func TestEngineMultipleTargets(t *testing.T) {
	server1 := vulnerableAPIServer()
	defer server1.Close()
	server2 := vulnerableAPIServer()
	defer server2.Close()

	engine := NewEngine(testConfig(2))
	err := engine.Run([]string{server1.URL, server2.URL})
	require.NoError(t, err)

	assert.Equal(t, 2, engine.Findings().Count(SeverityCritical))
	assert.Equal(t, int64(2), engine.Progress().Completed())
}

func TestEngineTargetFailureDoesNotAbortRun(t *testing.T) {
	server := vulnerableAPIServer()
	defer server.Close()

	// First target is unreachable; it must still count as completed.
	engine := NewEngine(testConfig(1))
	err := engine.Run([]string{"http://127.0.0.1:1", server.URL})
	require.NoError(t, err)

	assert.Equal(t, 1, engine.Findings().Count(SeverityCritical))
	assert.Equal(t, int64(2), engine.Progress().Completed())
}

func TestEngineZeroTargets(t *testing.T) {
	engine := NewEngine(testConfig(2))
	err := engine.Run(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, engine.Findings().Total())
	assert.Equal(t, 0.0, engine.Progress().Percent())
}

func TestEnginePartialResultsOnInterrupt(t *testing.T) {
	const totalTargets = 10
	const cancelAfter = 3

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategy := probes.Strategy{
		Name: "one-endpoint",
		Run: func(ctx context.Context, target string, client *transport.Client) ([]string, error) {
			return []string{target + "/api"}, nil
		},
	}

	var mu sync.Mutex
	scanned := 0
	test := probes.Test{
		Name: "SQLi",
		Run: func(ctx context.Context, endpoint string, client *transport.Client) (string, error) {
			mu.Lock()
			scanned++
			if scanned == cancelAfter {
				cancel()
			}
			mu.Unlock()
			return "error leaked", nil
		},
	}

	engine := NewEngineWithProbes(testConfig(1), []probes.Strategy{strategy}, []probes.Test{test})

	targets := make([]string, totalTargets)
	for i := range targets {
		targets[i] = fmt.Sprintf("http://t%d.example", i)
	}

	err := engine.RunContext(ctx, targets)
	assert.ErrorIs(t, err, context.Canceled)

	// Exactly the findings recorded before the interrupt survive.
	assert.Equal(t, cancelAfter, engine.Findings().Count(SeverityCritical))
	assert.Less(t, engine.Progress().Completed(), int64(totalTargets))
	assert.GreaterOrEqual(t, engine.Progress().Completed(), int64(cancelAfter))
}

func TestEngineFindingsSurviveCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(testConfig(2))
	err := engine.RunContext(ctx, []string{"http://t.example"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, engine.Findings().Snapshot(), "aggregator stays readable after cancellation")
}

func TestEngineDisabledProbes(t *testing.T) {
	server := vulnerableAPIServer()
	defer server.Close()

	cfg := testConfig(1)
	cfg.DisabledTests = []string{"SQLi"}

	engine := NewEngine(cfg)
	err := engine.Run([]string{server.URL})
	require.NoError(t, err)

	assert.Equal(t, 0, engine.Findings().Count(SeverityCritical))
}
