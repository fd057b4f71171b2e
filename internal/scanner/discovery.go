package scanner

import (
	"context"
	"fmt"
	"os"

	"github.com/apisentinel/scanner/internal/probes"
	"github.com/apisentinel/scanner/internal/transport"
)

// discover runs every registered discovery strategy against the target
// in registration order and unions their output. A failing strategy is
// skipped; one broken heuristic never aborts discovery. The result is
// deduplicated by exact string and keeps first-seen order, so endpoint
// scan order is stable for the rest of the pipeline. Zero endpoints is
// a valid outcome, not an error.
func discover(ctx context.Context, target string, strategies []probes.Strategy, client *transport.Client, verbose bool) []string {
	seen := make(map[string]bool)
	var endpoints []string

	for _, strategy := range strategies {
		if ctx.Err() != nil {
			break
		}

		found, err := strategy.Run(ctx, target, client)
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "[discovery] %s failed for %s: %v\n", strategy.Name, target, err)
			}
			continue
		}

		for _, endpoint := range found {
			if !seen[endpoint] {
				seen[endpoint] = true
				endpoints = append(endpoints, endpoint)
			}
		}
	}

	return endpoints
}
