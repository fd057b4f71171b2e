package scanner

import (
	"context"
	"fmt"
	"os"

	"github.com/apisentinel/scanner/internal/probes"
	"github.com/apisentinel/scanner/internal/transport"
)

// TestResult is one positive vulnerability-test result for an endpoint.
type TestResult struct {
	Name    string
	Details string
}

// scanEndpoint runs every registered test against the endpoint in
// registration order. Failing tests are skipped under the same
// isolation policy as discovery; only tests that return details
// contribute to the output, in registration order.
func scanEndpoint(ctx context.Context, endpoint string, tests []probes.Test, client *transport.Client, verbose bool) []TestResult {
	var results []TestResult

	for _, test := range tests {
		if ctx.Err() != nil {
			break
		}

		details, err := test.Run(ctx, endpoint, client)
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "[scan] %s failed for %s: %v\n", test.Name, endpoint, err)
			}
			continue
		}
		if details != "" {
			results = append(results, TestResult{Name: test.Name, Details: details})
		}
	}

	return results
}
