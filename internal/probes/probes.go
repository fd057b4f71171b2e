// Package probes holds the pluggable probe registry: the discovery
// strategies that resolve API endpoints under a target, and the
// vulnerability tests that run against each resolved endpoint. Probes
// report failure as an ordinary error; the scan engines skip failed
// probes and keep going.
package probes

import (
	"context"

	"github.com/apisentinel/scanner/internal/transport"
)

type Kind string

const (
	KindDiscovery Kind = "discovery"
	KindTest      Kind = "test"
)

// DiscoveryFunc resolves candidate endpoints under a target. An empty
// slice and a nil error means the strategy ran clean and found nothing.
type DiscoveryFunc func(ctx context.Context, target string, client *transport.Client) ([]string, error)

// TestFunc checks a single endpoint for one vulnerability class. Empty
// details with a nil error means no finding.
type TestFunc func(ctx context.Context, endpoint string, client *transport.Client) (string, error)

type Strategy struct {
	Name string
	Run  DiscoveryFunc
}

type Test struct {
	Name string
	Run  TestFunc
}

// DefaultStrategies returns the discovery registry in its fixed
// registration order. commonPaths seeds the path-probing strategy.
func DefaultStrategies(commonPaths []string) []Strategy {
	return []Strategy{
		{Name: "common-paths", Run: CommonPaths(commonPaths)},
		{Name: "js-files", Run: JSFiles},
		{Name: "swagger", Run: Swagger},
		{Name: "graphql", Run: GraphQL},
	}
}

// DefaultTests returns the vulnerability test registry in its fixed
// registration order.
func DefaultTests() []Test {
	return []Test{
		{Name: "BOLA", Run: TestBOLA},
		{Name: "BFLA", Run: TestBFLA},
		{Name: "Mass Assignment", Run: TestMassAssignment},
		{Name: "SQLi", Run: TestSQLi},
		{Name: "Exposed Secrets", Run: TestExposedSecrets},
	}
}

// FilterStrategies drops strategies listed in disabled.
func FilterStrategies(strategies []Strategy, disabled []string) []Strategy {
	if len(disabled) == 0 {
		return strategies
	}
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}
	var kept []Strategy
	for _, s := range strategies {
		if !skip[s.Name] {
			kept = append(kept, s)
		}
	}
	return kept
}

// FilterTests drops tests listed in disabled.
func FilterTests(tests []Test, disabled []string) []Test {
	if len(disabled) == 0 {
		return tests
	}
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}
	var kept []Test
	for _, t := range tests {
		if !skip[t.Name] {
			kept = append(kept, t)
		}
	}
	return kept
}
