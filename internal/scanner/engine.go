package scanner

import (
	"context"
	"sync"

	"github.com/apisentinel/scanner/internal/config"
	"github.com/apisentinel/scanner/internal/probes"
	"github.com/apisentinel/scanner/internal/transport"
)

// Engine owns the worker pool and drives the per-target pipeline:
// discover endpoints, run every vulnerability test against each one,
// record findings, advance progress. The findings aggregator and the
// progress tracker are the only state shared between workers.
type Engine struct {
	config     config.Config
	client     *transport.Client
	strategies []probes.Strategy
	tests      []probes.Test
	findings   *Aggregator
	progress   *Progress
}

func NewEngine(cfg config.Config) *Engine {
	strategies := probes.FilterStrategies(probes.DefaultStrategies(cfg.CommonPaths), cfg.DisabledTests)
	tests := probes.FilterTests(probes.DefaultTests(), cfg.DisabledTests)
	return NewEngineWithProbes(cfg, strategies, tests)
}

// NewEngineWithProbes builds an engine around a custom probe registry.
// Adding a probe means appending to the registry; the pipeline itself
// never changes.
func NewEngineWithProbes(cfg config.Config, strategies []probes.Strategy, tests []probes.Test) *Engine {
	client := transport.New(transport.Options{
		Timeout:       cfg.Timeout,
		RateLimit:     cfg.RateLimit,
		RetryAttempts: cfg.RetryAttempts,
		MaxResponseMB: cfg.MaxResponseMB,
		Headers:       cfg.CustomHeaders,
	})

	return &Engine{
		config:     cfg,
		client:     client,
		strategies: strategies,
		tests:      tests,
		findings:   NewAggregator(),
		progress:   NewProgress(),
	}
}

// Findings exposes the aggregator for live reads and report emission.
// Partial results stay readable after an interrupted run.
func (e *Engine) Findings() *Aggregator {
	return e.findings
}

func (e *Engine) Progress() *Progress {
	return e.progress
}

func (e *Engine) Run(targets []string) error {
	return e.RunContext(context.Background(), targets)
}

// RunContext scans every target through a fixed-width worker pool. Each
// worker processes one target end-to-end before taking the next. On
// cancellation no new targets are dispatched, in-flight targets wind
// down, and whatever the aggregator holds remains available to the
// caller; the returned error is the context's.
func (e *Engine) RunContext(ctx context.Context, targets []string) error {
	e.progress.SetTotal(int64(len(targets)))

	targetCh := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < e.config.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.worker(ctx, targetCh)
		}()
	}

feed:
	for _, target := range targets {
		select {
		case <-ctx.Done():
			break feed
		default:
		}
		select {
		case targetCh <- target:
		case <-ctx.Done():
			break feed
		}
	}
	close(targetCh)

	wg.Wait()

	return ctx.Err()
}

func (e *Engine) worker(ctx context.Context, targets <-chan string) {
	for target := range targets {
		select {
		case <-ctx.Done():
			// Dispatched but abandoned; still counts as completed.
		default:
			e.processTarget(ctx, target)
		}
		e.progress.Advance()
	}
}

// processTarget runs the full pipeline for one target. Probe failures
// are absorbed inside the engines, so a target that yields nothing
// simply records nothing.
func (e *Engine) processTarget(ctx context.Context, target string) {
	endpoints := discover(ctx, target, e.strategies, e.client, e.config.Verbose)

	for _, endpoint := range endpoints {
		if ctx.Err() != nil {
			return
		}
		for _, result := range scanEndpoint(ctx, endpoint, e.tests, e.client, e.config.Verbose) {
			e.findings.Record(endpoint, result.Name, result.Details)
		}
	}
}
