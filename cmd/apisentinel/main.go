package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apisentinel/scanner/internal/config"
	"github.com/apisentinel/scanner/internal/reporting"
	"github.com/apisentinel/scanner/internal/scanner"
	"github.com/apisentinel/scanner/internal/ui"
)

func main() {
	ui.PrintBanner()

	cfg := config.Parse()

	if cfg.Profile != "" {
		profile, err := config.LoadProfile(cfg.Profile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		profile.Apply(&cfg)
	}

	if err := config.Validate(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading targets: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d targets\n", len(targets))

	ui.PrintConfig(cfg, len(targets))

	engine := scanner.NewEngine(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\n[!] Received signal %s, generating partial report...\n", sig)
		cancel()
	}()

	fmt.Println("Starting scan...")

	start := time.Now()

	progressCtx, stopProgress := context.WithCancel(context.Background())
	go ui.StartProgressReporter(progressCtx, engine.Progress(), engine.Findings())

	runErr := engine.RunContext(ctx, targets)
	stopProgress()

	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		fmt.Fprintf(os.Stderr, "Scan error: %s\n", runErr)
	}

	snapshot := engine.Findings().Snapshot()

	if cfg.Verbose {
		ui.PrintFindings(snapshot)
	}

	ui.PrintSummary(engine.Progress(), engine.Findings())

	// Report emission is the one exit path, interrupted or not. Partial
	// results are always persisted.
	meta := reporting.NewMetadata(start, len(targets), engine.Progress().Completed(), interrupted)
	report := reporting.Build(snapshot, meta)

	path, err := reporting.Save(report, cfg.OutputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save report: %s\n", err)
		os.Exit(1)
	}
	ui.PrintReportSaved(path)

	if cfg.HTMLReport != "" {
		if err := reporting.GenerateHTML(report, cfg.HTMLReport); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate HTML: %s\n", err)
		} else {
			fmt.Printf("HTML report saved: %s\n", cfg.HTMLReport)
		}
	}
}
