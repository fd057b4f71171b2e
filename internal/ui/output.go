package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/apisentinel/scanner/internal/config"
	"github.com/apisentinel/scanner/internal/scanner"
	"github.com/fatih/color"
)

var (
	colorRed     = color.New(color.FgRed).SprintFunc()
	colorGreen   = color.New(color.FgGreen).SprintFunc()
	colorYellow  = color.New(color.FgYellow).SprintFunc()
	colorBlue    = color.New(color.FgBlue).SprintFunc()
	colorCyan    = color.New(color.FgCyan).SprintFunc()
	colorMagenta = color.New(color.FgMagenta).SprintFunc()
	boldWhite    = color.New(color.FgWhite, color.Bold).SprintFunc()
)

func PrintBanner() {
	banner := `
   ___   _____   ___  _  _  _____  _   _  _____
  / _ \ |  _  \ / _ \| \| ||_   _|| | | ||_   _|
 / /_\ \| | | |/ /_\ \ .  |  | |  | |_| |  | |
 |  _  || | | ||  _  || |\ |  | |  |  _  |  | |
 | | | || |/ / | | | || | \ | _| |_ | | | |  | |
 \_| |_/|___/  \_| |_/\_| \_/ \___/ \_| |_/  \_/
`
	fmt.Println(colorCyan(banner))
	fmt.Printf("  %s  API Security Assessment Toolkit\n\n", boldWhite("API Sentinel v3.0"))
}

func PrintConfig(cfg config.Config, targetCount int) {
	fmt.Printf("%s\n", boldWhite("Scan Configuration"))
	fmt.Printf("  Targets     %d\n", targetCount)
	fmt.Printf("  Workers     %d\n", cfg.Threads)
	fmt.Printf("  Timeout     %ds\n", cfg.Timeout)
	fmt.Printf("  Output      %s\n", cfg.OutputDir)
	if cfg.RateLimit > 0 {
		fmt.Printf("  Rate Limit  %d req/s\n", cfg.RateLimit)
	}
	if cfg.Profile != "" {
		fmt.Printf("  Profile     %s\n", cfg.Profile)
	}
	if len(cfg.DisabledTests) > 0 {
		fmt.Printf("  Disabled    %v\n", cfg.DisabledTests)
	}
	fmt.Println()
}

// StartProgressReporter redraws the live progress line until the
// context is cancelled. It reads both trackers; neither read blocks
// the workers.
func StartProgressReporter(ctx context.Context, progress *scanner.Progress, findings *scanner.Aggregator) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Print("\r\033[K")
			return
		case <-ticker.C:
			printProgressLine(progress, findings)
		}
	}
}

func printProgressLine(progress *scanner.Progress, findings *scanner.Aggregator) {
	fmt.Printf("\r%s %.2f%% | Found: %s | %s | %s   ",
		colorYellow("[Progress]"),
		progress.Percent(),
		colorGreen(fmt.Sprintf("%d crit", findings.Count(scanner.SeverityCritical))),
		colorRed(fmt.Sprintf("%d high", findings.Count(scanner.SeverityHigh))),
		colorBlue(fmt.Sprintf("%d med", findings.Count(scanner.SeverityMedium))))
}

// PrintFindings lists every bucketed finding, worst first.
func PrintFindings(snapshot map[scanner.Severity][]scanner.Finding) {
	for _, severity := range scanner.Severities {
		for _, f := range snapshot[severity] {
			fmt.Printf("[%s] %s %s: %s\n",
				severityLabel(severity), f.Endpoint, colorMagenta(f.Vulnerability), f.Details)
		}
	}
}

func severityLabel(severity scanner.Severity) string {
	switch severity {
	case scanner.SeverityCritical:
		return colorRed("CRITICAL")
	case scanner.SeverityHigh:
		return colorYellow("HIGH")
	case scanner.SeverityMedium:
		return colorBlue("MEDIUM")
	case scanner.SeverityLow:
		return colorGreen("LOW")
	default:
		return colorCyan("INFO")
	}
}

func PrintSummary(progress *scanner.Progress, findings *scanner.Aggregator) {
	elapsed := time.Since(progress.StartTime)

	fmt.Println()
	fmt.Printf("%s\n", boldWhite("Scan Complete"))
	fmt.Printf("  Targets     %d/%d\n", progress.Completed(), progress.Total())
	fmt.Printf("  Critical    %s\n", colorRed(fmt.Sprintf("%d", findings.Count(scanner.SeverityCritical))))
	fmt.Printf("  High        %s\n", colorYellow(fmt.Sprintf("%d", findings.Count(scanner.SeverityHigh))))
	fmt.Printf("  Medium      %s\n", colorBlue(fmt.Sprintf("%d", findings.Count(scanner.SeverityMedium))))
	fmt.Printf("  Duration    %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()
}

func PrintReportSaved(path string) {
	fmt.Printf("%s Report generated: %s\n", colorGreen("[+]"), path)
}
