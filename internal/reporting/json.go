package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/apisentinel/scanner/internal/scanner"
	"github.com/google/uuid"
)

const ReportFileName = "api_sentinel_report.json"

// Report is the persisted scan document. The severity buckets are the
// schema contract: every key is always present, empty buckets included.
// low and info are reserved by the classification policy and stay
// empty today.
type Report struct {
	SchemaVersion string            `json:"schema_version"`
	RunID         string            `json:"run_id"`
	Metadata      Metadata          `json:"metadata"`
	Critical      []scanner.Finding `json:"critical"`
	High          []scanner.Finding `json:"high"`
	Medium        []scanner.Finding `json:"medium"`
	Low           []scanner.Finding `json:"low"`
	Info          []scanner.Finding `json:"info"`
}

type Metadata struct {
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	TargetCount      int    `json:"target_count"`
	CompletedTargets int64  `json:"completed_targets"`
	Interrupted      bool   `json:"interrupted"`
	TotalFindings    int    `json:"total_findings"`
	Version          string `json:"version"`
}

// Build assembles a report from an aggregator snapshot. Nil bucket
// slices are normalized so the JSON always carries [] rather than null.
func Build(snapshot map[scanner.Severity][]scanner.Finding, meta Metadata) Report {
	total := 0
	for _, findings := range snapshot {
		total += len(findings)
	}
	meta.TotalFindings = total

	return Report{
		SchemaVersion: "1.0",
		RunID:         uuid.NewString(),
		Metadata:      meta,
		Critical:      bucket(snapshot, scanner.SeverityCritical),
		High:          bucket(snapshot, scanner.SeverityHigh),
		Medium:        bucket(snapshot, scanner.SeverityMedium),
		Low:           bucket(snapshot, scanner.SeverityLow),
		Info:          bucket(snapshot, scanner.SeverityInfo),
	}
}

func bucket(snapshot map[scanner.Severity][]scanner.Finding, sev scanner.Severity) []scanner.Finding {
	findings := snapshot[sev]
	if findings == nil {
		return []scanner.Finding{}
	}
	return findings
}

// Save writes the report into the output directory, creating it if
// needed, and returns the report path.
func Save(report Report, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(outputDir, ReportFileName)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(report); err != nil {
		return "", err
	}
	return path, nil
}

// NewMetadata fills the run timing fields.
func NewMetadata(start time.Time, targetCount int, completed int64, interrupted bool) Metadata {
	return Metadata{
		StartTime:        start.Format(time.RFC3339),
		EndTime:          time.Now().Format(time.RFC3339),
		TargetCount:      targetCount,
		CompletedTargets: completed,
		Interrupted:      interrupted,
		Version:          "3.0.0",
	}
}
