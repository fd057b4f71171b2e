package scanner

import (
	"strings"
	"sync"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Severities lists every bucket in report order. Low and info exist in
// the report schema but the current classification never fills them.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// Finding is one positive vulnerability-test result. Its severity is
// the bucket it lives in.
type Finding struct {
	Endpoint      string `json:"endpoint"`
	Vulnerability string `json:"vulnerability"`
	Details       string `json:"details"`
}

// Classify maps a test name to a severity bucket. First match wins:
// injection-class names are critical, object-level authorization names
// are high, everything else (including BFLA and Mass Assignment) lands
// in medium.
func Classify(vulnName string) Severity {
	switch {
	case strings.Contains(vulnName, "SQLi"):
		return SeverityCritical
	case strings.Contains(vulnName, "BOLA"):
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// Aggregator collects findings into severity buckets. Record is called
// concurrently from every worker; Snapshot may run alongside ongoing
// records and sees exactly the findings recorded before it took the
// lock.
type Aggregator struct {
	mu      sync.RWMutex
	buckets map[Severity][]Finding
}

func NewAggregator() *Aggregator {
	buckets := make(map[Severity][]Finding, len(Severities))
	for _, sev := range Severities {
		buckets[sev] = []Finding{}
	}
	return &Aggregator{buckets: buckets}
}

// Record classifies and stores one finding.
func (a *Aggregator) Record(endpoint, vulnName, details string) {
	severity := Classify(vulnName)
	finding := Finding{Endpoint: endpoint, Vulnerability: vulnName, Details: details}

	a.mu.Lock()
	a.buckets[severity] = append(a.buckets[severity], finding)
	a.mu.Unlock()
}

// Snapshot returns a deep copy of every bucket.
func (a *Aggregator) Snapshot() map[Severity][]Finding {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[Severity][]Finding, len(a.buckets))
	for sev, findings := range a.buckets {
		copied := make([]Finding, len(findings))
		copy(copied, findings)
		out[sev] = copied
	}
	return out
}

// Count returns the number of findings in one bucket.
func (a *Aggregator) Count(severity Severity) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.buckets[severity])
}

// Total returns the number of findings across all buckets.
func (a *Aggregator) Total() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	total := 0
	for _, findings := range a.buckets {
		total += len(findings)
	}
	return total
}
