package probes

import (
	"regexp"
	"strings"
)

type secretPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

type SecretMatch struct {
	Name     string
	Redacted string
}

// secretPatterns covers the credential material most often left in API
// responses. Kept lean; this is a tripwire, not a secrets scanner.
var secretPatterns = []secretPattern{
	{Name: "AWS Access Key", Pattern: regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{Name: "Private Key", Pattern: regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----`)},
	{Name: "JWT Token", Pattern: regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{Name: "Google API Key", Pattern: regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`)},
	{Name: "GitHub Token", Pattern: regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,255}`)},
	{Name: "Stripe Secret Key", Pattern: regexp.MustCompile(`sk_live_[0-9a-zA-Z]{24,}`)},
	{Name: "Slack Token", Pattern: regexp.MustCompile(`xox[baprs]-[0-9]{10,13}-[0-9]{10,13}-[a-zA-Z0-9]{24,}`)},
	{Name: "Database Connection String", Pattern: regexp.MustCompile(`(?i)(postgres|mysql|mongodb|redis)://[^\s"']+:[^\s"']+@[^\s"']+`)},
}

// DetectSecrets returns one match per pattern name, with the matched
// value redacted for safe inclusion in reports.
func DetectSecrets(content string) []SecretMatch {
	var found []SecretMatch
	seen := make(map[string]bool)

	for _, p := range secretPatterns {
		if seen[p.Name] {
			continue
		}
		match := p.Pattern.FindString(content)
		if match == "" {
			continue
		}
		seen[p.Name] = true
		found = append(found, SecretMatch{Name: p.Name, Redacted: redact(match)})
	}

	return found
}

func redact(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
