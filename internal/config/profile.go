package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is an optional YAML file that tunes a scan without command
// line flags. Zero values leave the corresponding flag untouched.
type Profile struct {
	Threads       int               `yaml:"threads"`
	Timeout       int               `yaml:"timeout"`
	RateLimit     int               `yaml:"rate_limit"`
	CommonPaths   []string          `yaml:"common_paths"`
	Headers       map[string]string `yaml:"headers"`
	DisabledTests []string          `yaml:"disabled_probes"`
}

func LoadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &p, nil
}

// Apply merges a profile into a parsed config. Flags win for headers
// (a -H flag overrides the same header from the profile).
func (p *Profile) Apply(config *Config) {
	if p.Threads > 0 {
		config.Threads = p.Threads
	}
	if p.Timeout > 0 {
		config.Timeout = p.Timeout
	}
	if p.RateLimit > 0 {
		config.RateLimit = p.RateLimit
	}
	if len(p.CommonPaths) > 0 {
		config.CommonPaths = p.CommonPaths
	}
	if len(p.DisabledTests) > 0 {
		config.DisabledTests = append(config.DisabledTests, p.DisabledTests...)
	}
	for key, value := range p.Headers {
		if _, ok := config.CustomHeaders[key]; !ok {
			config.CustomHeaders[key] = value
		}
	}
}
