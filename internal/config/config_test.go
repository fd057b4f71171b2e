package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func validConfig(t *testing.T) Config {
	return Config{
		TargetsFile: writeTempFile(t, "http://a.com\n"),
		OutputDir:   "out",
		Threads:     5,
		Timeout:     5,
	}
}

func TestValidateOK(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, Validate(&cfg))
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing targets file flag", func(c *Config) { c.TargetsFile = "" }},
		{"targets file not found", func(c *Config) { c.TargetsFile = "/nonexistent/targets.txt" }},
		{"zero threads", func(c *Config) { c.Threads = 0 }},
		{"negative threads", func(c *Config) { c.Threads = -1 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)
			assert.Error(t, Validate(&cfg))
		})
	}
}

func TestLoadTargets(t *testing.T) {
	path := writeTempFile(t, "http://a.com\n\n  \n# comment\napi.b.com\nnot a url but passed through\n")

	targets, err := LoadTargets(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.com", "api.b.com", "not a url but passed through"}, targets)
}

func TestLoadTargetsNotFound(t *testing.T) {
	_, err := LoadTargets("/nonexistent/targets.txt")
	assert.Error(t, err)
}

func TestLoadProfile(t *testing.T) {
	path := writeTempFile(t, `
threads: 10
timeout: 3
common_paths:
  - /internal-api
  - /v3
headers:
  X-Api-Key: secret
disabled_probes:
  - js-files
  - BFLA
`)

	profile, err := LoadProfile(path)
	require.NoError(t, err)

	cfg := Config{
		Threads:       5,
		Timeout:       5,
		CommonPaths:   DefaultCommonPaths,
		CustomHeaders: map[string]string{"X-Api-Key": "from-flag"},
	}
	profile.Apply(&cfg)

	assert.Equal(t, 10, cfg.Threads)
	assert.Equal(t, 3, cfg.Timeout)
	assert.Equal(t, []string{"/internal-api", "/v3"}, cfg.CommonPaths)
	assert.Equal(t, []string{"js-files", "BFLA"}, cfg.DisabledTests)
	assert.Equal(t, "from-flag", cfg.CustomHeaders["X-Api-Key"], "flags win over profile headers")
}

func TestLoadProfileInvalidYAML(t *testing.T) {
	path := writeTempFile(t, "threads: [not an int")
	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestProfileZeroValuesLeaveConfigUntouched(t *testing.T) {
	profile := &Profile{}
	cfg := Config{Threads: 5, Timeout: 5, CommonPaths: DefaultCommonPaths}
	profile.Apply(&cfg)

	assert.Equal(t, 5, cfg.Threads)
	assert.Equal(t, 5, cfg.Timeout)
	assert.Equal(t, DefaultCommonPaths, cfg.CommonPaths)
}
