package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TargetsFile   string
	OutputDir     string
	Threads       int
	Timeout       int
	CustomHeaders map[string]string
	RateLimit     int
	RetryAttempts int
	MaxResponseMB int
	CommonPaths   []string
	DisabledTests []string
	HTMLReport    string
	Profile       string
	Verbose       bool
}

// DefaultCommonPaths is the seed list for the common-paths discovery
// strategy. A scan profile can replace it.
var DefaultCommonPaths = []string{"/api", "/v1", "/graphql", "/rest", "/admin"}

type headerFlags []string

func (h *headerFlags) String() string {
	return strings.Join(*h, ", ")
}

func (h *headerFlags) Set(value string) error {
	*h = append(*h, value)
	return nil
}

func envOrDefault(envKey string, defaultVal int) int {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func Parse() Config {
	config := Config{
		CustomHeaders: make(map[string]string),
		CommonPaths:   DefaultCommonPaths,
	}

	var headers headerFlags

	flag.StringVar(&config.TargetsFile, "f", "", "File containing newline-separated targets (required)")
	flag.StringVar(&config.OutputDir, "o", "api_sentinel_results", "Output directory for reports")
	flag.IntVar(&config.Threads, "t", envOrDefault("APISENTINEL_THREADS", 5), "Number of concurrent workers")
	flag.IntVar(&config.Timeout, "timeout", envOrDefault("APISENTINEL_TIMEOUT", 5), "Request timeout in seconds")
	flag.Var(&headers, "H", "Custom header (can be used multiple times)")
	flag.IntVar(&config.RateLimit, "rate-limit", envOrDefault("APISENTINEL_RATE_LIMIT", 0), "Max requests per second per host (0=unlimited)")
	flag.IntVar(&config.RetryAttempts, "retries", 2, "Number of retry attempts for failed requests")
	flag.IntVar(&config.MaxResponseMB, "max-response-mb", 10, "Max response body size in MB")
	flag.StringVar(&config.HTMLReport, "html", "", "Also generate an HTML report at this path")
	flag.StringVar(&config.Profile, "profile", "", "Scan profile file (YAML)")
	flag.BoolVar(&config.Verbose, "v", false, "Verbose mode")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: apisentinel [options]\n\n")
		fmt.Fprintf(os.Stderr, "Required:\n")
		fmt.Fprintf(os.Stderr, "  -f string       File with target hosts/URLs, one per line\n\n")
		fmt.Fprintf(os.Stderr, "Optional:\n")
		fmt.Fprintf(os.Stderr, "  -o string       Output directory (default: api_sentinel_results)\n")
		fmt.Fprintf(os.Stderr, "  -t int          Concurrent workers (default: 5, env: APISENTINEL_THREADS)\n")
		fmt.Fprintf(os.Stderr, "  -H string       Custom headers (repeatable)\n")
		fmt.Fprintf(os.Stderr, "  --timeout int   Request timeout in seconds (default: 5, env: APISENTINEL_TIMEOUT)\n")
		fmt.Fprintf(os.Stderr, "  --rate-limit int Max req/s per host (default: 0, env: APISENTINEL_RATE_LIMIT)\n")
		fmt.Fprintf(os.Stderr, "  --retries int   Retry attempts (default: 2)\n")
		fmt.Fprintf(os.Stderr, "  --profile str   YAML scan profile (paths, headers, disabled probes)\n")
		fmt.Fprintf(os.Stderr, "  --html string   HTML report file\n")
		fmt.Fprintf(os.Stderr, "  -v              Verbose mode\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  apisentinel -f targets.txt\n")
		fmt.Fprintf(os.Stderr, "  apisentinel -f targets.txt -t 10 -o results --html report.html\n")
		fmt.Fprintf(os.Stderr, "  APISENTINEL_THREADS=20 apisentinel -f targets.txt --profile api.yaml\n")
	}

	flag.Parse()

	for _, h := range headers {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			config.CustomHeaders[key] = value
		}
	}

	return config
}

func Validate(config *Config) error {
	if config.TargetsFile == "" {
		return fmt.Errorf("targets file is required (-f). Provide a file with one host per line")
	}

	if _, err := os.Stat(config.TargetsFile); os.IsNotExist(err) {
		return fmt.Errorf("targets file not found: %s. Check the path and try again", config.TargetsFile)
	}

	if config.Threads <= 0 {
		return fmt.Errorf("threads must be positive, got %d. Use -t to set (default: 5)", config.Threads)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d. Use --timeout to set (default: 5)", config.Timeout)
	}

	if config.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}

	return nil
}

// LoadTargets reads one target per line, skipping blank lines and
// comments. Entries are not validated; whatever is written in the file
// is handed to discovery as-is.
func LoadTargets(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var targets []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		target := strings.TrimSpace(scanner.Text())
		if target != "" && !strings.HasPrefix(target, "#") {
			targets = append(targets, target)
		}
	}

	return targets, scanner.Err()
}
