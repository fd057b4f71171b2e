package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultUserAgent = "APISentinel/3.0"

// Options configures a Client. Timeout is in seconds and bounds every
// individual probe request.
type Options struct {
	Timeout       int
	RateLimit     int
	RetryAttempts int
	MaxResponseMB int
	Headers       map[string]string
}

// Client is the shared HTTP session used by every probe. It applies the
// scanner's default headers, per-host rate limits, bounded retries and a
// per-host circuit breaker so one dead target cannot eat the retry
// budget of the whole run.
type Client struct {
	httpClient   *http.Client
	headers      map[string]string
	rateLimit    int
	limiters     map[string]*rate.Limiter
	limitersMu   sync.Mutex
	retries      int
	maxBodyBytes int64
	breaker      *breaker
	rng          *rand.Rand
	rngMu        sync.Mutex
}

type breaker struct {
	mu           sync.Mutex
	failures     map[string]int
	lastFailure  map[string]time.Time
	threshold    int
	resetTimeout time.Duration
}

func New(opts Options) *Client {
	timeout := time.Duration(opts.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	maxBodyMB := opts.MaxResponseMB
	if maxBodyMB <= 0 {
		maxBodyMB = 10
	}

	headers := map[string]string{
		"User-Agent": defaultUserAgent,
		"Accept":     "application/json",
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   20,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: timeout,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
			// Probes judge the raw status code; redirects are never followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		headers:      headers,
		rateLimit:    opts.RateLimit,
		limiters:     make(map[string]*rate.Limiter),
		retries:      opts.RetryAttempts,
		maxBodyBytes: int64(maxBodyMB) * 1024 * 1024,
		breaker: &breaker{
			failures:     make(map[string]int),
			lastFailure:  make(map[string]time.Time),
			threshold:    10,
			resetTimeout: 30 * time.Second,
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Get issues a GET with the session defaults applied.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, []byte, error) {
	return c.Request(ctx, http.MethodGet, rawURL, nil, "")
}

// PostJSON issues a POST with a JSON payload.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload []byte) (*http.Response, []byte, error) {
	return c.Request(ctx, http.MethodPost, rawURL, payload, "application/json")
}

// Request builds and executes a request with the session defaults. The
// response body is fully read (bounded) and the response is returned
// with its body already closed.
func (c *Client) Request(ctx context.Context, method, rawURL string, payload []byte, contentType string) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, nil, err
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.Do(req)
}

// Do executes a prepared request with rate limiting, retries and the
// circuit breaker.
func (c *Client) Do(req *http.Request) (*http.Response, []byte, error) {
	ctx := req.Context()

	parsed, err := url.Parse(req.URL.String())
	if err != nil {
		return nil, nil, err
	}
	host := parsed.Host

	if c.breaker.isOpen(host) {
		return nil, nil, fmt.Errorf("circuit breaker open for host: %s", host)
	}

	if limiter := c.limiterFor(host); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limiter cancelled: %w", err)
		}
	}

	// POST bodies need to be replayable across retries.
	var payload []byte
	if req.Body != nil {
		payload, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, nil, err
		}
	}

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(c.backoff(attempt - 1)):
			}
		}

		if payload != nil {
			req.Body = io.NopCloser(bytes.NewReader(payload))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == c.retries {
				c.breaker.recordFailure(host)
				return nil, nil, err
			}
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
		resp.Body.Close()
		if err != nil {
			if attempt == c.retries {
				c.breaker.recordFailure(host)
				return nil, nil, err
			}
			continue
		}

		if resp.StatusCode >= 500 {
			c.breaker.recordFailure(host)
			if attempt == c.retries {
				return resp, body, nil
			}
			continue
		}

		c.breaker.recordSuccess(host)
		return resp, body, nil
	}

	return nil, nil, fmt.Errorf("request failed after %d attempts", c.retries+1)
}

func (c *Client) limiterFor(host string) *rate.Limiter {
	if c.rateLimit <= 0 {
		return nil
	}

	c.limitersMu.Lock()
	defer c.limitersMu.Unlock()

	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(c.rateLimit), 1)
		c.limiters[host] = limiter
	}
	return limiter
}

func (c *Client) backoff(attempt int) time.Duration {
	ceiling := 10 * time.Second
	base := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if base > ceiling {
		base = ceiling
	}
	c.rngMu.Lock()
	d := time.Duration(c.rng.Int63n(int64(base)))
	c.rngMu.Unlock()
	return d
}

func (b *breaker) isOpen(host string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if last, ok := b.lastFailure[host]; ok {
		if time.Since(last) > b.resetTimeout {
			delete(b.failures, host)
			delete(b.lastFailure, host)
			return false
		}
	}

	return b.failures[host] >= b.threshold
}

func (b *breaker) recordFailure(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[host]++
	b.lastFailure[host] = time.Now()
}

func (b *breaker) recordSuccess(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, host)
	delete(b.lastFailure, host)
}
