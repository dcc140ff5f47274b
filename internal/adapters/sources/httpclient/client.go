// Package httpclient is the rate-limited HTTP transport shared by the score source clients.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Default transport configuration constants.
const (
	defaultTimeout      = 15 * time.Second
	defaultUserAgent    = "ddrsync/1.0"
	defaultMaxBodyBytes = 32 << 20
)

// Settings collects the options shared by the source clients.
type Settings struct {
	HTTPClient        *http.Client
	BaseURL           string
	RequestsPerSecond float64
	UserAgent         string
	Timeout           time.Duration
}

// Option applies a configuration option to Settings.
type Option func(*Settings)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Settings) {
		if c != nil {
			s.HTTPClient = c
		}
	}
}

// WithBaseURL sets the scheme and host requests are sent to.
func WithBaseURL(u string) Option {
	return func(s *Settings) {
		if u != "" {
			s.BaseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRateLimit caps requests per second. Zero or less disables limiting.
func WithRateLimit(rps float64) Option {
	return func(s *Settings) {
		s.RequestsPerSecond = rps
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Settings) {
		if ua != "" {
			s.UserAgent = ua
		}
	}
}

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(s *Settings) {
		if d > 0 {
			s.Timeout = d
		}
	}
}

// Apply builds Settings from defaults and options.
func Apply(defaultBase string, opts ...Option) Settings {
	s := Settings{
		HTTPClient: http.DefaultClient,
		BaseURL:    defaultBase,
		UserAgent:  defaultUserAgent,
		Timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Client sends rate-limited requests relative to a base URL.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	base      string
	userAgent string
	timeout   time.Duration
}

// New creates a Client from settings.
func New(s Settings) *Client {
	limit := rate.Inf
	if s.RequestsPerSecond > 0 {
		limit = rate.Limit(s.RequestsPerSecond)
	}
	return &Client{
		http:      s.HTTPClient,
		limiter:   rate.NewLimiter(limit, 1),
		base:      s.BaseURL,
		userAgent: s.UserAgent,
		timeout:   s.Timeout,
	}
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	return c.base + path
}

// Do sends a request and returns the response body. A non-2xx status is
// returned as an error wrapping ErrStatus.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s: %d", ErrStatus, method, req.URL.Path, resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, defaultMaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}

// Get is Do with GET and no body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, path, nil, nil)
}
