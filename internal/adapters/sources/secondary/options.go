package secondary

import (
	"net/http"
	"time"

	"github.com/okian/ddrsync/internal/adapters/sources/httpclient"
	"github.com/okian/ddrsync/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.transport = append(cl.transport, httpclient.WithHTTPClient(c)) }
}

// WithBaseURL points the client at another host.
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.transport = append(cl.transport, httpclient.WithBaseURL(u)) }
}

// WithRateLimit caps requests per second.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) { cl.transport = append(cl.transport, httpclient.WithRateLimit(rps)) }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.transport = append(cl.transport, httpclient.WithUserAgent(ua)) }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.transport = append(cl.transport, httpclient.WithTimeout(d)) }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}
