package usagym

import (
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout bounds each upstream request. Expiry surfaces as a
// transport-level *FetchError, never a crash.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}
