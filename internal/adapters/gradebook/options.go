package gradebook

import (
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/coursekit/mastery/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithPollInterval sets the bulk job polling interval.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithOutcomeTTL sets how long fetched outcomes are cached.
func WithOutcomeTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.outcomes = cache.New(ttl, ttl)
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
