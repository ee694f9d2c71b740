package apiclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = logger
	}
}

// WithMinValidity sets how long a token must remain valid before it is
// attached to a request. Defaults to 30s.
func WithMinValidity(d time.Duration) ClientOption {
	return func(c *Client) {
		c.minValidity = d
	}
}

// WithRetryAllMethods re-sends POST, PUT, PATCH and DELETE requests after a
// 401 refresh as well. Only use it when the backend tolerates a request
// being applied twice.
func WithRetryAllMethods() ClientOption {
	return func(c *Client) {
		c.retryAllMethods = true
	}
}

// WithRateLimit throttles outgoing attempts, retries included.
func WithRateLimit(limit rate.Limit, burst int) ClientOption {
	return func(c *Client) {
		if limit > 0 {
			c.limiter = rate.NewLimiter(limit, max(burst, 1))
		}
	}
}
