package session

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultHTTPTimeout   = 30 * time.Second
	defaultRetryInterval = 250 * time.Millisecond
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithNowFunc overrides the clock used for expiry decisions.
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpClient = client
	}
}

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = logger
	}
}

// WithTokenURL overrides the configured token endpoint, e.g. with one found by DiscoverTokenURL.
func WithTokenURL(tokenURL string) ManagerOption {
	return func(m *Manager) {
		m.tokenURL = tokenURL
	}
}

// WithRefreshRetries retries the token endpoint up to n extra times with
// exponential backoff when it cannot be reached. Rejections are never retried.
func WithRefreshRetries(n uint64) ManagerOption {
	return func(m *Manager) {
		m.refreshRetries = n
	}
}

// WithRetryInterval sets the first backoff interval for WithRefreshRetries.
func WithRetryInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.retryInterval = d
	}
}
