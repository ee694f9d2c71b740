// Package sessions tracks backend login sessions. A session starts with a
// password grant and ends when it is revoked or its refresh token lapses.
package sessions

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Session struct {
	ID         string
	UserID     string
	Username   string
	ClientID   string
	IPAddress  string
	UserAgent  string
	Start      time.Time
	LastAccess time.Time
}

// NewID returns a lexically sortable session id.
func NewID() string {
	return ulid.Make().String()
}
