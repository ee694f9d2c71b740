package refresh

import (
	"time"
)

// StoredRefreshToken is the server-side record behind an opaque refresh
// token. The client only ever sees Token.
type StoredRefreshToken struct {
	Token     string
	UserID    string
	ClientID  string
	SessionID string // backend session the token belongs to
	Scope     string
	Iat       time.Time
}

// Repo stores refresh token metadata keyed by the token string.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	DeleteBySession(sessionID string) int
	DeleteByUser(userID string) int
}
