package token

import (
	"sync"
	"time"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

// RevocationList remembers access tokens revoked before their exp, keyed by
// jti. An entry is only needed until the token's own exp; after that the
// token fails verification on expiry alone and the entry can be swept.
// Tokens ended by logout or session revocation are not listed here: the
// Inspector rejects them because their sid is no longer live.
type RevocationList interface {
	Revoke(jti string, exp time.Time) error
	IsRevoked(jti string) bool
	Sweep() int
	Len() int
}

type MemoryRevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

var _ RevocationList = (*MemoryRevocationList)(nil)

// NewMemoryRevocationList returns an empty list. now may be nil.
func NewMemoryRevocationList(now func() time.Time) *MemoryRevocationList {
	if now == nil {
		now = time.Now
	}
	return &MemoryRevocationList{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

// Revoke lists jti until exp. A token that has already expired is not
// recorded.
func (l *MemoryRevocationList) Revoke(jti string, exp time.Time) error {
	if jti == "" {
		return errors.Wrapf(errors.ErrInvalidToken, "token has no jti")
	}
	if !exp.After(l.now()) {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[jti] = exp
	return nil
}

func (l *MemoryRevocationList) IsRevoked(jti string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[jti]
	return ok
}

// Sweep drops entries whose token has expired and returns how many went.
func (l *MemoryRevocationList) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	removed := 0
	for jti, exp := range l.entries {
		if !exp.After(now) {
			delete(l.entries, jti)
			removed++
		}
	}
	return removed
}

func (l *MemoryRevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
