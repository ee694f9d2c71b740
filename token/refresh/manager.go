package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager issues and rotates refresh tokens. Every successful Rotate
// invalidates the presented token.
type Manager struct {
	repo   Repo
	config config.OAuthConfig
}

func NewManager(repo Repo, cfg config.OAuthConfig) *Manager {
	return &Manager{
		repo:   repo,
		config: cfg,
	}
}

// Create issues a new refresh token bound to a backend session.
func (m *Manager) Create(clientID, userID, sessionID, scope string) (string, error) {
	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:     tokenStr,
		UserID:    userID,
		ClientID:  clientID,
		SessionID: sessionID,
		Scope:     scope,
		Iat:       NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Rotate consumes token and issues its replacement. The old token is
// deleted even when it turns out to be expired.
func (m *Manager) Rotate(token, clientID string) (*StoredRefreshToken, string, error) {
	rt, err := m.repo.Get(token)
	if err != nil {
		return nil, "", errors.ErrInvalidRefreshToken
	}
	if rt.ClientID != clientID {
		return nil, "", errors.Wrapf(errors.ErrInvalidRefreshToken, "issued to another client")
	}
	_ = m.repo.Delete(token)

	if m.IsExpired(rt) {
		return nil, "", errors.ErrRefreshTokenExpired
	}

	next, err := m.Create(rt.ClientID, rt.UserID, rt.SessionID, rt.Scope)
	if err != nil {
		return nil, "", err
	}
	return rt, next, nil
}

func (m *Manager) Get(token string) (*StoredRefreshToken, error) {
	return m.repo.Get(token)
}

func (m *Manager) Delete(token string) error {
	return m.repo.Delete(token)
}

// RevokeSession drops every refresh token of a backend session.
func (m *Manager) RevokeSession(sessionID string) int {
	return m.repo.DeleteBySession(sessionID)
}

func (m *Manager) RevokeUser(userID string) int {
	return m.repo.DeleteByUser(userID)
}

func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.config.GetDefaultRefreshTokenExpiry()
}
