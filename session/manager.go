package session

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// State is the session lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "Authenticated"
	}
	return "Unauthenticated"
}

const refreshKey = "refresh"

// Manager owns the live credential. It decides when the access token is
// stale, acquires and refreshes tokens, and keeps the token store in step
// with memory. A Manager is safe for concurrent use; concurrent refreshes
// share one round trip to the token endpoint.
type Manager struct {
	store     token.Store
	exchanger *exchanger
	log       zerolog.Logger
	now       func() time.Time

	httpClient     *http.Client
	tokenURL       string
	refreshRetries uint64
	retryInterval  time.Duration

	mu     sync.RWMutex
	cred   token.Credential
	claims *token.Claims
	// gen changes whenever the live credential is replaced or dropped. A
	// refresh only lands if gen is unchanged since it read the refresh token.
	gen uint64

	refreshGroup singleflight.Group
}

// New creates a Manager in the Unauthenticated state. Call Restore to adopt a
// persisted credential.
func New(store token.Store, cfg config.OAuthConfig, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[session.New] token store is required")
	}
	if cfg == nil {
		return nil, errors.New("[session.New] oauth config is required")
	}

	m := &Manager{
		store:         store,
		log:           log.Logger,
		now:           time.Now,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.httpClient == nil {
		m.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if m.tokenURL == "" {
		m.tokenURL = cfg.GetTokenURL()
	}
	if m.tokenURL == "" {
		return nil, errors.New("[session.New] token endpoint is required")
	}
	if cfg.GetClientID() == "" {
		return nil, errors.New("[session.New] client id is required")
	}

	m.exchanger = newExchanger(m.tokenURL, cfg.GetClientID(), cfg.GetClientSecret(), cfg.GetScopes(), m.httpClient, m.refreshRetries, m.retryInterval)
	m.log = m.log.With().Str("component", "session").Logger()
	return m, nil
}

// TokenURL returns the token endpoint in use.
func (m *Manager) TokenURL() string {
	return m.tokenURL
}

// Restore adopts the persisted credential when its access token has not yet
// expired. No grace period is applied. Anything unusable (expired,
// malformed, or partial) is cleared from the store.
func (m *Manager) Restore() bool {
	cred, err := m.store.Load()
	if errors.Is(err, errors.ErrNotFound) {
		return false
	}
	if err != nil {
		m.log.Warn().Err(err).Msg("discarding unreadable stored credential")
		m.clear()
		return false
	}

	claims, err := token.ParseClaims(cred.AccessToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("discarding malformed stored credential")
		m.clear()
		return false
	}
	if claims.Expired(m.now()) {
		m.log.Debug().Time("exp", claims.Expiry()).Msg("stored credential has expired")
		m.clear()
		return false
	}

	m.mu.Lock()
	m.cred, m.claims = cred, claims
	m.gen++
	m.mu.Unlock()

	m.log.Info().Str("sub", claims.Subject).Time("exp", claims.Expiry()).Msg("session restored")
	return true
}

// PasswordLogin exchanges a username and password for a new credential,
// adopts it and persists it. A rejection by the identity provider is an
// *AuthError of kind InvalidCredentials carrying the response body.
func (m *Manager) PasswordLogin(ctx context.Context, username, password string) (token.Credential, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return token.Credential{}, &AuthError{Kind: InvalidCredentials, Err: errors.New("username and password are required")}
	}

	cred, err := m.exchanger.password(ctx, username, password)
	if err != nil {
		if status, body, ok := rejection(err); ok {
			m.log.Info().Str("username", username).Int("status", status).Msg("password grant rejected")
			return token.Credential{}, &AuthError{Kind: InvalidCredentials, StatusCode: status, Body: body, Err: err}
		}
		return token.Credential{}, errors.Wrapf(err, "password grant")
	}

	claims, err := token.ParseClaims(cred.AccessToken)
	if err != nil {
		return token.Credential{}, errors.Wrapf(err, "password grant")
	}

	m.adopt(cred, claims)
	m.log.Info().Str("sub", claims.Subject).Time("exp", claims.Expiry()).Msg("logged in")
	return cred, nil
}

// GetValidToken returns the access token if it stays valid for more than
// minValidity. Otherwise it refreshes exactly once. A failed refresh clears
// the credential and returns an *AuthError of kind NoValidToken.
func (m *Manager) GetValidToken(ctx context.Context, minValidity time.Duration) (string, error) {
	m.mu.RLock()
	accessToken, claims := m.cred.AccessToken, m.claims
	m.mu.RUnlock()

	if claims != nil && claims.ValidFor(m.now(), minValidity) {
		return accessToken, nil
	}
	return m.refresh(ctx)
}

// ForceRefresh refreshes regardless of the local expiry, for tokens the
// server rejected while they still looked valid.
func (m *Manager) ForceRefresh(ctx context.Context) (string, error) {
	return m.refresh(ctx)
}

// Logout forgets the credential in memory and in the store. The identity
// provider is not contacted.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cred, m.claims = token.Credential{}, nil
	m.gen++
	if err := m.store.Clear(); err != nil {
		return errors.Wrapf(err, "logout")
	}
	m.log.Info().Msg("logged out")
	return nil
}

// IsAuthenticated reports whether an unexpired access token is held. It does
// no I/O.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred.AccessToken != "" && m.claims != nil && !m.claims.Expired(m.now())
}

func (m *Manager) State() State {
	if m.IsAuthenticated() {
		return Authenticated
	}
	return Unauthenticated
}

// Credential returns a copy of the live credential.
func (m *Manager) Credential() (token.Credential, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred, m.cred.Complete()
}

// TokenInfo returns the claims of the live access token.
func (m *Manager) TokenInfo() (*token.Claims, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.claims == nil {
		return nil, false
	}
	claims := *m.claims
	return &claims, true
}

// Identity decodes the live ID token for display.
func (m *Manager) Identity() (*token.Claims, error) {
	m.mu.RLock()
	idToken := m.cred.IDToken
	m.mu.RUnlock()

	if idToken == "" {
		return nil, &AuthError{Kind: NoValidToken}
	}
	return token.ParseClaims(idToken)
}

// refresh runs one refresh shared by every concurrent caller. The shared call
// is detached from any single caller's cancellation; it is bounded by the
// HTTP client timeout instead.
func (m *Manager) refresh(ctx context.Context) (string, error) {
	ch := m.refreshGroup.DoChan(refreshKey, func() (any, error) {
		return m.doRefresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *Manager) doRefresh(ctx context.Context) (string, error) {
	m.mu.RLock()
	refreshToken, gen := m.cred.RefreshToken, m.gen
	m.mu.RUnlock()

	if refreshToken == "" {
		if current, ok := m.clearIf(gen); !ok {
			return m.superseded(current)
		}
		return "", noValidToken(errors.ErrMissingRefreshToken)
	}

	cred, err := m.exchanger.refresh(ctx, refreshToken)
	if err != nil {
		if current, ok := m.clearIf(gen); !ok {
			return m.superseded(current)
		}
		m.log.Warn().Err(err).Msg("token refresh failed, session cleared")
		authErr := noValidToken(err)
		authErr.StatusCode, authErr.Body, _ = rejection(err)
		return "", authErr
	}

	claims, err := token.ParseClaims(cred.AccessToken)
	if err != nil {
		if current, ok := m.clearIf(gen); !ok {
			return m.superseded(current)
		}
		m.log.Warn().Err(err).Msg("refreshed token is malformed, session cleared")
		return "", noValidToken(err)
	}

	if current, ok := m.adoptIf(gen, cred, claims); !ok {
		return m.superseded(current)
	}
	m.log.Debug().Str("sub", claims.Subject).Time("exp", claims.Expiry()).Msg("token refreshed")
	return cred.AccessToken, nil
}

// superseded answers a refresh whose starting credential was replaced while
// it ran: a newer login's token is handed out, a logout stays a logout.
func (m *Manager) superseded(current token.Credential) (string, error) {
	if current.AccessToken != "" {
		m.log.Debug().Msg("refresh outcome discarded, a newer credential is live")
		return current.AccessToken, nil
	}
	m.log.Debug().Msg("refresh outcome discarded, session ended while refreshing")
	return "", noValidToken(errors.ErrSessionChanged)
}

// adopt swaps in a complete credential and persists it under the same lock,
// so memory and store never disagree.
func (m *Manager) adopt(cred token.Credential, claims *token.Claims) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.swap(cred, claims)
}

// adoptIf adopts only while the credential generation is still gen. It
// returns the live credential otherwise.
func (m *Manager) adoptIf(gen uint64, cred token.Credential, claims *token.Claims) (token.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return m.cred, false
	}
	m.swap(cred, claims)
	return cred, true
}

func (m *Manager) swap(cred token.Credential, claims *token.Claims) {
	m.cred, m.claims = cred, claims
	m.gen++
	if err := m.store.Save(cred); err != nil {
		m.log.Error().Err(err).Msg("failed to persist credential")
	}
}

func (m *Manager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drop()
}

// clearIf clears only while the credential generation is still gen.
func (m *Manager) clearIf(gen uint64) (token.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return m.cred, false
	}
	m.drop()
	return token.Credential{}, true
}

func (m *Manager) drop() {
	m.cred, m.claims = token.Credential{}, nil
	m.gen++
	if err := m.store.Clear(); err != nil {
		m.log.Error().Err(err).Msg("failed to clear stored credential")
	}
}
