// Package console is what a dashboard front end talks to. It pairs the
// token session with the signed-in user's profile and roles and routes every
// backend call through the resilient API client.
package console

import (
	"context"
	"slices"
	"sync"

	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/jrsteele09/kubeatlas-console/apiclient"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// LoginResult is what a login form needs to render.
type LoginResult struct {
	Success bool
	User    *adminapi.UserProfile
	Error   string
}

type Console struct {
	session *session.Manager
	api     *apiclient.Client
	admin   *adminapi.Service
	log     zerolog.Logger

	mu      sync.RWMutex
	user    *adminapi.UserProfile
	roles   *adminapi.UserRoles
	loading bool
	lastErr string
}

type Option func(*Console)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Console) {
		c.log = logger
	}
}

// WithAdminService replaces the admin service built over the API client.
func WithAdminService(admin *adminapi.Service) Option {
	return func(c *Console) {
		c.admin = admin
	}
}

func New(sessions *session.Manager, api *apiclient.Client, opts ...Option) (*Console, error) {
	if sessions == nil {
		return nil, errors.New("[console.New] session manager is required")
	}
	if api == nil {
		return nil, errors.New("[console.New] api client is required")
	}

	c := &Console{
		session: sessions,
		api:     api,
		log:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "console").Logger()

	if c.admin == nil {
		admin, err := adminapi.New(api, adminapi.WithLogger(c.log), adminapi.WithSessionCheck(sessions.IsAuthenticated))
		if err != nil {
			return nil, errors.Wrapf(err, "[console.New]")
		}
		c.admin = admin
	}
	return c, nil
}

func (c *Console) Session() *session.Manager {
	return c.session
}

func (c *Console) Admin() *adminapi.Service {
	return c.admin
}

// Init adopts a persisted credential, if any is still valid, and loads the
// user behind it.
func (c *Console) Init(ctx context.Context) error {
	if !c.session.Restore() {
		c.clearUser("")
		return nil
	}
	return c.RefreshUserData(ctx)
}

// Login runs the password grant and loads the profile. A user whose profile
// cannot be loaded is logged out again, so Success always means both.
func (c *Console) Login(ctx context.Context, username, password string) LoginResult {
	c.setLoading(true)
	defer c.setLoading(false)
	c.admin.ClearStatisticsCache()

	if _, err := c.session.PasswordLogin(ctx, username, password); err != nil {
		msg := loginMessage(err)
		c.clearUser(msg)
		c.log.Info().Str("username", username).Err(err).Msg("login failed")
		return LoginResult{Error: msg}
	}

	if err := c.loadUserData(ctx); err != nil {
		if logoutErr := c.session.Logout(); logoutErr != nil {
			c.log.Error().Err(logoutErr).Msg("failed to discard session after profile load failure")
		}
		return LoginResult{Error: adminapi.FormatAPIError(err)}
	}

	return LoginResult{Success: true, User: c.CurrentUser()}
}

func loginMessage(err error) string {
	var authErr *session.AuthError
	if errors.As(err, &authErr) && authErr.Kind == session.InvalidCredentials {
		return "Invalid username or password"
	}
	return "Login failed: " + err.Error()
}

// Logout forgets the credential and the user. The identity provider is not
// contacted.
func (c *Console) Logout() error {
	c.clearUser("")
	c.admin.ClearStatisticsCache()
	return c.session.Logout()
}

func (c *Console) IsAuthenticated() bool {
	return c.session.IsAuthenticated()
}

func (c *Console) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// CurrentUser returns a copy of the signed-in user's profile, or nil.
func (c *Console) CurrentUser() *adminapi.UserProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	user := *c.user
	user.Roles = slices.Clone(c.user.Roles)
	return &user
}

func (c *Console) Roles() *adminapi.UserRoles {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.roles == nil {
		return nil
	}
	roles := *c.roles
	roles.Roles = slices.Clone(c.roles.Roles)
	return &roles
}

func (c *Console) IsAdmin() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roles != nil && (c.roles.IsAdmin || slices.Contains(c.roles.Roles, adminapi.RoleAdmin))
}

// LastError is the message from the last failed user data load.
func (c *Console) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// RefreshUserData reloads profile and roles in parallel.
func (c *Console) RefreshUserData(ctx context.Context) error {
	c.setLoading(true)
	defer c.setLoading(false)
	return c.loadUserData(ctx)
}

func (c *Console) loadUserData(ctx context.Context) error {
	var (
		profile *adminapi.UserProfile
		roles   *adminapi.UserRoles
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = c.admin.Profile(gctx)
		return err
	})
	g.Go(func() (err error) {
		roles, err = c.admin.Roles(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.Warn().Err(err).Msg("failed to load user data")
		c.clearUser(adminapi.FormatAPIError(err))
		return err
	}

	c.mu.Lock()
	c.user, c.roles, c.lastErr = profile, roles, ""
	c.mu.Unlock()
	return nil
}

// CheckAdminRights asks the backend rather than trusting cached roles.
func (c *Console) CheckAdminRights(ctx context.Context) (bool, error) {
	roles, err := c.admin.Roles(ctx)
	if err != nil {
		return false, c.track(err)
	}
	c.mu.Lock()
	c.roles = roles
	c.mu.Unlock()
	return roles.IsAdmin || slices.Contains(roles.Roles, adminapi.RoleAdmin), nil
}

func (c *Console) APIGet(ctx context.Context, path string, out any) error {
	return c.track(c.api.Get(ctx, path, out))
}

func (c *Console) APIPost(ctx context.Context, path string, body, out any) error {
	return c.track(c.api.Post(ctx, path, body, out))
}

func (c *Console) APIPut(ctx context.Context, path string, body, out any) error {
	return c.track(c.api.Put(ctx, path, body, out))
}

func (c *Console) APIDelete(ctx context.Context, path string, out any) error {
	return c.track(c.api.Delete(ctx, path, out))
}

// track drops the user and any cached statistics on an authentication
// failure. Other API errors leave the session alone.
func (c *Console) track(err error) error {
	if session.IsAuthError(err) {
		c.clearUser(adminapi.FormatAPIError(err))
		c.admin.ClearStatisticsCache()
	}
	return err
}

func (c *Console) clearUser(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user, c.roles, c.lastErr = nil, nil, msg
}

func (c *Console) setLoading(loading bool) {
	c.mu.Lock()
	c.loading = loading
	c.mu.Unlock()
}
