package console_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/jrsteele09/kubeatlas-console/apiclient"
	"github.com/jrsteele09/kubeatlas-console/console"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/server"
	"github.com/jrsteele09/kubeatlas-console/server/servertest"
	"github.com/jrsteele09/kubeatlas-console/session"
	"github.com/jrsteele09/kubeatlas-console/token/memstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// recordingTransport remembers the Authorization header last sent per path.
type recordingTransport struct {
	mu   sync.Mutex
	auth map[string]string
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.auth[req.URL.Path] = req.Header.Get("Authorization")
	rt.mu.Unlock()
	return http.DefaultTransport.RoundTrip(req)
}

func (rt *recordingTransport) lastAuth(path string) string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.auth[path]
}

type testFixture struct {
	stub      *servertest.Stub
	store     *memstore.Store
	transport *recordingTransport
	console   *console.Console
}

func setupTestFixture(t *testing.T) *testFixture {
	f := &testFixture{
		stub:      servertest.New(t),
		store:     memstore.New("kubeatlas"),
		transport: &recordingTransport{auth: map[string]string{}},
	}
	f.console = f.newConsole(t)
	return f
}

func (f *testFixture) newConsole(t *testing.T) *console.Console {
	t.Helper()
	httpClient := &http.Client{Transport: f.transport, Timeout: 5 * time.Second}
	c, err := console.NewFromConfig(context.Background(), f.stub.Config, f.store, httpClient, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func (f *testFixture) login(t *testing.T, username, password string) {
	t.Helper()
	res := f.console.Login(context.Background(), username, password)
	require.True(t, res.Success, res.Error)
}

func (f *testFixture) accessToken(t *testing.T) string {
	t.Helper()
	cred, ok := f.console.Session().Credential()
	require.True(t, ok)
	return cred.AccessToken
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("password login then profile", func(t *testing.T) {
		f := setupTestFixture(t)

		res := f.console.Login(ctx, servertest.AdminUsername, servertest.AdminPassword)
		require.True(t, res.Success, res.Error)
		require.Empty(t, res.Error)
		require.Equal(t, servertest.AdminUsername, res.User.Username)
		require.True(t, f.console.IsAuthenticated())
		require.True(t, f.console.IsAdmin())
		require.False(t, f.console.IsLoading())

		claims, ok := f.console.Session().TokenInfo()
		require.True(t, ok)
		require.WithinDuration(t, time.Now().Add(5*time.Minute), claims.Expiry(), 5*time.Second)

		var profile adminapi.UserProfile
		require.NoError(t, f.console.APIGet(ctx, "/user/profile", &profile))
		require.Equal(t, servertest.AdminUsername, profile.Username)
		require.True(t, profile.IsAdmin)
		require.Equal(t, "Bearer "+f.accessToken(t), f.transport.lastAuth(server.RouteAPIUserProfile))
		require.Equal(t, 3, f.store.Len())

		validation, err := f.console.Admin().ValidateToken(ctx)
		require.NoError(t, err)
		require.True(t, validation.Valid)
		require.Equal(t, servertest.AdminUsername, validation.User.Username)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		f := setupTestFixture(t)

		res := f.console.Login(ctx, servertest.AdminUsername, "wrong")
		require.False(t, res.Success)
		require.Equal(t, "Invalid username or password", res.Error)
		require.Nil(t, res.User)
		require.False(t, f.console.IsAuthenticated())
		require.Nil(t, f.console.CurrentUser())
		require.Zero(t, f.store.Len())
	})

	t.Run("plain user", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, servertest.UserUsername, servertest.UserPassword)

		require.False(t, f.console.IsAdmin())
		isAdmin, err := f.console.CheckAdminRights(ctx)
		require.NoError(t, err)
		require.False(t, isAdmin)

		err = f.console.APIGet(ctx, "/admin/users", nil)
		require.True(t, errors.Is(err, errors.ErrForbidden))
		require.True(t, f.console.IsAuthenticated())
	})
}

func TestForcedRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("GET recovers from a stale token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, servertest.AdminUsername, servertest.AdminPassword)
		before := f.accessToken(t)

		f.stub.FailNext(server.RouteAPIAdminUsers, 1)

		var page struct {
			Users      []adminapi.User `json:"users"`
			TotalCount int             `json:"totalCount"`
		}
		require.NoError(t, f.console.APIGet(ctx, "/admin/users", &page))
		require.Equal(t, 2, page.TotalCount)

		after := f.accessToken(t)
		require.NotEqual(t, before, after)
		require.Equal(t, "Bearer "+after, f.transport.lastAuth(server.RouteAPIAdminUsers))
		require.True(t, f.console.IsAuthenticated())
	})

	t.Run("POST refreshes but is not re-sent", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, servertest.AdminUsername, servertest.AdminPassword)
		before := f.accessToken(t)

		newUser := adminapi.CreateUserRequest{
			Username:  "jdoe",
			Email:     "jdoe@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
			Password:  "Secr3tPass",
			Roles:     []string{adminapi.RoleUser},
		}

		f.stub.FailNext(server.RouteAPIAdminUsers, 1)
		err := f.console.APIPost(ctx, "/admin/users", newUser, nil)
		var apiErr *apiclient.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.True(t, apiErr.Retryable)
		require.NotEqual(t, before, f.accessToken(t))

		var created adminapi.MutationResult
		require.NoError(t, f.console.APIPost(ctx, "/admin/users", newUser, &created))
		require.NotEmpty(t, created.ID)
	})
}

func TestAuthFailureClearsUser(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.login(t, servertest.UserUsername, servertest.UserPassword)
	require.NotNil(t, f.console.CurrentUser())

	resp, err := f.console.Admin().RevokeAllMySessions(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, resp.SessionsRevoked)

	err = f.console.APIGet(ctx, "/user/profile", nil)
	require.True(t, session.IsAuthError(err))
	require.True(t, errors.Is(err, session.ErrNoValidToken))
	require.False(t, f.console.IsAuthenticated())
	require.Nil(t, f.console.CurrentUser())
	require.Equal(t, "Unauthorized. Please login again.", f.console.LastError())
	require.Zero(t, f.store.Len())
}

func TestAPIErrorKeepsSession(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.login(t, servertest.AdminUsername, servertest.AdminPassword)

	err := f.console.APIGet(ctx, "/admin/users/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, apiclient.StatusCode(err))
	require.True(t, errors.Is(err, errors.ErrNotFound))
	require.True(t, f.console.IsAuthenticated())
	require.NotNil(t, f.console.CurrentUser())
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("restores a persisted session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, servertest.AdminUsername, servertest.AdminPassword)

		restarted := f.newConsole(t)
		require.NoError(t, restarted.Init(ctx))
		require.True(t, restarted.IsAuthenticated())
		require.Equal(t, servertest.AdminUsername, restarted.CurrentUser().Username)
		require.True(t, restarted.IsAdmin())

		require.NoError(t, restarted.Logout())
		require.False(t, restarted.IsAuthenticated())
		require.Nil(t, restarted.CurrentUser())
		require.Zero(t, f.store.Len())
	})

	t.Run("nothing stored", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.console.Init(ctx))
		require.False(t, f.console.IsAuthenticated())
		require.Nil(t, f.console.CurrentUser())
	})
}

func TestDiscovery(t *testing.T) {
	f := setupTestFixture(t)
	t.Setenv("OIDC_DISCOVERY", "true")

	c := f.newConsole(t)
	require.Equal(t, f.stub.TokenURL(), c.Session().TokenURL())

	res := c.Login(context.Background(), servertest.AdminUsername, servertest.AdminPassword)
	require.True(t, res.Success, res.Error)
}

func TestStatisticsFollowSession(t *testing.T) {
	ctx := context.Background()

	t.Run("lost session raises instead of serving cache", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, servertest.AdminUsername, servertest.AdminPassword)

		stats, err := f.console.Admin().Statistics(ctx)
		require.NoError(t, err)
		require.Equal(t, float64(2), stats.TotalUsers.Value)

		_, err = f.console.Admin().RevokeAllMySessions(ctx)
		require.NoError(t, err)
		require.True(t, session.IsAuthError(f.console.APIGet(ctx, "/user/profile", nil)))
		require.False(t, f.console.IsAuthenticated())

		stats, err = f.console.Admin().Statistics(ctx)
		require.True(t, session.IsAuthError(err))
		require.Nil(t, stats)
	})

	t.Run("session ended outside the console", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, servertest.AdminUsername, servertest.AdminPassword)

		_, err := f.console.Admin().Statistics(ctx)
		require.NoError(t, err)

		require.NoError(t, f.console.Session().Logout())
		_, err = f.console.Admin().Statistics(ctx)
		require.True(t, session.IsAuthError(err))
	})

	t.Run("next user does not see cached statistics", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t, servertest.AdminUsername, servertest.AdminPassword)

		stats, err := f.console.Admin().Statistics(ctx)
		require.NoError(t, err)
		require.Equal(t, float64(1), stats.ActiveSessions.Value)

		f.login(t, servertest.UserUsername, servertest.UserPassword)

		stats, err = f.console.Admin().Statistics(ctx)
		require.NoError(t, err)
		require.Equal(t, float64(2), stats.ActiveSessions.Value)
	})
}
