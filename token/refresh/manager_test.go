package refresh_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token/refresh"
	refreshrepofake "github.com/jrsteele09/kubeatlas-console/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	now     time.Time
	manager *refresh.Manager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("STUB_REFRESH_TOKEN_TTL", "30m")

	f := &testFixture{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	refresh.NowTimeFunc = func() time.Time { return f.now }
	t.Cleanup(func() { refresh.NowTimeFunc = time.Now })

	f.manager = refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), config.OAuth{})
	return f
}

func TestCreate(t *testing.T) {
	f := setupTestFixture(t)

	token, err := f.manager.Create("kubeatlas-backend", "user-1", "session-1", "openid")
	require.NoError(t, err)
	require.Len(t, token, 64)

	rt, err := f.manager.Get(token)
	require.NoError(t, err)
	require.Equal(t, "session-1", rt.SessionID)
}

func TestRotate(t *testing.T) {
	t.Run("Old token is consumed", func(t *testing.T) {
		f := setupTestFixture(t)
		first, err := f.manager.Create("kubeatlas-backend", "user-1", "session-1", "openid")
		require.NoError(t, err)

		rt, next, err := f.manager.Rotate(first, "kubeatlas-backend")
		require.NoError(t, err)
		require.Equal(t, "user-1", rt.UserID)
		require.NotEqual(t, first, next)

		_, _, err = f.manager.Rotate(first, "kubeatlas-backend")
		require.ErrorIs(t, err, errors.ErrInvalidRefreshToken)
	})

	t.Run("Wrong client", func(t *testing.T) {
		f := setupTestFixture(t)
		token, err := f.manager.Create("kubeatlas-backend", "user-1", "session-1", "openid")
		require.NoError(t, err)

		_, _, err = f.manager.Rotate(token, "other-client")
		require.ErrorIs(t, err, errors.ErrInvalidRefreshToken)
	})

	t.Run("Expired", func(t *testing.T) {
		f := setupTestFixture(t)
		token, err := f.manager.Create("kubeatlas-backend", "user-1", "session-1", "openid")
		require.NoError(t, err)

		f.now = f.now.Add(31 * time.Minute)
		_, _, err = f.manager.Rotate(token, "kubeatlas-backend")
		require.ErrorIs(t, err, errors.ErrRefreshTokenExpired)
	})
}

func TestRevokeSession(t *testing.T) {
	f := setupTestFixture(t)
	a, err := f.manager.Create("kubeatlas-backend", "user-1", "session-1", "openid")
	require.NoError(t, err)
	_, err = f.manager.Create("kubeatlas-backend", "user-1", "session-2", "openid")
	require.NoError(t, err)

	require.Equal(t, 1, f.manager.RevokeSession("session-1"))
	_, err = f.manager.Get(a)
	require.Error(t, err)
	require.Equal(t, 1, f.manager.RevokeUser("user-1"))
}
