package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token"
	"github.com/stretchr/testify/require"
)

type revocationFixture struct {
	now  time.Time
	list *token.MemoryRevocationList
}

func setupRevocationFixture(t *testing.T) *revocationFixture {
	t.Helper()
	f := &revocationFixture{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.list = token.NewMemoryRevocationList(func() time.Time { return f.now })
	return f
}

func TestMemoryRevocationList(t *testing.T) {
	t.Run("revoked until swept after exp", func(t *testing.T) {
		f := setupRevocationFixture(t)
		require.NoError(t, f.list.Revoke("jti-1", f.now.Add(time.Minute)))
		require.NoError(t, f.list.Revoke("jti-2", f.now.Add(time.Hour)))
		require.True(t, f.list.IsRevoked("jti-1"))
		require.False(t, f.list.IsRevoked("jti-3"))
		require.Equal(t, 2, f.list.Len())

		require.Zero(t, f.list.Sweep())

		f.now = f.now.Add(time.Minute)
		require.Equal(t, 1, f.list.Sweep())
		require.False(t, f.list.IsRevoked("jti-1"))
		require.True(t, f.list.IsRevoked("jti-2"))
		require.Equal(t, 1, f.list.Len())
	})

	t.Run("expired token is not recorded", func(t *testing.T) {
		f := setupRevocationFixture(t)
		require.NoError(t, f.list.Revoke("old", f.now.Add(-time.Second)))
		require.NoError(t, f.list.Revoke("now", f.now))
		require.False(t, f.list.IsRevoked("old"))
		require.Zero(t, f.list.Len())
	})

	t.Run("jti is required", func(t *testing.T) {
		f := setupRevocationFixture(t)
		err := f.list.Revoke("", f.now.Add(time.Minute))
		require.True(t, errors.Is(err, errors.ErrInvalidToken))
		require.Zero(t, f.list.Len())
	})

	t.Run("revoking again keeps one entry", func(t *testing.T) {
		f := setupRevocationFixture(t)
		require.NoError(t, f.list.Revoke("jti", f.now.Add(time.Minute)))
		require.NoError(t, f.list.Revoke("jti", f.now.Add(time.Hour)))
		require.Equal(t, 1, f.list.Len())

		f.now = f.now.Add(2 * time.Minute)
		require.Zero(t, f.list.Sweep())
		require.True(t, f.list.IsRevoked("jti"))
	})
}
