package jwt_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token"
	"github.com/jrsteele09/kubeatlas-console/token/jwt"
	"github.com/jrsteele09/kubeatlas-console/token/keys"
	"github.com/jrsteele09/kubeatlas-console/users"
	"github.com/stretchr/testify/require"
)

const testIssuer = "http://localhost:8081/realms/kubeatlas"

type testFixture struct {
	now       time.Time
	creator   *jwt.Creator
	inspector *jwt.Inspector
	revoked   *token.MemoryRevocationList
	liveSids  map[string]bool
	user      *users.User
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	kp, err := keys.GenerateRSAKeyPair("test-kid", 2048)
	require.NoError(t, err)
	signer := keys.NewKeyPairSigner(kp)

	f := &testFixture{
		now:      time.Now().Truncate(time.Second),
		revoked:  token.NewMemoryRevocationList(nil),
		liveSids: map[string]bool{"sid-1": true},
		user: &users.User{
			ID:        "user-1",
			Username:  "admin-service",
			Email:     "admin@kubeatlas.local",
			FirstName: "Admin",
			LastName:  "Service",
			Roles:     []string{"admin", "user"},
		},
	}
	jwt.NowTimeFunc = func() time.Time { return f.now }
	t.Cleanup(func() { jwt.NowTimeFunc = time.Now })

	f.creator = jwt.NewCreator(config.OAuth{}, signer, testIssuer)
	f.inspector = jwt.NewInspector(signer, testIssuer, f.revoked, func(sid string) bool { return f.liveSids[sid] })
	return f
}

func TestAccessToken(t *testing.T) {
	t.Run("Claims are Keycloak shaped", func(t *testing.T) {
		f := setupTestFixture(t)
		raw, err := f.creator.CreateAccessToken(f.user, "kubeatlas-backend", "sid-1", "openid profile")
		require.NoError(t, err)

		// the unverified client-side parse sees the same claims
		parsed, err := token.ParseClaims(raw)
		require.NoError(t, err)
		require.Equal(t, "admin-service", parsed.PreferredUsername)
		require.Equal(t, []string{"admin", "user"}, parsed.Roles())
		require.True(t, f.now.Add(5*time.Minute).Equal(parsed.Expiry()))

		claims, err := f.inspector.Verify(raw)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.Subject)
		require.Equal(t, "kubeatlas-backend", claims.AuthorizedParty)
		require.Equal(t, "sid-1", claims.SessionID)
		require.True(t, claims.HasRole("admin"))
	})

	t.Run("Expired", func(t *testing.T) {
		f := setupTestFixture(t)
		raw, err := f.creator.CreateAccessToken(f.user, "kubeatlas-backend", "sid-1", "openid")
		require.NoError(t, err)

		f.now = f.now.Add(6 * time.Minute)
		_, err = f.inspector.Verify(raw)
		require.ErrorIs(t, err, errors.ErrTokenExpired)
		require.False(t, f.inspector.Introspect(raw).Active)
	})

	t.Run("Revoked by jti", func(t *testing.T) {
		f := setupTestFixture(t)
		raw, err := f.creator.CreateAccessToken(f.user, "kubeatlas-backend", "sid-1", "openid")
		require.NoError(t, err)

		jti, exp, err := f.inspector.ParseAndExtractJTI(raw)
		require.NoError(t, err)
		require.NoError(t, f.revoked.Revoke(jti, exp))

		_, err = f.inspector.Verify(raw)
		require.ErrorIs(t, err, errors.ErrTokenRevoked)
	})

	t.Run("Session ended", func(t *testing.T) {
		f := setupTestFixture(t)
		raw, err := f.creator.CreateAccessToken(f.user, "kubeatlas-backend", "sid-1", "openid")
		require.NoError(t, err)

		delete(f.liveSids, "sid-1")
		_, err = f.inspector.Verify(raw)
		require.ErrorIs(t, err, errors.ErrTokenRevoked)
	})

	t.Run("ID token is not a bearer token", func(t *testing.T) {
		f := setupTestFixture(t)
		raw, err := f.creator.CreateIDToken(f.user, "kubeatlas-backend", "sid-1")
		require.NoError(t, err)

		_, err = f.inspector.Verify(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("Foreign signature", func(t *testing.T) {
		f := setupTestFixture(t)
		other := setupTestFixture(t)
		raw, err := other.creator.CreateAccessToken(f.user, "kubeatlas-backend", "sid-1", "openid")
		require.NoError(t, err)

		_, err = f.inspector.Verify(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})
}

func TestIntrospect(t *testing.T) {
	f := setupTestFixture(t)
	raw, err := f.creator.CreateAccessToken(f.user, "kubeatlas-backend", "sid-1", "openid roles")
	require.NoError(t, err)

	res := f.inspector.Introspect(raw)
	require.True(t, res.Active)
	require.Equal(t, "admin-service", res.Username)
	require.Equal(t, "openid roles", res.Scope)
	require.Equal(t, f.now.Unix(), res.Iat)

	require.False(t, f.inspector.Introspect("").Active)
	require.False(t, f.inspector.Introspect("not.a.jwt").Active)
}
