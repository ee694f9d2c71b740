// Package servertest runs the stub identity provider and backend on an
// httptest server for use in tests.
package servertest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/server"
	"github.com/jrsteele09/kubeatlas-console/token/keys"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	Realm         = "kubeatlas"
	ClientID      = "kubeatlas-backend"
	ClientSecret  = "backend-secret-key"
	AdminUsername = server.DefaultAdminUsername
	AdminPassword = "AdminPassw0rd!"
	UserUsername  = server.DefaultUserUsername
	UserPassword  = "UserPassw0rd!"
)

// Key generation dominates start up, so every stub in a test binary shares
// one key.
var sharedSigner = sync.OnceValues(func() (keys.Signer, error) {
	keyPair, err := keys.GenerateRSAKeyPair("servertest", 2048)
	if err != nil {
		return nil, err
	}
	return keys.NewKeyPairSigner(keyPair), nil
})

type Stub struct {
	*server.Server
	URL    string
	Config config.Config
	Repos  server.Repos
}

// New starts a stub and points the environment at it. Environment set by
// the caller beforehand (token lifetimes, passwords) is honoured.
func New(t testing.TB, opts ...server.Option) *Stub {
	t.Helper()
	return NewWithRepos(t, server.NewInMemoryRepos(), opts...)
}

// NewWithRepos is New over caller supplied stores.
func NewWithRepos(t testing.TB, repos server.Repos, opts ...server.Option) *Stub {
	t.Helper()

	var srv *server.Server
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	t.Setenv("ENV", "TEST")
	t.Setenv("KEYCLOAK_URL", ts.URL)
	t.Setenv("KEYCLOAK_REALM", Realm)
	t.Setenv("OIDC_ISSUER", "")
	t.Setenv("OIDC_TOKEN_URL", "")
	t.Setenv("OIDC_CLIENT_ID", ClientID)
	t.Setenv("OIDC_CLIENT_SECRET", ClientSecret)
	t.Setenv("STUB_ADMIN_PASSWORD", AdminPassword)
	t.Setenv("STUB_USER_PASSWORD", UserPassword)
	t.Setenv("API_BASE_URL", ts.URL+server.RouteAPIPrefix)

	signer, err := sharedSigner()
	require.NoError(t, err)

	cfg := config.New()
	opts = append([]server.Option{server.WithSigner(signer), server.WithLogger(zerolog.Nop())}, opts...)
	srv, err = server.New(cfg, repos, opts...)
	require.NoError(t, err)

	return &Stub{Server: srv, URL: ts.URL, Config: cfg, Repos: repos}
}

// APIBaseURL is the /api/v1 root of the stub.
func (s *Stub) APIBaseURL() string {
	return s.URL + server.RouteAPIPrefix
}
