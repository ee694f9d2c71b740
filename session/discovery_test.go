package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/kubeatlas-console/session"
	"github.com/stretchr/testify/require"
)

func TestDiscoverTokenURL(t *testing.T) {
	var issuer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realms/kubeatlas/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/protocol/openid-connect/auth",
			"token_endpoint":         issuer + "/protocol/openid-connect/token",
			"jwks_uri":               issuer + "/protocol/openid-connect/certs",
		})
	}))
	t.Cleanup(srv.Close)
	issuer = srv.URL + "/realms/kubeatlas"

	t.Run("token endpoint is read from discovery", func(t *testing.T) {
		tokenURL, err := session.DiscoverTokenURL(context.Background(), issuer, srv.Client())
		require.NoError(t, err)
		require.Equal(t, issuer+"/protocol/openid-connect/token", tokenURL)
	})

	t.Run("unknown issuer fails", func(t *testing.T) {
		_, err := session.DiscoverTokenURL(context.Background(), srv.URL+"/realms/other", nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "discover")
	})
}
