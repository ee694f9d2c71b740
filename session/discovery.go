package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

// DiscoverTokenURL reads the issuer's OpenID configuration and returns its
// token endpoint.
func DiscoverTokenURL(ctx context.Context, issuer string, client *http.Client) (string, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", errors.Wrapf(err, "discover %s", issuer)
	}
	tokenURL := provider.Endpoint().TokenURL
	if tokenURL == "" {
		return "", fmt.Errorf("issuer %s advertises no token endpoint", issuer)
	}
	return tokenURL, nil
}
