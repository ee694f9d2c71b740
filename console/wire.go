package console

import (
	"context"
	"net/http"

	"github.com/jrsteele09/kubeatlas-console/adminapi"
	"github.com/jrsteele09/kubeatlas-console/apiclient"
	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/session"
	"github.com/jrsteele09/kubeatlas-console/token"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// NewFromConfig builds the session manager, API client and admin service
// described by cfg. With OIDC discovery enabled the token endpoint is looked
// up from the issuer first. httpClient may be nil.
func NewFromConfig(ctx context.Context, cfg config.Config, store token.Store, httpClient *http.Client, logger zerolog.Logger) (*Console, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.GetRequestTimeout()}
	}

	sessionOpts := []session.ManagerOption{
		session.WithHTTPClient(httpClient),
		session.WithLogger(logger),
		session.WithRefreshRetries(cfg.GetRefreshRetries()),
	}
	if cfg.GetOIDCDiscovery() {
		tokenURL, err := session.DiscoverTokenURL(ctx, cfg.GetIssuer(), httpClient)
		if err != nil {
			return nil, errors.Wrapf(err, "[console.NewFromConfig] discovery")
		}
		sessionOpts = append(sessionOpts, session.WithTokenURL(tokenURL))
	}
	sessions, err := session.New(store, cfg, sessionOpts...)
	if err != nil {
		return nil, err
	}

	apiOpts := []apiclient.ClientOption{
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithLogger(logger),
		apiclient.WithMinValidity(cfg.GetMinTokenValidity()),
	}
	if cfg.GetRetryUnsafeMethods() {
		apiOpts = append(apiOpts, apiclient.WithRetryAllMethods())
	}
	if limit := cfg.GetRateLimit(); limit > 0 {
		apiOpts = append(apiOpts, apiclient.WithRateLimit(rate.Limit(limit), cfg.GetRateBurst()))
	}
	api, err := apiclient.New(cfg.GetAPIBaseURL(), sessions, apiOpts...)
	if err != nil {
		return nil, err
	}

	admin, err := adminapi.New(api,
		adminapi.WithLogger(logger),
		adminapi.WithStatisticsTTL(cfg.GetStatisticsCacheTTL()),
		adminapi.WithSessionCheck(sessions.IsAuthenticated),
	)
	if err != nil {
		return nil, err
	}

	return New(sessions, api, WithAdminService(admin), WithLogger(logger))
}
