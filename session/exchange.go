package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/token"
	"golang.org/x/oauth2"
)

// exchanger talks to the identity provider's token endpoint.
type exchanger struct {
	config     *oauth2.Config
	httpClient *http.Client
	retries    uint64
	interval   time.Duration
}

func newExchanger(tokenURL, clientID, clientSecret string, scopes []string, client *http.Client, retries uint64, interval time.Duration) *exchanger {
	return &exchanger{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: client,
		retries:    retries,
		interval:   interval,
	}
}

// password performs the resource owner password credentials grant.
func (e *exchanger) password(ctx context.Context, username, password string) (token.Credential, error) {
	return e.exchange(ctx, func(ctx context.Context) (*oauth2.Token, error) {
		return e.config.PasswordCredentialsToken(ctx, username, password)
	})
}

// refresh performs the refresh_token grant. When the response omits a
// refresh token the previous one is carried forward.
func (e *exchanger) refresh(ctx context.Context, refreshToken string) (token.Credential, error) {
	return e.exchange(ctx, func(ctx context.Context) (*oauth2.Token, error) {
		return e.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	})
}

func (e *exchanger) exchange(ctx context.Context, fetch func(context.Context) (*oauth2.Token, error)) (token.Credential, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)

	var tok *oauth2.Token
	operation := func() error {
		var err error
		tok, err = fetch(ctx)
		if err == nil {
			return nil
		}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(operation, e.backoff(ctx)); err != nil {
		return token.Credential{}, err
	}
	return credentialFromToken(tok)
}

func (e *exchanger) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.interval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, e.retries), ctx)
}

func credentialFromToken(tok *oauth2.Token) (token.Credential, error) {
	idToken, _ := tok.Extra("id_token").(string)
	cred := token.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IDToken:      idToken,
	}
	if !cred.Complete() {
		var missing []string
		if cred.AccessToken == "" {
			missing = append(missing, "access_token")
		}
		if cred.RefreshToken == "" {
			missing = append(missing, "refresh_token")
		}
		if cred.IDToken == "" {
			missing = append(missing, "id_token")
		}
		return token.Credential{}, fmt.Errorf("%w: missing %s", errors.ErrInvalidTokenResponse, strings.Join(missing, ", "))
	}
	return cred, nil
}

// rejection extracts the identity provider's response from a failed grant.
func rejection(err error) (int, string, bool) {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return 0, "", false
	}
	status := 0
	if retrieveErr.Response != nil {
		status = retrieveErr.Response.StatusCode
	}
	return status, string(retrieveErr.Body), true
}
