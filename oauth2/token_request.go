package oauth2

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

// TokenRequest holds the form parameters posted to the token endpoint.
type TokenRequest struct {
	GrantType GrantType

	// ClientID identifies the confidential client, e.g. "kubeatlas-backend".
	ClientID string

	// ClientSecret is sent in the body (client_secret_post). Never log it.
	ClientSecret string

	// Username and Password are used by the password grant only.
	Username string
	Password string

	// RefreshToken is used by the refresh_token grant only.
	RefreshToken string

	Scope string
}

// Form encodes the request as application/x-www-form-urlencoded values.
func (r TokenRequest) Form() url.Values {
	v := url.Values{}
	v.Set("grant_type", string(r.GrantType))
	v.Set("client_id", r.ClientID)
	if r.ClientSecret != "" {
		v.Set("client_secret", r.ClientSecret)
	}
	switch r.GrantType {
	case PasswordGrant:
		v.Set("username", r.Username)
		v.Set("password", r.Password)
	case RefreshTokenGrant:
		v.Set("refresh_token", r.RefreshToken)
	}
	if r.Scope != "" {
		v.Set("scope", r.Scope)
	}
	return v
}

// ParseTokenRequest reads a token request from a form POST. Client
// credentials may also arrive through HTTP Basic auth.
func ParseTokenRequest(r *http.Request) (*TokenRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "parse form: %v", err)
	}

	req := &TokenRequest{
		GrantType:    GrantType(r.PostForm.Get("grant_type")),
		ClientID:     r.PostForm.Get("client_id"),
		ClientSecret: r.PostForm.Get("client_secret"),
		Username:     r.PostForm.Get("username"),
		Password:     r.PostForm.Get("password"),
		RefreshToken: r.PostForm.Get("refresh_token"),
		Scope:        strings.TrimSpace(r.PostForm.Get("scope")),
	}
	if id, secret, ok := r.BasicAuth(); ok && req.ClientID == "" {
		req.ClientID, req.ClientSecret = id, secret
	}

	if !req.GrantType.IsSupported() {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedGrant, req.GrantType)
	}
	if req.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id is required", errors.ErrInvalidRequest)
	}
	switch req.GrantType {
	case PasswordGrant:
		if req.Username == "" || req.Password == "" {
			return nil, fmt.Errorf("%w: username and password are required", errors.ErrInvalidRequest)
		}
	case RefreshTokenGrant:
		if req.RefreshToken == "" {
			return nil, fmt.Errorf("%w: refresh_token is required", errors.ErrInvalidRequest)
		}
	}
	return req, nil
}

// Scopes splits the space separated scope parameter.
func (r TokenRequest) Scopes() []string {
	return strings.Fields(r.Scope)
}
