package oauth2

import (
	"fmt"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
	"github.com/jrsteele09/kubeatlas-console/internal/utils"
	"github.com/jrsteele09/kubeatlas-console/token"
)

// TokenResponse is the JSON body returned by the token endpoint for both
// the password and refresh_token grants.
type TokenResponse struct {
	// AccessToken is the compact JWT sent as "Authorization: Bearer <access_token>".
	// Its "exp" claim is the only expiry the console trusts.
	AccessToken *string `json:"access_token,omitempty"`

	// IdToken carries display claims (sub, preferred_username, email).
	IdToken *string `json:"id_token,omitempty"`

	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is a hint only.
	ExpiresIn int `json:"expires_in,omitempty"`

	RefreshExpiresIn int `json:"refresh_expires_in,omitempty"`

	// RefreshToken is opaque and rotates on every refresh.
	RefreshToken *string `json:"refresh_token,omitempty"`

	Scope string `json:"scope,omitempty"`
}

// Validate checks that the response carries a complete token triple.
func (t TokenResponse) Validate() error {
	switch {
	case utils.Value(t.AccessToken) == "":
		return fmt.Errorf("%w: missing access_token", errors.ErrInvalidTokenResponse)
	case utils.Value(t.RefreshToken) == "":
		return fmt.Errorf("%w: missing refresh_token", errors.ErrInvalidTokenResponse)
	case utils.Value(t.IdToken) == "":
		return fmt.Errorf("%w: missing id_token", errors.ErrInvalidTokenResponse)
	}
	return nil
}

// Credential converts the response into the triple held by the session manager.
func (t TokenResponse) Credential() token.Credential {
	return token.Credential{
		AccessToken:  utils.Value(t.AccessToken),
		RefreshToken: utils.Value(t.RefreshToken),
		IDToken:      utils.Value(t.IdToken),
	}
}
