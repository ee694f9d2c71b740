package oauth2

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// PasswordGrant exchanges a username and password directly for tokens.
	// Used in: trusted first-party clients (no redirect, no consent screen)
	// Token request includes: username, password, client_id, client_secret, scope
	// Returns: access_token, id_token (with "openid" scope), refresh_token
	PasswordGrant GrantType = "password"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Token request includes: refresh_token, client_id, client_secret
	// Returns: new access_token, id_token, and rotated refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// Scopes requested by the console for every grant.
const (
	ScopeOpenID  = "openid"
	ScopeProfile = "profile"
	ScopeEmail   = "email"
	ScopeRoles   = "roles"
)

// DefaultScopes is the space separated scope sent with password grants.
const DefaultScopes = ScopeOpenID + " " + ScopeProfile + " " + ScopeEmail + " " + ScopeRoles

// TokenTypeBearer is the only token_type issued.
const TokenTypeBearer = "Bearer"

func (g GrantType) IsSupported() bool {
	return g == PasswordGrant || g == RefreshTokenGrant
}
