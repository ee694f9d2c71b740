package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/kubeatlas-console/internal/config"
	"github.com/jrsteele09/kubeatlas-console/oauth2"
	"github.com/jrsteele09/kubeatlas-console/token/keys"
	"github.com/jrsteele09/kubeatlas-console/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Token types carried in the "typ" claim, as Keycloak issues them.
const (
	TypeBearer = oauth2.TokenTypeBearer
	TypeID     = "ID"
)

const accountAudience = "account"

// Creator mints Keycloak-shaped access and ID tokens.
type Creator struct {
	config config.OAuthConfig
	signer keys.Signer
	issuer string
}

func NewCreator(cfg config.OAuthConfig, signer keys.Signer, issuer string) *Creator {
	return &Creator{
		config: cfg,
		signer: signer,
		issuer: issuer,
	}
}

func (c *Creator) Issuer() string {
	return c.issuer
}

// AccessTokenTTL is the lifetime given to new access tokens.
func (c *Creator) AccessTokenTTL() time.Duration {
	return c.config.GetDefaultAccessTokenExpiry()
}

// CreateAccessToken mints the bearer token presented to the backend API.
// Roles go in realm_access.roles.
func (c *Creator) CreateAccessToken(user *users.User, clientID, sessionID, scope string) (string, error) {
	now := NowTimeFunc()
	claims := c.identityClaims(user, now, c.AccessTokenTTL())
	claims["aud"] = accountAudience
	claims["azp"] = clientID
	claims["typ"] = TypeBearer
	claims["sid"] = sessionID
	claims["scope"] = scope
	claims["realm_access"] = map[string]any{"roles": append([]string{}, user.Roles...)}

	return c.sign(claims)
}

// CreateIDToken mints the OpenID Connect ID token. It carries identity
// claims only.
func (c *Creator) CreateIDToken(user *users.User, clientID, sessionID string) (string, error) {
	now := NowTimeFunc()
	claims := c.identityClaims(user, now, c.config.GetDefaultIDTokenExpiry())
	claims["aud"] = clientID
	claims["azp"] = clientID
	claims["typ"] = TypeID
	claims["sid"] = sessionID
	claims["auth_time"] = now.Unix()

	return c.sign(claims)
}

func (c *Creator) identityClaims(user *users.User, now time.Time, ttl time.Duration) jwtlib.MapClaims {
	claims := jwtlib.MapClaims{
		"iss":                c.issuer,
		"sub":                user.ID,
		"iat":                now.Unix(),
		"exp":                now.Add(ttl).Unix(),
		"jti":                uuid.New().String(),
		"preferred_username": user.Username,
		"email":              user.Email,
		"email_verified":     user.EmailVerified,
	}
	if user.FirstName != "" || user.LastName != "" {
		claims["name"] = user.DisplayName()
		claims["given_name"] = user.FirstName
		claims["family_name"] = user.LastName
	}
	return claims
}

func (c *Creator) sign(claims jwtlib.MapClaims) (string, error) {
	signedToken, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signedToken, nil
}
