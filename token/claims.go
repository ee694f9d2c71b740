package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

// RealmAccess mirrors Keycloak's realm_access claim.
type RealmAccess struct {
	Roles []string `json:"roles,omitempty"`
}

// Claims are the display and expiry claims read from an access or ID token.
type Claims struct {
	jwt.RegisteredClaims
	PreferredUsername string       `json:"preferred_username,omitempty"`
	Username          string       `json:"username,omitempty"`
	Email             string       `json:"email,omitempty"`
	EmailVerified     bool         `json:"email_verified,omitempty"`
	Name              string       `json:"name,omitempty"`
	GivenName         string       `json:"given_name,omitempty"`
	FamilyName        string       `json:"family_name,omitempty"`
	RealmAccess       *RealmAccess `json:"realm_access,omitempty"`
	RoleClaims        []string     `json:"roles,omitempty"`
	TokenType         string       `json:"typ,omitempty"`
	SessionID         string       `json:"sid,omitempty"`
	AuthorizedParty   string       `json:"azp,omitempty"`
	Scope             string       `json:"scope,omitempty"`
}

// ParseClaims decodes a compact JWT without verifying its signature.
// The result is advisory: the resource server does the real verification.
func ParseClaims(raw string) (*Claims, error) {
	if strings.Count(raw, ".") != 2 {
		return nil, fmt.Errorf("%w: not a compact JWT", errors.ErrInvalidToken)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "parse claims: %v", err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", errors.ErrInvalidToken)
	}
	return claims, nil
}

// Expiry returns the exp claim.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ValidFor reports whether the token stays valid for more than minValidity after now.
func (c *Claims) ValidFor(now time.Time, minValidity time.Duration) bool {
	return c.Expiry().Sub(now) > minValidity
}

// Expired reports whether exp is at or before now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.Expiry().After(now)
}

// UserName prefers preferred_username and falls back to username.
func (c *Claims) UserName() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Username
}

// Roles returns realm roles, falling back to a flat "roles" claim.
func (c *Claims) Roles() []string {
	if c.RealmAccess != nil && len(c.RealmAccess.Roles) > 0 {
		return c.RealmAccess.Roles
	}
	return c.RoleClaims
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles() {
		if r == role {
			return true
		}
	}
	return false
}
