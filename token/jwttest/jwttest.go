// Package jwttest mints HS256 tokens for tests. The client never verifies
// signatures, so a fixed key is enough.
package jwttest

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/kubeatlas-console/token"
)

var testKey = []byte("kubeatlas-test-key")

// Sign signs arbitrary claims. A fresh jti is added when missing so two
// tokens minted in the same second still differ.
func Sign(claims jwt.MapClaims) string {
	if _, ok := claims["jti"]; !ok {
		claims["jti"] = uuid.NewString()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	if err != nil {
		panic(err)
	}
	return s
}

// AccessToken mints a Keycloak-shaped access token.
func AccessToken(sub, username string, exp time.Time, roles ...string) string {
	return Sign(jwt.MapClaims{
		"sub":                sub,
		"preferred_username": username,
		"typ":                "Bearer",
		"iat":                exp.Add(-5 * time.Minute).Unix(),
		"exp":                exp.Unix(),
		"realm_access":       map[string]any{"roles": roles},
	})
}

// IDToken mints an ID token for display claims.
func IDToken(sub, username, email string, exp time.Time) string {
	return Sign(jwt.MapClaims{
		"sub":                sub,
		"preferred_username": username,
		"email":              email,
		"typ":                "ID",
		"iat":                exp.Add(-5 * time.Minute).Unix(),
		"exp":                exp.Unix(),
	})
}

// Credential mints a complete triple whose access token expires at exp.
func Credential(exp time.Time, refreshToken string) token.Credential {
	return token.Credential{
		AccessToken:  AccessToken("user-1", "admin-service", exp, "admin"),
		RefreshToken: refreshToken,
		IDToken:      IDToken("user-1", "admin-service", "admin@kubeatlas.local", exp),
	}
}
