package config

import (
	"strings"
	"time"
)

type OAuthConfig interface {
	GetKeycloakURL() string
	GetRealm() string
	GetIssuer() string
	GetTokenURL() string
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
	GetOIDCDiscovery() bool
	GetMinTokenValidity() time.Duration
	GetRefreshTokenLength() int
	GetDefaultAccessTokenExpiry() time.Duration
	GetDefaultIDTokenExpiry() time.Duration
	GetDefaultRefreshTokenExpiry() time.Duration
}

const tokenEndpointPath = "/protocol/openid-connect/token"

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetKeycloakURL() string {
	return strings.TrimRight(GetEnv("KEYCLOAK_URL", "http://localhost:8081"), "/")
}

func (OAuth) GetRealm() string {
	return GetEnv("KEYCLOAK_REALM", "kubeatlas")
}

// GetIssuer returns the realm issuer, e.g. http://localhost:8081/realms/kubeatlas
func (o OAuth) GetIssuer() string {
	if issuer := GetEnv("OIDC_ISSUER", ""); issuer != "" {
		return strings.TrimRight(issuer, "/")
	}
	return o.GetKeycloakURL() + "/realms/" + o.GetRealm()
}

func (o OAuth) GetTokenURL() string {
	return GetEnv("OIDC_TOKEN_URL", o.GetIssuer()+tokenEndpointPath)
}

func (OAuth) GetClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "kubeatlas-backend")
}

func (OAuth) GetClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "backend-secret-key")
}

func (OAuth) GetScopes() []string {
	return strings.Fields(GetEnv("OIDC_SCOPES", "openid profile email roles"))
}

func (OAuth) GetOIDCDiscovery() bool {
	return GetEnvBool("OIDC_DISCOVERY", false)
}

func (OAuth) GetMinTokenValidity() time.Duration {
	return GetEnvDuration("TOKEN_MIN_VALIDITY", 30*time.Second)
}

func (OAuth) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

func (OAuth) GetDefaultAccessTokenExpiry() time.Duration {
	return GetEnvDuration("STUB_ACCESS_TOKEN_TTL", 5*time.Minute)
}

func (OAuth) GetDefaultIDTokenExpiry() time.Duration {
	return GetEnvDuration("STUB_ID_TOKEN_TTL", 5*time.Minute)
}

func (OAuth) GetDefaultRefreshTokenExpiry() time.Duration {
	return GetEnvDuration("STUB_REFRESH_TOKEN_TTL", 30*time.Minute)
}
