package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Keycloak realm routes. {realm} must match the configured realm.
	RouteRealm                 = "/realms/{realm}"
	RouteWellKnownOpenIDConfig = RouteRealm + "/.well-known/openid-configuration"
	RouteCerts                 = RouteRealm + certsEndpoint
	RouteToken                 = RouteRealm + tokenEndpoint
	RouteIntrospect            = RouteRealm + introspectEndpoint
	RouteRevoke                = RouteRealm + revokeEndpoint
	RouteUserInfo              = RouteRealm + userInfoEndpoint
	RouteLogout                = RouteRealm + logoutEndpoint

	// Backend API routes
	RouteAPIPrefix         = "/api/v1"
	RouteAPIUserProfile    = RouteAPIPrefix + "/user/profile"
	RouteAPIUserRoles      = RouteAPIPrefix + "/user/roles"
	RouteAPIUserSessions   = RouteAPIPrefix + "/user/sessions"
	RouteAPIUserSession    = RouteAPIUserSessions + "/{sid}"
	RouteAPIUserRevokeAll  = RouteAPIUserSessions + "/revoke"
	RouteAPIAuthUser       = RouteAPIPrefix + "/auth/user"
	RouteAPIAuthValidate   = RouteAPIPrefix + "/auth/validate"
	RouteAPIStatistics     = RouteAPIPrefix + "/statistics"
	RouteAPIAdminUsers     = RouteAPIPrefix + "/admin/users"
	RouteAPIAdminUser      = RouteAPIAdminUsers + "/{id}"
	RouteAPIAdminUserRoles = RouteAPIAdminUser + "/roles"
	RouteAPIAdminSessions  = RouteAPIAdminUser + "/sessions"
	RouteAPIAdminSession   = RouteAPIAdminSessions + "/{sid}"
	RouteAPIAdminRevokeAll = RouteAPIAdminSessions + "/revoke"

	RouteHealth = "/health"
)

// Endpoint paths relative to the issuer.
const (
	certsEndpoint      = "/protocol/openid-connect/certs"
	tokenEndpoint      = "/protocol/openid-connect/token"
	introspectEndpoint = "/protocol/openid-connect/token/introspect"
	revokeEndpoint     = "/protocol/openid-connect/revoke"
	userInfoEndpoint   = "/protocol/openid-connect/userinfo"
	logoutEndpoint     = "/protocol/openid-connect/logout"
)
