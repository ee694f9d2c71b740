package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.Health(), s.APIMiddleware()...))

	// Keycloak realm
	s.RegisterRouteHandler("GET "+RouteWellKnownOpenIDConfig, ChainMiddleware(s.WellKnownOpenIDConfig(), s.APIMiddleware(s.RequireRealm)...))
	s.RegisterRouteHandler("GET "+RouteCerts, ChainMiddleware(s.JWKS(), s.APIMiddleware(s.RequireRealm)...))
	s.RegisterRouteHandler("POST "+RouteToken, ChainMiddleware(s.Token(), s.APIMiddleware(s.RequireRealm)...))
	s.RegisterRouteHandler("POST "+RouteIntrospect, ChainMiddleware(s.Introspect(), s.APIMiddleware(s.RequireRealm, s.RequireClientAuth())...))
	s.RegisterRouteHandler("POST "+RouteRevoke, ChainMiddleware(s.Revoke(), s.APIMiddleware(s.RequireRealm, s.RequireClientAuth())...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.Logout(), s.APIMiddleware(s.RequireRealm, s.RequireClientAuth())...))
	s.RegisterRouteHandler("GET "+RouteUserInfo, ChainMiddleware(s.UserInfo(), s.APIMiddleware(s.RequireRealm, s.RequireAuth())...))

	// Signed-in user
	s.RegisterRouteHandler("GET "+RouteAPIUserProfile, ChainMiddleware(s.UserProfile(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIAuthUser, ChainMiddleware(s.UserProfile(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIUserRoles, ChainMiddleware(s.UserRoles(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteAPIAuthValidate, ChainMiddleware(s.ValidateToken(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIUserSessions, ChainMiddleware(s.MySessions(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteAPIUserSession, ChainMiddleware(s.RevokeMySession(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteAPIUserRevokeAll, ChainMiddleware(s.RevokeAllMySessions(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAPIStatistics, ChainMiddleware(s.Statistics(), s.APIMiddleware(s.RequireAuth())...))

	// User administration
	admin := s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())
	s.RegisterRouteHandler("GET "+RouteAPIAdminUsers, ChainMiddleware(s.AdminListUsers(), admin...))
	s.RegisterRouteHandler("POST "+RouteAPIAdminUsers, ChainMiddleware(s.AdminCreateUser(), admin...))
	s.RegisterRouteHandler("GET "+RouteAPIAdminUser, ChainMiddleware(s.AdminGetUser(), admin...))
	s.RegisterRouteHandler("PUT "+RouteAPIAdminUser, ChainMiddleware(s.AdminUpdateUser(), admin...))
	s.RegisterRouteHandler("DELETE "+RouteAPIAdminUser, ChainMiddleware(s.AdminDeleteUser(), admin...))
	s.RegisterRouteHandler("GET "+RouteAPIAdminUserRoles, ChainMiddleware(s.AdminUserRoles(), admin...))
	s.RegisterRouteHandler("GET "+RouteAPIAdminSessions, ChainMiddleware(s.AdminUserSessions(), admin...))
	s.RegisterRouteHandler("DELETE "+RouteAPIAdminSession, ChainMiddleware(s.AdminRevokeUserSession(), admin...))
	s.RegisterRouteHandler("POST "+RouteAPIAdminRevokeAll, ChainMiddleware(s.AdminRevokeAllUserSessions(), admin...))
}
