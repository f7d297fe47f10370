package server

import (
	"github.com/jrsteele09/eventhub-auth/internal/metrics"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler(s.gatherer))

	// Session flow
	s.RegisterRouteFunc("POST "+RouteSignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteSignin, ChainMiddleware(s.SigninHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteFunc("POST "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))

	// Current identity
	s.RegisterRouteFunc("GET "+RouteCurrentUser, ChainMiddleware(s.CurrentUserHandler(), s.APIMiddleware(s.VerifyIdentity)...))
	s.RegisterRouteFunc("PUT "+RouteCurrentUserPassword, ChainMiddleware(s.ChangePasswordHandler(), s.APIMiddleware(s.VerifyIdentity)...))

	// Admin
	s.RegisterRouteFunc("GET "+RouteUsers, ChainMiddleware(s.ListUsersHandler(), s.APIMiddleware(s.VerifyIdentity, s.IsAdmin())...))
	s.RegisterRouteFunc("PUT "+RouteUserRole, ChainMiddleware(s.UpdateRoleHandler(), s.APIMiddleware(s.VerifyIdentity, s.IsAdmin())...))
}
