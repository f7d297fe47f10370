package server

// Route path constants
const (
	RouteIndex   = "/{$}"
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Session flow
	RouteSignup  = "/signup"
	RouteSignin  = "/signin"
	RouteRefresh = "/refresh"

	// Users
	RouteUsers               = "/users"
	RouteCurrentUser         = "/users/me"
	RouteCurrentUserPassword = "/users/me/password"
	RouteUserRole            = "/users/{userId}/role"
)

// HeaderAccessToken carries the access token on protected requests.
const HeaderAccessToken = "x-access-token"
