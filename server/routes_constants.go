package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public pages
	RouteSignIn = "/signin"
	RouteSignUp = "/signup"
	RouteLogout = "/logout"

	// Protected pages
	RouteHome      = "/"
	RouteChat      = "/chat"
	RouteChatReset = "/chat/reset"

	RouteHealth = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
