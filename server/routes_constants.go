package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHome = "/"

	// Login flow
	RouteLogin  = "/login"
	RouteLogout = "/logout"
	RouteOAuth  = "/oauth"
	RouteError  = "/error"

	RouteHealth = "/healthz"
)
