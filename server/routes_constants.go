package server

// Route path constants, relative to the root path prefix
const (
	RouteHome    = "/"
	RouteLogin   = "/login"
	RouteHealthz = "/healthz"

	// Session lifecycle
	RouteAuthLogin   = "/auth/login"
	RouteAuthLogout  = "/auth/logout"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthStatus  = "/auth/status"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
