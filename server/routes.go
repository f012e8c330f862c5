package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+s.Path("/{$}"), ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteFunc("GET "+s.Path(RouteHealthz), s.HealthzHandler())

	// LOGIN
	s.RegisterRouteHandler("GET "+s.Path(RouteLogin), ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+s.Path(RouteAuthLogin), ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))

	// LOGOUT
	s.RegisterRouteHandler("POST "+s.Path(RouteAuthLogout), ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Client polling
	s.RegisterRouteHandler("POST "+s.Path(RouteAuthRefresh), ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+s.Path(RouteAuthRefresh), ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+s.Path(RouteAuthStatus), ChainMiddleware(s.StatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+s.Path(RouteAuthStatus), ChainMiddleware(s.StatusHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+s.Path(RouteStaticCSS), ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+s.Path(RouteStaticJS), ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, s.prefix), "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := serveAsset(w, filePath); err != nil {
			logError(r.Method, filePath, err)
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

func logError(method, path string, err error) {
	log.Warn().Err(err).Msgf("[%-19s] %s %s", colourMethod(method), path, Red+"not served"+ResetColor)
}
