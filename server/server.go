package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-session-keeper/auth"
	"github.com/jrsteele09/go-session-keeper/internal/config"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	prefix     string // Root path prefix without trailing slash, "" at the root
	cookieName string
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	sessions   *auth.SessionService
	limiter    *loginLimiter
	templates  *template.Template

	trustedProxies config.TrustedProxies
}

func New(config config.Config, sessions *auth.SessionService) (*Server, error) {
	templates, err := ParseTemplates()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:        config.GetEnv(),
		prefix:     pathPrefix(config.GetRootPathPrefix()),
		cookieName: config.GetSessionCookieName(),
		mux:        http.NewServeMux(),
		config:     config,
		sessions:   sessions,
		templates:  templates,

		trustedProxies: config.GetTrustedProxies(),
	}
	if config.GetEnableRateLimiting() {
		s.limiter = newLoginLimiter(config.GetLoginRateLimit())
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Path returns route under the configured root path prefix.
func (s *Server) Path(route string) string {
	return PrefixedPath(s.prefix, route)
}

// PrefixedPath joins a ROOT_PATH_PREFIX value and a route.
func PrefixedPath(prefix, route string) string {
	return pathPrefix(prefix) + route
}

func pathPrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
