package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HomePageData contains data for rendering the protected home page
type HomePageData struct {
	AppName           string
	Greeting          string
	Roles             []string
	CSSPath           string
	ScriptPath        string
	LogoutPath        string
	RefreshPath       string
	LoginPath         string
	RefreshIntervalMs int64
}

// HomeHandler renders the page shown to logged in users
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := SessionFromContext(r.Context())
		if !ok {
			redirectSuccess(w, r, s.Path(RouteLogin))
			return
		}

		data := HomePageData{
			AppName:           s.config.GetAppName(),
			Greeting:          Greeting(record.DisplayName),
			Roles:             record.Roles,
			CSSPath:           s.Path("/css/app.css"),
			ScriptPath:        s.Path("/js/session.js"),
			LogoutPath:        s.Path(RouteAuthLogout),
			RefreshPath:       s.Path(RouteAuthRefresh),
			LoginPath:         s.Path(RouteLogin),
			RefreshIntervalMs: s.config.GetRefreshInterval().Milliseconds(),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.templates.ExecuteTemplate(w, "home.html", data); err != nil {
			log.Err(err).Msg("Failed to render home template")
			http.Error(w, "Failed to render home page", http.StatusInternalServerError)
		}
	}
}

// Greeting renders "Welcome <Name>", falling back to a bare welcome.
// A Caser holds state, so one is built per call.
func Greeting(displayName string) string {
	if displayName == "" {
		return "Welcome"
	}
	return "Welcome " + cases.Title(language.Und).String(displayName)
}
