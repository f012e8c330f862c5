package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-session-keeper/auth"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"github.com/jrsteele09/go-session-keeper/sessions"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName    string
	ActionPath string
	CSSPath    string
	Error      string
	Username   string // Preserve username on error
}

const maxBodyBytes = 1 << 16

// loginResponse is the JSON answer to a login submission
type loginResponse struct {
	LoggedIn bool   `json:"logged_in"`
	Redirect string `json:"redirect,omitempty"`
	Error    string `json:"error,omitempty"`
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.Status(s.sessionID(r)).LoggedIn {
			redirectSuccess(w, r, s.Path(RouteHome))
			return
		}

		data := LoginPageData{
			AppName:    s.config.GetAppName(),
			ActionPath: s.Path(RouteAuthLogin),
			CSSPath:    s.Path("/css/app.css"),
			Error:      r.URL.Query().Get("error"),
			Username:   r.URL.Query().Get("username"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.templates.ExecuteTemplate(w, "login.html", data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form (or JSON) submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asJSON := isJSONRequest(r)

		req, err := readLoginRequest(r)
		if err != nil {
			log.Debug().Err(err).Msg("Unreadable login submission")
			s.respondLogin(w, r, asJSON, http.StatusBadRequest, "", auth.Outcome{ErrorMessage: auth.MsgMissingCredentials})
			return
		}

		if s.limiter != nil {
			ip := s.clientIP(r)
			if ok, retryAfter := s.limiter.allow(ip + ":" + req.Username); !ok {
				log.Warn().Err(errors.ErrRateLimited).Str("ip", ip).Dur("retry_after", retryAfter).Msg("Login rate limit exceeded")
				w.Header().Set("Retry-After", retryAfterHeader(retryAfter))
				s.respondLogin(w, r, asJSON, http.StatusTooManyRequests, req.Username, auth.Outcome{
					Status:       s.sessions.Status(s.sessionID(r)),
					ErrorMessage: auth.MsgTooManyAttempts,
				})
				return
			}
		}

		outcome, err := s.sessions.Login(r.Context(), s.sessionID(r), req)

		status := http.StatusOK
		switch {
		case errors.Is(err, errors.ErrValidation):
			status = http.StatusBadRequest
		case err != nil:
			status = http.StatusUnauthorized
		default:
			s.SetSessionCookie(w, r, outcome.SessionID, 0)
		}
		s.respondLogin(w, r, asJSON, status, req.Username, outcome)
	}
}

// respondLogin answers JSON clients with a status body and browsers with a redirect.
func (s *Server) respondLogin(w http.ResponseWriter, r *http.Request, asJSON bool, status int, username string, outcome auth.Outcome) {
	if asJSON {
		writeJSON(w, status, loginResponse{
			LoggedIn: outcome.Status.LoggedIn,
			Redirect: outcome.RedirectPath,
			Error:    outcome.ErrorMessage,
		})
		return
	}

	if status == http.StatusTooManyRequests {
		http.Error(w, outcome.ErrorMessage, status)
		return
	}
	if outcome.ErrorMessage != "" {
		params := url.Values{}
		if username != "" {
			params.Set("username", username)
		}
		redirectWithError(w, r, s.Path(RouteLogin), outcome.ErrorMessage, params)
		return
	}
	redirectSuccess(w, r, outcome.RedirectPath)
}

func readLoginRequest(r *http.Request) (auth.LoginRequest, error) {
	var req auth.LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), contentTypeJSON) {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			return req, errors.Wrapf(err, "decode login body")
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, errors.Wrapf(err, "parse login form")
	}
	req.Username = r.PostFormValue("username")
	req.Password = r.PostFormValue("password")
	return req, nil
}

// LogoutHandler ends the session and forgets the cookie
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.sessionID(r)
		outcome := s.sessions.Logout(r.Context(), sessionID)
		s.clearSessionCookie(w, r)

		log.Debug().Str("session", sessions.ShortID(sessionID)).Msg("Logout")
		if isJSONRequest(r) {
			writeJSON(w, http.StatusOK, outcome.Status)
			return
		}
		redirectSuccess(w, r, outcome.RedirectPath)
	}
}
