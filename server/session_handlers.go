package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/go-session-keeper/auth"
	"github.com/rs/zerolog/log"
)

// RefreshHandler runs one refresh tick (POST /auth/refresh). The body carries
// the flag the client currently holds: {"logged_in": true}. An empty body
// means a logged out client.
//
// 204 means no update. 200 carries the replacement status.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var client auth.AuthStatus
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&client); err != nil && err != io.EOF {
			log.Debug().Err(err).Msg("Unreadable refresh tick")
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
			return
		}

		update := s.sessions.Tick(r.Context(), s.sessionID(r), client.LoggedIn)
		if !update.Changed {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if !update.Status.LoggedIn {
			s.clearSessionCookie(w, r)
		}
		writeJSON(w, http.StatusOK, update.Status)
	}
}

// StatusHandler reports whether the server holds a session for the cookie
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.sessions.Status(s.sessionID(r)))
	}
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
