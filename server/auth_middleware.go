package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-session-keeper/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the authenticated *sessions.Record
const ContextKeySession ContextKey = "session"

// RequireSessionAuth is middleware for HTML routes that need a live session.
// Requests without one are sent to the login page.
func (s *Server) RequireSessionAuth() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			record, ok := s.sessions.Session(s.sessionID(r))
			if !ok {
				redirectSuccess(w, r, s.Path(RouteLogin))
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, record)
			next(w, r.WithContext(ctx))
		}
	}
}

// SessionFromContext returns the record injected by RequireSessionAuth.
func SessionFromContext(ctx context.Context) (*sessions.Record, bool) {
	record, ok := ctx.Value(ContextKeySession).(*sessions.Record)
	return record, ok
}
