package auth

import (
	"time"

	"github.com/jrsteele09/go-session-keeper/sessions"
)

// TickAction is what a refresh tick must do for a session.
type TickAction int

const (
	// TickSignedOut: no record exists, the client is already logged out server-side
	TickSignedOut TickAction = iota
	// TickExpired: the refresh token is dead and the session is unrecoverable
	TickExpired
	// TickFresh: the access token is still valid
	TickFresh
	// TickRefresh: the access token expired but the refresh token is alive
	TickRefresh
)

func (a TickAction) String() string {
	switch a {
	case TickSignedOut:
		return "signed_out"
	case TickExpired:
		return "expired"
	case TickFresh:
		return "fresh"
	case TickRefresh:
		return "refresh"
	}
	return "unknown"
}

// DecideTick evaluates the refresh decision table from absolute instants.
// Nothing is carried between ticks, so missed ticks and restarts are harmless.
// The refresh expiry is checked first because the two expiries are independent.
func DecideTick(record *sessions.Record, now time.Time) TickAction {
	switch {
	case record == nil:
		return TickSignedOut
	case record.RefreshExpired(now):
		return TickExpired
	case record.AccessValid(now):
		return TickFresh
	default:
		return TickRefresh
	}
}
