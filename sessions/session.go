package sessions

import (
	"slices"
	"time"

	"github.com/jrsteele09/go-session-keeper/token"
)

// TokenBundle is the provider token set held for one session. It lives in memory only.
type TokenBundle struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time // now + max(0, expires_in - skew)
	RefreshExpiresAt time.Time // now + max(0, refresh_expires_in - skew)
	TokenType        string
	Scope            string
	SessionState     string       // Provider's opaque session identifier
	Claims           token.Claims // Decoded from the access token, unverified
}

// Record is the server-side state of one authenticated session. It is never sent
// to the client.
type Record struct {
	SessionID   string
	Tokens      TokenBundle
	Subject     string
	Username    string
	DisplayName string
	Roles       []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RefreshExpired reports whether the refresh token is dead at now.
func (r *Record) RefreshExpired(now time.Time) bool {
	return !now.Before(r.Tokens.RefreshExpiresAt)
}

// AccessValid reports whether the access token can still be used at now.
func (r *Record) AccessValid(now time.Time) bool {
	return now.Before(r.Tokens.AccessExpiresAt)
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Tokens.Claims = r.Tokens.Claims.Clone()
	c.Roles = slices.Clone(r.Roles)
	return &c
}
