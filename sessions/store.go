package sessions

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"github.com/jrsteele09/go-session-keeper/oauth2"
	"github.com/jrsteele09/go-session-keeper/token"
	"github.com/rs/zerolog/log"
)

// DefaultSkew is subtracted from provider lifetimes so stored expiries are conservative.
const DefaultSkew = 30 * time.Second

// TokenStore owns the authoritative token record of each session.
type TokenStore struct {
	repo    Repo
	skew    time.Duration
	nowFunc func() time.Time
}

// Option configures a TokenStore
type Option func(*TokenStore)

// WithNowFunc replaces the clock, mainly for tests
func WithNowFunc(now func() time.Time) Option {
	return func(s *TokenStore) {
		s.nowFunc = now
	}
}

// WithSkew overrides DefaultSkew
func WithSkew(skew time.Duration) Option {
	return func(s *TokenStore) {
		if skew >= 0 {
			s.skew = skew
		}
	}
}

// NewTokenStore creates a token store on top of repo
func NewTokenStore(repo Repo, opts ...Option) *TokenStore {
	s := &TokenStore{
		repo:    repo,
		skew:    DefaultSkew,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's clock reading
func (s *TokenStore) Now() time.Time {
	return s.nowFunc()
}

// ExpiryFromLifetime computes now + max(0, lifetime - skew).
func ExpiryFromLifetime(now time.Time, lifetimeSeconds int, skew time.Duration) time.Time {
	remaining := time.Duration(lifetimeSeconds)*time.Second - skew
	if remaining < 0 {
		remaining = 0
	}
	return now.Add(remaining)
}

// Save replaces the session's record with one built from a provider response.
// Claim decoding is best effort: a malformed access token leaves the claim set empty.
func (s *TokenStore) Save(sessionID string, resp *oauth2.TokenResponse) (*Record, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("[TokenStore Save] session ID cannot be empty")
	}
	if resp == nil {
		return nil, fmt.Errorf("[TokenStore Save] token response cannot be nil")
	}

	now := s.nowFunc()
	claims, err := token.Decode(resp.AccessToken)
	if err != nil {
		log.Warn().Err(err).Str("session", ShortID(sessionID)).Msg("Access token claims could not be decoded")
		claims = token.Claims{}
	}
	username, displayName := token.Identity(claims)

	record := &Record{
		SessionID: sessionID,
		Tokens: TokenBundle{
			AccessToken:      resp.AccessToken,
			RefreshToken:     resp.RefreshToken,
			AccessExpiresAt:  ExpiryFromLifetime(now, resp.ExpiresIn, s.skew),
			RefreshExpiresAt: ExpiryFromLifetime(now, resp.RefreshExpiresIn, s.skew),
			TokenType:        resp.GetTokenType(),
			Scope:            resp.Scope,
			SessionState:     resp.SessionState,
			Claims:           claims,
		},
		Subject:     token.Subject(claims),
		Username:    username,
		DisplayName: displayName,
		Roles:       token.RealmRoles(claims),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// A refresh keeps the original creation time
	if existing, err := s.repo.Get(sessionID); err == nil {
		record.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(sessionID, record); err != nil {
		return nil, fmt.Errorf("[TokenStore Save] failed to store session: %w", err)
	}
	return record.clone(), nil
}

// Clear removes every field of the session's record. Clearing an absent session is a no-op.
func (s *TokenStore) Clear(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.repo.Delete(sessionID); err != nil {
		return fmt.Errorf("[TokenStore Clear] failed to delete session: %w", err)
	}
	return nil
}

// Current returns a copy of the session's record, if any.
func (s *TokenStore) Current(sessionID string) (*Record, bool) {
	record, err := s.repo.Get(sessionID)
	if err != nil {
		if !errors.Is(err, errors.ErrSessionNotFound) {
			log.Err(err).Str("session", ShortID(sessionID)).Msg("Failed to read session")
		}
		return nil, false
	}
	return record, true
}

// PurgeExpired drops sessions whose refresh token is dead; they can never be refreshed.
func (s *TokenStore) PurgeExpired() int {
	removed, err := s.repo.DeleteExpired(s.nowFunc())
	if err != nil {
		log.Err(err).Msg("Failed to purge expired sessions")
	}
	return removed
}

// ShortID shortens a session ID for logs.
func ShortID(sessionID string) string {
	const keep = 8
	if len(sessionID) <= keep {
		return sessionID
	}
	return sessionID[:keep]
}
