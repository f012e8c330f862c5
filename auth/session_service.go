package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"github.com/jrsteele09/go-session-keeper/provider"
	"github.com/jrsteele09/go-session-keeper/sessions"
	"github.com/rs/zerolog/log"
)

// DefaultProviderTimeout bounds a provider call when none is configured.
const DefaultProviderTimeout = 10 * time.Second

// ServiceConfig holds the settings of a SessionService.
type ServiceConfig struct {
	ProviderTimeout time.Duration
	HomePath        string // Redirect target after login
	LoginPath       string // Redirect target after logout
	NewSessionID    func() string
}

// SessionService is the session lifecycle state machine {Anonymous, Authenticated}.
// A session is Authenticated exactly while the token store holds a record for it.
type SessionService struct {
	store    *sessions.TokenStore
	provider provider.IdentityProvider
	config   ServiceConfig
	locks    sessionLocks
}

// NewSessionService creates the lifecycle manager.
func NewSessionService(store *sessions.TokenStore, idp provider.IdentityProvider, config ServiceConfig) *SessionService {
	if config.ProviderTimeout <= 0 {
		config.ProviderTimeout = DefaultProviderTimeout
	}
	if config.HomePath == "" {
		config.HomePath = "/"
	}
	if config.LoginPath == "" {
		config.LoginPath = "/login"
	}
	if config.NewSessionID == nil {
		config.NewSessionID = uuid.NewString
	}
	return &SessionService{
		store:    store,
		provider: idp,
		config:   config,
	}
}

// providerContext detaches the call from the caller's cancellation (an operation
// cannot be cancelled once started) but bounds it with the provider timeout.
func (s *SessionService) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.config.ProviderTimeout)
}

// Login exchanges the user's credentials for a token bundle.
//
// A successful login never authenticates the ID it was called with: the tokens are
// stored under a freshly issued ID, returned in Outcome.SessionID, and the old
// session is ended. sessionID may be empty.
//
// Missing credentials fail with errors.ErrValidation before any provider call.
// Every provider failure clears the session and fails with errors.ErrAuthentication;
// the user sees the same message whatever the cause.
func (s *SessionService) Login(ctx context.Context, sessionID string, req LoginRequest) (Outcome, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := req.Validate(); err != nil {
		return Outcome{
			Status:       s.status(sessionID),
			ErrorMessage: MsgMissingCredentials,
		}, err
	}

	callCtx, cancel := s.providerContext(ctx)
	defer cancel()

	resp, err := s.provider.ExchangeCredentials(callCtx, req.Username, req.Password)
	if err == nil {
		newID := s.config.NewSessionID()
		var record *sessions.Record
		if record, err = s.store.Save(newID, resp); err == nil {
			if sessionID != newID {
				s.end(callCtx, sessionID)
			}
			log.Info().Str("session", sessions.ShortID(newID)).Str("username", record.Username).Msg("User logged in")
			return Outcome{
				Status:       AuthStatus{LoggedIn: true},
				SessionID:    newID,
				RedirectPath: s.config.HomePath,
			}, nil
		}
	}

	err = kindOf(errors.ErrAuthentication, err)
	log.Warn().Err(err).Str("session", sessions.ShortID(sessionID)).Msg("Authentication failed")
	s.clear(sessionID)
	return Outcome{
		Status:       AuthStatus{LoggedIn: false},
		ErrorMessage: MsgInvalidCredentials,
	}, err
}

// Logout revokes the provider session when a refresh token is held, then clears
// the local session whatever the provider answered. It always ends Anonymous.
func (s *SessionService) Logout(ctx context.Context, sessionID string) Outcome {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	callCtx, cancel := s.providerContext(ctx)
	defer cancel()

	s.end(callCtx, sessionID)
	return Outcome{
		Status:       AuthStatus{LoggedIn: false},
		RedirectPath: s.config.LoginPath,
	}
}

// Tick is called on the client's refresh cadence. clientLoggedIn is the flag the
// client currently holds; ticks from logged-out clients are no-ops.
//
// Provider failures are not retried here: the next tick is the retry, bounded by
// the refresh token's expiry.
func (s *SessionService) Tick(ctx context.Context, sessionID string, clientLoggedIn bool) StatusUpdate {
	if !clientLoggedIn {
		return NoUpdate()
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	record, _ := s.store.Current(sessionID)
	action := DecideTick(record, s.store.Now())

	switch action {
	case TickSignedOut:
		log.Debug().Str("session", sessions.ShortID(sessionID)).Msg("Tick for a session the server does not hold")
		return Emit(false)
	case TickExpired:
		log.Info().Err(errors.ErrRefreshExpired).Str("session", sessions.ShortID(sessionID)).Msg("Refresh token expired; clearing session")
		s.clear(sessionID)
		return Emit(false)
	case TickFresh:
		return NoUpdate()
	}

	callCtx, cancel := s.providerContext(ctx)
	defer cancel()

	resp, err := s.provider.RefreshToken(callCtx, record.Tokens.RefreshToken)
	if err == nil {
		if _, err = s.store.Save(sessionID, resp); err == nil {
			log.Debug().Str("session", sessions.ShortID(sessionID)).Msg("Access token refreshed")
			return NoUpdate()
		}
	}

	log.Warn().Err(err).Str("session", sessions.ShortID(sessionID)).Msg("Token refresh failed; clearing session")
	s.clear(sessionID)
	return Emit(false)
}

// Status reports whether the server holds a session for sessionID.
func (s *SessionService) Status(sessionID string) AuthStatus {
	return s.status(sessionID)
}

// Session returns a copy of the session record, for display.
func (s *SessionService) Session(sessionID string) (*sessions.Record, bool) {
	return s.store.Current(sessionID)
}

func (s *SessionService) status(sessionID string) AuthStatus {
	_, ok := s.store.Current(sessionID)
	return AuthStatus{LoggedIn: ok}
}

// end revokes the provider session behind sessionID, if any, and clears it.
// Revocation failures are logged only. The caller holds the session lock.
func (s *SessionService) end(ctx context.Context, sessionID string) {
	if record, ok := s.store.Current(sessionID); ok && record.Tokens.RefreshToken != "" {
		if err := s.provider.Revoke(ctx, record.Tokens.RefreshToken); err != nil {
			log.Warn().Err(kindOf(errors.ErrRevocation, err)).Str("session", sessions.ShortID(sessionID)).Msg("Provider session revocation failed")
		}
		log.Info().Str("session", sessions.ShortID(sessionID)).Str("username", record.Username).Msg("Session ended")
	}
	s.clear(sessionID)
}

func (s *SessionService) clear(sessionID string) {
	if err := s.store.Clear(sessionID); err != nil {
		log.Err(err).Str("session", sessions.ShortID(sessionID)).Msg("Failed to clear session")
	}
}

// kindOf makes sure err matches kind without repeating it when it already does.
func kindOf(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return errors.Join(kind, err)
}
