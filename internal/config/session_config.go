package config

import "time"

const (
	tokenSkewVar         = "token_skew_sec"
	refreshIntervalVar   = "refresh_interval_sec"
	janitorIntervalVar   = "janitor_interval_sec"
	sessionCookieNameVar = "session_cookie_name"
)

type SessionConfig interface {
	GetTokenSkew() time.Duration
	GetRefreshInterval() time.Duration
	GetJanitorInterval() time.Duration
	GetSessionCookieName() string
}

type Session struct {
	src source
}

var _ SessionConfig = Session{}

// GetTokenSkew is subtracted from every provider lifetime before it is stored.
func (s Session) GetTokenSkew() time.Duration {
	return s.src.nonNegativeSeconds(tokenSkewVar, 30*time.Second)
}

// GetRefreshInterval is how often clients are told to tick.
func (s Session) GetRefreshInterval() time.Duration {
	return s.src.seconds(refreshIntervalVar, 30*time.Second)
}

func (s Session) GetJanitorInterval() time.Duration {
	return s.src.seconds(janitorIntervalVar, time.Minute)
}

func (s Session) GetSessionCookieName() string {
	return s.src.str(sessionCookieNameVar, "keeper_session_id")
}
