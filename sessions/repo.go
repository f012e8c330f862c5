package sessions

import "time"

// Repo defines the storage behind the token store.
// Implementations must be safe for concurrent use and must not share
// records with callers.
type Repo interface {
	// Upsert creates or replaces the record for a session
	Upsert(sessionID string, record *Record) error

	// Get retrieves a record, returning errors.ErrSessionNotFound when absent
	Get(sessionID string) (*Record, error)

	// Delete removes a record; deleting a missing record is not an error
	Delete(sessionID string) error

	// DeleteExpired removes records whose refresh token expired at or before now
	DeleteExpired(now time.Time) (int, error)
}
