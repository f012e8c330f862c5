package sessions

import (
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-session-keeper/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of Repo
type InMemoryRepo struct {
	mu      sync.RWMutex
	records map[string]*Record // sessionID -> record
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		records: make(map[string]*Record),
	}
}

// Upsert creates or replaces a session record
func (r *InMemoryRepo) Upsert(sessionID string, record *Record) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	r.records[sessionID] = record.clone()
	return nil
}

// Get retrieves a copy of a session record
func (r *InMemoryRepo) Get(sessionID string) (*Record, error) {
	if sessionID == "" {
		return nil, errors.ErrSessionNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[sessionID]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return record.clone(), nil
}

// Delete removes a session record
func (r *InMemoryRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, sessionID)
	return nil
}

// DeleteExpired removes every record whose refresh token is dead at now
func (r *InMemoryRepo) DeleteExpired(now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for sessionID, record := range r.records {
		if record.RefreshExpired(now) {
			delete(r.records, sessionID)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored records
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
