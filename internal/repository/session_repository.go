package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/noah-isme/gw-dashboard-api/internal/models"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned for sessions idle past their TTL that the
	// janitor has not purged yet.
	ErrSessionExpired = errors.New("session expired")
)

// SessionRepository keeps working sessions in memory with an idle TTL.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionRepository constructs an in-memory session store.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionRepository{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create stores a session and stamps its timestamps.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("session id required")
	}
	now := r.now().UTC()
	session.CreatedAt = now
	session.LastAccess = now
	session.ExpiresAt = now.Add(r.ttl)

	stored := *session
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = &stored
	return nil
}

// Get extends the session's expiry and returns a snapshot of it. The merged
// dataset inside is shared and must not be mutated.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := r.now().UTC()
	if now.After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	session.LastAccess = now
	session.ExpiresAt = now.Add(r.ttl)
	cp := *session
	return &cp, nil
}

// DeleteExpired purges sessions idle past the TTL and returns how many went.
func (r *SessionRepository) DeleteExpired(ctx context.Context) int {
	now := r.now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, session := range r.sessions {
		if now.After(session.ExpiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of stored sessions.
func (r *SessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
