package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// pendingLoginStore is the in-process implementation of
// [PendingLoginStore]. Markers are single-use and expire after a short TTL;
// they deliberately live only in memory so an unconfirmed TOTP secret never
// reaches durable storage.
type pendingLoginStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]PendingLogin
	now     func() time.Time
}

// NewPendingLoginStore constructs a [PendingLoginStore] whose markers
// expire after ttl (5 minutes when ttl is zero).
func NewPendingLoginStore(ttl time.Duration) PendingLoginStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &pendingLoginStore{
		ttl:     ttl,
		pending: make(map[string]PendingLogin),
		now:     time.Now,
	}
}

// Put stores the pending login, assigning ID, CreatedAt, and ExpiresAt
// when unset, and returns the stored marker.
func (s *pendingLoginStore) Put(_ context.Context, p PendingLogin) (PendingLogin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = p.CreatedAt.Add(s.ttl)
	}

	s.pending[p.ID] = p
	return p, nil
}

// Get returns the marker with the given id, or [ErrMarkerNotFound] when it
// is absent or expired. Expired markers are removed on sight.
func (s *pendingLoginStore) Get(_ context.Context, id string) (PendingLogin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return PendingLogin{}, ErrMarkerNotFound
	}
	if s.now().After(p.ExpiresAt) {
		delete(s.pending, id)
		return PendingLogin{}, ErrMarkerNotFound
	}

	return p, nil
}

// Consume removes and returns the marker with the given id. A marker can
// be consumed exactly once; a second call yields [ErrMarkerNotFound].
func (s *pendingLoginStore) Consume(_ context.Context, id string) (PendingLogin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return PendingLogin{}, ErrMarkerNotFound
	}
	delete(s.pending, id)

	if s.now().After(p.ExpiresAt) {
		return PendingLogin{}, ErrMarkerNotFound
	}

	return p, nil
}

// PurgeExpired drops every expired marker and returns how many were
// removed. Called periodically by the janitor worker.
func (s *pendingLoginStore) PurgeExpired(_ context.Context, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, p := range s.pending {
		if now.After(p.ExpiresAt) {
			delete(s.pending, id)
			purged++
		}
	}

	return purged
}
