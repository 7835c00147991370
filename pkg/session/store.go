package session

import (
	"context"
	"sync"
	"time"
)

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. It returns ErrNotFound for unknown IDs
	// and ErrExpired (after removing the entry) for expired sessions.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a copy of the session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (may be a no-op for backends with native expiry).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		if live, expired := s.evictExpired(id); !expired {
			return live, nil
		}
		return nil, ErrExpired
	}
	return sess.clone(), nil
}

// evictExpired re-reads id under the write lock and removes it if it is
// still expired. A session refreshed by a concurrent Set is returned instead.
func (s *MemoryStore) evictExpired(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[id]
	if !ok {
		return nil, true
	}
	if cur.IsExpired() {
		delete(s.sessions, id)
		return nil, true
	}
	return cur.clone(), false
}

func (s *MemoryStore) Set(_ context.Context, sess *Session) error {
	c := sess.clone()
	c.Handlers = Handlers{}
	for i := range c.Markers {
		c.Markers[i].Handlers = Handlers{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = c
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ Store = (*MemoryStore)(nil)
