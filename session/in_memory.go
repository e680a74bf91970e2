package session

import (
	"context"
	"sync"

	"github.com/hupe1980/trademesh/core"
)

// InMemoryStore is a volatile Store implementation keeping sessions in a
// process local map. It is safe for concurrent access and best suited
// for tests or single-process runs. Each returned session is cloned to
// prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session)}
}

// Create stores a new empty session, overwriting any previous one with
// the same ID.
func (s *InMemoryStore) Create(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := New(id)
	s.sessions[sess.ID] = sess
	return sess.Clone(), nil
}

// Get returns a clone of an existing session.
func (s *InMemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// AppendMessage adds a message to an existing or lazily created session.
func (s *InMemoryStore) AppendMessage(_ context.Context, id string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(id).AddMessage(msg)
	return nil
}

// SetState stores a state value on an existing or lazily created session.
func (s *InMemoryStore) SetState(_ context.Context, id string, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(id).SetState(key, value)
	return nil
}

// List returns the stored session IDs.
func (s *InMemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes a session.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// getOrCreateLocked returns the stored session, creating it when absent.
// Caller must hold the write lock.
func (s *InMemoryStore) getOrCreateLocked(id string) *Session {
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := New(id)
	s.sessions[sess.ID] = sess
	return sess
}
