package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

// SessionStore implements ports.SessionStore in process memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.PlanSession
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.PlanSession)}
}

// Get returns a copy of the session.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.PlanSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: plan %s", domain.ErrNotFound, id)
	}
	return &sess, nil
}

// Put stores a copy of the session.
func (s *SessionStore) Put(ctx context.Context, session *domain.PlanSession) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
