package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/querygate/engine/pkg/apperrors"
	"github.com/querygate/engine/pkg/models"
)

// Session owns one conversation state and a privilege flag. The mutex
// serializes turns: the conversation state governs how the next input
// is interpreted, so it must be read and written as one atomic unit per
// turn.
type Session struct {
	ID        uuid.UUID
	Privilege models.Privilege

	mu    sync.Mutex
	state models.ConversationState
}

// WithState runs fn while holding the session's turn lock. fn may read
// and mutate the state freely; no other turn observes it in between.
func (s *Session) WithState(fn func(state *models.ConversationState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// SessionStore holds active sessions keyed by identifier.
type SessionStore interface {
	Create(privilege models.Privilege) *Session
	Get(id uuid.UUID) (*Session, error)
	Delete(id uuid.UUID)
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionStore creates an empty in-memory store.
func NewSessionStore() SessionStore {
	return &sessionStore{sessions: make(map[uuid.UUID]*Session)}
}

func (s *sessionStore) Create(privilege models.Privilege) *Session {
	session := &Session{
		ID:        uuid.New(),
		Privilege: privilege,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

func (s *sessionStore) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
