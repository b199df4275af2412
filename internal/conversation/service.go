// Package conversation keeps the in-memory state of streaming classification
// sessions: each websocket conversation accumulates its turns so later
// utterances are classified with their dialogue context.
package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emoberta/emoberta/pkg/api"
)

var ErrSessionNotFound = errors.New("session not found")

// Turn is one classified utterance stored in a session history.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Speaker   string    `json:"speaker,omitempty"`
	Text      string    `json:"text"`
	Emotion   string    `json:"emotion,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service guards the session map. Histories are capped: once a session
// exceeds historyCap turns the oldest are discarded, which also bounds the
// context window handed to the classifier.
type Service struct {
	mu         sync.RWMutex
	sessions   map[string]api.Session
	turns      map[string][]Turn
	historyCap int
}

// NewService bootstraps the in-memory store.
func NewService(historyCap int) *Service {
	if historyCap < 1 {
		historyCap = 1
	}
	return &Service{
		sessions:   make(map[string]api.Session),
		turns:      make(map[string][]Turn),
		historyCap: historyCap,
	}
}

// CreateSession provisions a new streaming conversation.
func (s *Service) CreateSession(_ context.Context) (api.Session, error) {
	session := api.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.turns[session.ID] = make([]Turn, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (api.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return api.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// AppendTurn stores a classified turn in its session history.
func (s *Service) AppendTurn(_ context.Context, turn Turn) error {
	if turn.SessionID == "" {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[turn.SessionID]; !ok {
		return ErrSessionNotFound
	}

	turn.ID = uuid.NewString()
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	history := append(s.turns[turn.SessionID], turn)
	if len(history) > s.historyCap {
		history = history[len(history)-s.historyCap:]
	}
	s.turns[turn.SessionID] = history
	return nil
}

// History returns the stored turns of a session, oldest first.
func (s *Service) History(_ context.Context, sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.turns[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := make([]Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}
