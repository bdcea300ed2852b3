package session

import (
	"sync"

	"docent-ai/internal/rag"

	"github.com/google/uuid"
)

// Store keeps per-session conversation history in memory. Sessions live for
// the process lifetime; restarting the server starts every conversation over.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]rag.Message
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string][]rag.Message)}
}

// Create registers a new session and returns its ID.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = nil
	s.mu.Unlock()
	return id
}

// History returns a copy of the session's messages, oldest first. An unknown
// session ID returns nil.
func (s *Store) History(id string) []rag.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.sessions[id]
	if !ok {
		return nil
	}
	out := make([]rag.Message, len(history))
	copy(out, history)
	return out
}

// Exists reports whether the session ID is known.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// Append records messages at the end of the session's history. Appending to an
// unknown session creates it, so clients may carry IDs across a server
// restart.
func (s *Store) Append(id string, msgs ...rag.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = append(s.sessions[id], msgs...)
}

// Clear deletes the session's history. Clearing an unknown session is a no-op.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
