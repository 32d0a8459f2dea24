package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/transcribe/internal/workflow"
)

// Session pairs a workflow controller with its identifier
type Session struct {
	ID         string
	CreatedAt  time.Time
	Controller *workflow.Controller
}

type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

// List returns all sessions, oldest first
func (s *SessionStore) List() []*Session {
	s.mu.RLock()
	result := make([]*Session, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return exists
}

// Prune removes sessions whose workflow has not changed since before cutoff
// and returns how many were removed.
func (s *SessionStore) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.Controller.State().UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
