package inmem

import (
	"net/http"
	"sync"

	"portal/internal/auth"
)

// SessionStore is an in-memory session-id to user-id map that doubles as the
// resolver's session probe.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]string
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]string)}
}

// Put registers an authenticated session for the user.
func (s *SessionStore) Put(sessionID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = userID
}

// Remove drops a session.
func (s *SessionStore) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// UserID implements auth.SessionAuthenticator by reading the session cookie.
func (s *SessionStore) UserID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[cookie.Value]
	return userID, ok
}
