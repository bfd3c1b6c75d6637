package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"portal/internal/auth"
)

const sessionKeyPrefix = "session:"

// SessionRecord ties a session id to a user until it expires. It stores only
// identity pointers, never auth state.
type SessionRecord struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists session records in Redis with a TTL matching their
// expiry.
type SessionStore struct {
	client *goredis.Client
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) key(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Create stores a session record; the record must not already be expired.
func (s *SessionStore) Create(ctx context.Context, rec SessionRecord) error {
	if rec.SessionID == "" || rec.UserID == "" {
		return fmt.Errorf("session: missing session_id or user_id")
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	return s.client.Set(ctx, s.key(rec.SessionID), data, ttl).Err()
}

// Get returns the session record, or (nil, nil) when none exists.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*SessionRecord, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec SessionRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &rec, nil
}

// Delete removes a session record.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

// Authenticator adapts the session store to the resolver's probe: it reads
// the session cookie and reports the referenced user. Store failures count as
// "no authenticated session"; only a directory failure on a trusted session
// is a server fault, and that decision belongs to the resolver.
type Authenticator struct {
	store *SessionStore
}

// NewAuthenticator creates an Authenticator over the store.
func NewAuthenticator(store *SessionStore) *Authenticator {
	return &Authenticator{store: store}
}

// UserID implements auth.SessionAuthenticator.
func (a *Authenticator) UserID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	rec, err := a.store.Get(r.Context(), cookie.Value)
	if err != nil {
		slog.Warn("session lookup failed", "error", err)
		return "", false
	}
	if rec == nil || time.Now().After(rec.ExpiresAt) {
		return "", false
	}
	return rec.UserID, true
}
