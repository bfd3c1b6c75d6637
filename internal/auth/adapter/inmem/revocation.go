package inmem

import (
	"context"
	"sync"
)

// RevocationRegistry is an in-memory revocation set.
type RevocationRegistry struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

// NewRevocationRegistry creates an empty registry.
func NewRevocationRegistry() *RevocationRegistry {
	return &RevocationRegistry{revoked: make(map[string]struct{})}
}

// Revoke marks a token as invalidated.
func (r *RevocationRegistry) Revoke(rawToken string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[rawToken] = struct{}{}
}

// IsRevoked reports whether the token has been invalidated.
func (r *RevocationRegistry) IsRevoked(_ context.Context, rawToken string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.revoked[rawToken]
	return ok, nil
}
