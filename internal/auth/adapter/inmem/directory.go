// Package inmem provides in-memory implementations of the resolver's
// collaborators for development and tests.
package inmem

import (
	"context"
	"fmt"
	"sync"

	"portal/internal/domain"
)

// Directory is an in-memory UserDirectory.
type Directory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{users: make(map[string]domain.User)}
}

// Seed inserts or replaces a record without the Create uniqueness checks.
func (d *Directory) Seed(u domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

// FindByID returns the user with the given id, or (nil, nil) when absent.
func (d *Directory) FindByID(_ context.Context, id string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if u, ok := d.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

// FindByEmail returns the user with the given email, or (nil, nil) when absent.
func (d *Directory) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// Create inserts a new record; ids must be unique.
func (d *Directory) Create(_ context.Context, u domain.User) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.users[u.ID]; exists {
		return nil, fmt.Errorf("user %q already exists", u.ID)
	}
	d.users[u.ID] = u
	return &u, nil
}

// Update applies the patch's non-nil fields to the record.
func (d *Directory) Update(_ context.Context, id string, patch domain.UserPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return fmt.Errorf("user %q not found", id)
	}
	if patch.ExternalID != nil {
		u.ExternalID = *patch.ExternalID
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.ProfileImageURL != nil {
		u.ProfileImageURL = *patch.ProfileImageURL
	}
	d.users[id] = u
	return nil
}
