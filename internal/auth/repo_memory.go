package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// MemoryRepository is a process-local Repository used in tests and in
// development when no database is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*User
	byID    map[string]*User
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byEmail: make(map[string]*User),
		byID:    make(map[string]*User),
	}
}

// FindByEmail fetches a user by exact email.
func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// FindByID fetches a user by identifier.
func (r *MemoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// Create stores a user; the email check and insert happen under one lock.
func (r *MemoryRepository) Create(_ context.Context, in NewUser) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[in.Email]; exists {
		return nil, shared.ErrConflict
	}
	user := &User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  in.Password,
		CreatedAt: time.Now().UTC(),
	}
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	clone := *user
	return &clone, nil
}

var _ Repository = (*MemoryRepository)(nil)
