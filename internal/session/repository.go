// ABOUTME: Repository interface for session persistence plus the in-memory implementation
// ABOUTME: Keeps storage swappable (sqlite, redis, memory) and testable without a backend

package session

import (
	"context"
	"sync"
)

// Repository persists the full session state. Save must be atomic: either the
// whole state (messages, id counter, ratings) is written or nothing is.
type Repository interface {
	// Load returns the persisted state, or ErrNotFound if nothing was saved.
	Load(ctx context.Context) (*State, error)

	// Save persists the full state, replacing whatever was stored before.
	Save(ctx context.Context, state *State) error

	// Clear erases all persisted artifacts.
	Clear(ctx context.Context) error
}

// MemoryRepository is an in-memory Repository used by tests and as a
// fallback when no durable backend is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	state *State
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Load implements Repository.
func (r *MemoryRepository) Load(ctx context.Context) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return nil, ErrNotFound
	}
	return r.state.Clone(), nil
}

// Save implements Repository.
func (r *MemoryRepository) Save(ctx context.Context, state *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state.Clone()
	return nil
}

// Clear implements Repository.
func (r *MemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = nil
	return nil
}
