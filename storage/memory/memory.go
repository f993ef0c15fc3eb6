// Package memory provides an in-memory implementation of the
// entitle.ProfileStore interface. This implementation is primarily intended
// for testing and development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cleardish/entitlements/pkg/entitle"
)

// Store implements entitle.ProfileStore using an in-memory map.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*entitle.Profile
}

// New creates a new in-memory profile store.
func New() *Store {
	return &Store{profiles: make(map[string]*entitle.Profile)}
}

// GetProfile implements entitle.ProfileStore.
func (s *Store) GetProfile(ctx context.Context, userID string) (*entitle.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, entitle.ErrProfileNotFound
	}

	// Return a copy to prevent external mutations
	cp := *p
	return &cp, nil
}

// SetSubscription implements entitle.ProfileStore.
func (s *Store) SetSubscription(ctx context.Context, userID string, plan entitle.Plan, paidUntil time.Time) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[userID] = &entitle.Profile{
		UserID:    userID,
		Plan:      plan,
		PaidUntil: paidUntil,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}
