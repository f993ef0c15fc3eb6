// Package redis provides a Redis implementation of the
// entitle.ProfileStore interface. Profiles are stored as JSON values under
// a configurable key prefix.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cleardish/entitlements/pkg/entitle"
)

// Store implements entitle.ProfileStore using Redis.
type Store struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis store configuration.
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "entitlements:profile:").
	KeyPrefix string

	// ProfileTTL is the TTL for profile keys (0 = no expiration).
	ProfileTTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:  "entitlements:profile:",
		ProfileTTL: 0,
	}
}

// New creates a new Redis profile store.
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring.
func New(client redis.UniversalClient, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "entitlements:profile:"
	}
	return &Store{client: client, config: config}, nil
}

type profileDoc struct {
	UserID    string    `json:"user_id"`
	Plan      string    `json:"plan"`
	PaidUntil time.Time `json:"paid_until"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Store) key(userID string) string {
	return s.config.KeyPrefix + userID
}

// GetProfile implements entitle.ProfileStore.
func (s *Store) GetProfile(ctx context.Context, userID string) (*entitle.Profile, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entitle.ErrProfileNotFound
		}
		return nil, fmt.Errorf("%w: %v", entitle.ErrStoreUnavailable, err)
	}

	var doc profileDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return &entitle.Profile{
		UserID:    doc.UserID,
		Plan:      entitle.Plan(doc.Plan),
		PaidUntil: doc.PaidUntil,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// SetSubscription implements entitle.ProfileStore.
func (s *Store) SetSubscription(ctx context.Context, userID string, plan entitle.Plan, paidUntil time.Time) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	doc := profileDoc{
		UserID:    userID,
		Plan:      string(plan),
		PaidUntil: paidUntil.UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if err := s.client.Set(ctx, s.key(userID), raw, s.config.ProfileTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", entitle.ErrStoreUnavailable, err)
	}
	return nil
}
