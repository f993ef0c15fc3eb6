// Package firestore provides a Firestore implementation of the
// entitle.ProfileStore interface for deployments persisting subscription
// profiles in Google Cloud Firestore.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cleardish/entitlements/pkg/entitle"
)

// Store implements entitle.ProfileStore using Google Cloud Firestore.
type Store struct {
	client     *firestore.Client
	collection string
}

// Config holds Firestore store configuration.
type Config struct {
	// Collection is the Firestore collection for subscription profiles.
	// Default: "user_profiles"
	Collection string
}

// New creates a new Firestore profile store.
func New(client *firestore.Client, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is required")
	}
	if config.Collection == "" {
		config.Collection = "user_profiles"
	}
	return &Store{client: client, collection: config.Collection}, nil
}

// GetProfile implements entitle.ProfileStore.
func (s *Store) GetProfile(ctx context.Context, userID string) (*entitle.Profile, error) {
	snap, err := s.client.Collection(s.collection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, entitle.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if !snap.Exists() {
		return nil, entitle.ErrProfileNotFound
	}

	data := snap.Data()
	p := &entitle.Profile{UserID: userID}
	if v, ok := data["plan"].(string); ok {
		p.Plan = entitle.Plan(v)
	}
	if v, ok := data["paid_until"].(time.Time); ok {
		p.PaidUntil = v
	}
	if v, ok := data["updated_at"].(time.Time); ok {
		p.UpdatedAt = v
	}
	return p, nil
}

// SetSubscription implements entitle.ProfileStore. MergeAll keeps unrelated
// document fields intact.
func (s *Store) SetSubscription(ctx context.Context, userID string, plan entitle.Plan, paidUntil time.Time) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := s.client.Collection(s.collection).Doc(userID).Set(ctx, map[string]interface{}{
		"plan":       string(plan),
		"paid_until": paidUntil.UTC(),
		"updated_at": time.Now().UTC(),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to set subscription: %w", err)
	}
	return nil
}
