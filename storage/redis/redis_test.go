package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleardish/entitlements/pkg/entitle"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use DB 15 for testing
	})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test database: %v", err)
	}

	store, err := New(client, DefaultConfig())
	require.NoError(t, err)
	return store
}

func TestStore_GetSetProfile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetProfile(ctx, "user1")
	assert.ErrorIs(t, err, entitle.ErrProfileNotFound)

	paidUntil := time.Now().UTC().AddDate(0, 0, 30).Truncate(time.Second)
	require.NoError(t, store.SetSubscription(ctx, "user1", entitle.PlanMonthly, paidUntil))

	profile, err := store.GetProfile(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "user1", profile.UserID)
	assert.Equal(t, entitle.PlanMonthly, profile.Plan)
	assert.True(t, profile.PaidUntil.Equal(paidUntil))
}

func TestStore_RepeatedWriteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	paidUntil := time.Date(2027, 8, 29, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetSubscription(ctx, "user1", entitle.PlanYearly, paidUntil))
	first, err := store.GetProfile(ctx, "user1")
	require.NoError(t, err)

	require.NoError(t, store.SetSubscription(ctx, "user1", entitle.PlanYearly, paidUntil))
	second, err := store.GetProfile(ctx, "user1")
	require.NoError(t, err)

	assert.Equal(t, first.Plan, second.Plan)
	assert.True(t, first.PaidUntil.Equal(second.PaidUntil))
}

func TestNew_NilClient(t *testing.T) {
	_, err := New(nil, DefaultConfig())
	assert.Error(t, err)
}
