// Package postgres provides a PostgreSQL implementation of the
// entitle.ProfileStore interface, writing the same user_profiles table the
// mobile application reads.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cleardish/entitlements/pkg/entitle"
)

// Store implements entitle.ProfileStore using PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// Config holds PostgreSQL store configuration.
type Config struct {
	// ConnectionString is the PostgreSQL connection string.
	ConnectionString string

	// Table is the profiles table name (default: "user_profiles").
	Table string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Table:           "user_profiles",
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// New creates a new PostgreSQL profile store.
func New(ctx context.Context, config Config) (*Store, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}
	if config.Table == "" {
		config.Table = "user_profiles"
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &Store{pool: pool, table: config.Table}, nil
}

// NewWithPool creates a store over an existing pool. The caller keeps
// ownership of the pool.
func NewWithPool(pool *pgxpool.Pool, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "user_profiles"
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// GetProfile implements entitle.ProfileStore.
func (s *Store) GetProfile(ctx context.Context, userID string) (*entitle.Profile, error) {
	query := fmt.Sprintf(
		`SELECT user_id, user_sub_plan, user_sub_paid_until, updated_at FROM %s WHERE user_id = $1`,
		s.table)

	var p entitle.Profile
	var plan string
	err := s.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &plan, &p.PaidUntil, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entitle.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p.Plan = entitle.Plan(plan)
	return &p, nil
}

// SetSubscription implements entitle.ProfileStore. The upsert makes
// repeating a write with identical values a no-op beyond updated_at.
func (s *Store) SetSubscription(ctx context.Context, userID string, plan entitle.Plan, paidUntil time.Time) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, user_sub_plan, user_sub_paid_until, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			user_sub_plan = EXCLUDED.user_sub_plan,
			user_sub_paid_until = EXCLUDED.user_sub_paid_until,
			updated_at = NOW()`,
		s.table)

	if _, err := s.pool.Exec(ctx, query, userID, string(plan), paidUntil.UTC()); err != nil {
		return fmt.Errorf("failed to set subscription: %w", err)
	}
	return nil
}
