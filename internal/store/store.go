// Package store is the gateway to the records table. All reads and writes go
// through a shared pgx pool and run under a bounded retry policy for transient
// database failures.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound reports that no record matched the given id. Retrying
	// cannot make a nonexistent id exist, so it is never retried.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable is returned once the retry budget is exhausted.
	ErrUnavailable = errors.New("store unavailable")
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	pool        *pgxpool.Pool
	maxAttempts int
	retryDelay  time.Duration
}

func New(ctx context.Context, databaseURL string, maxAttempts int, retryDelay time.Duration) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Store{pool: pool, maxAttempts: maxAttempts, retryDelay: retryDelay}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the records table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
