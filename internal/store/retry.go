package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// withRetry runs op under exponential backoff, bounded by the store's attempt
// budget and the caller's context. Permanent errors come back as-is; a
// transient error that survives the whole budget is reported as ErrUnavailable.
func (s *Store) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(s.maxAttempts-1)), ctx)

	err := backoff.Retry(func() error {
		err := op()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
	if err == nil {
		return nil
	}
	if retryable(err) {
		return fmt.Errorf("%w: %d attempts: %v", ErrUnavailable, s.maxAttempts, err)
	}
	return err
}

// retryable classifies an error as transient. Connection-level failures,
// serialization conflicts, resource exhaustion and server shutdowns retry;
// everything the database will deterministically reject again does not.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) < 2 {
			return false
		}
		switch pgErr.Code[:2] {
		case "08": // connection exception
			return true
		case "40": // serialization failure, deadlock
			return true
		case "53": // insufficient resources
			return true
		case "57": // operator intervention, admin shutdown
			return true
		default:
			return false
		}
	}

	// Anything else is a network-level failure from the driver.
	return true
}
