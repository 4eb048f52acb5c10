package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Record holds the fields of one annotation exchange. Exactly one of Word and
// Text is set; empty optional fields are stored as NULL.
type Record struct {
	Word       string
	Text       string
	Context    string
	Annotation string
	Origin     string
}

// Stored is a record as read back from the database.
type Stored struct {
	ID         int64
	Word       *string
	Text       *string
	Context    *string
	Annotation string
	Origin     string
	Result     *bool
}

// CreateRecord inserts a record and returns the generated id. The insert runs
// under the retry policy; a retry after a commit that actually landed inserts
// a second row, since records carry no client-supplied key. That duplicate is
// an accepted risk — the alternative, losing the record, is not.
func (s *Store) CreateRecord(ctx context.Context, rec Record) (int64, error) {
	var id int64
	err := s.withRetry(ctx, func() error {
		return s.pool.QueryRow(ctx, `
			INSERT INTO records (word, text, context, annotation, origin)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			nullable(rec.Word), nullable(rec.Text), nullable(rec.Context), rec.Annotation, rec.Origin,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return id, nil
}

// UpdateResult sets the correctness judgment on a record. Safe to retry: the
// same id and value converge to the same row state regardless of attempt
// count. Returns ErrNotFound when no record matches.
func (s *Store) UpdateResult(ctx context.Context, id int64, result bool) error {
	err := s.withRetry(ctx, func() error {
		tag, err := s.pool.Exec(ctx, `UPDATE records SET result = $2 WHERE id = $1`, id, result)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update record result: %w", err)
	}
	return nil
}

// GetRecord reads one record by id.
func (s *Store) GetRecord(ctx context.Context, id int64) (Stored, error) {
	var rec Stored
	err := s.withRetry(ctx, func() error {
		return s.pool.QueryRow(ctx, `
			SELECT id, word, text, context, annotation, origin, result
			FROM records WHERE id = $1`, id,
		).Scan(&rec.ID, &rec.Word, &rec.Text, &rec.Context, &rec.Annotation, &rec.Origin, &rec.Result)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Stored{}, ErrNotFound
		}
		return Stored{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
