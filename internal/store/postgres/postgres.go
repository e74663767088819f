package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
)

// txAttempts bounds the serialization retry loop so contention cannot spin
// forever
const txAttempts = 3

// Store implements store.Store on PostgreSQL. Multi-step operations run in
// serializable transactions so concurrent placements and returns cannot
// interleave into oversells or duplicate order numbers.
type Store struct {
	db *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New creates a Store on top of an existing connection pool
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

var serializableOpts = pgx.TxOptions{IsoLevel: pgx.Serializable}

// withTx runs fn inside a serializable transaction, retrying a bounded
// number of times when Postgres aborts it with a serialization failure or
// deadlock.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !retryable(err) {
			return err
		}
	}
	if retryable(err) {
		return fmt.Errorf("transaction retries exhausted: %w", store.ErrConcurrencyConflict)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, serializableOpts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '3s'"); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapPgError(err, "failed to commit transaction")
	}
	return nil
}

// retryable matches serialization failures and deadlocks; conflicts raised
// by our own stale-read checks are not retried here because the caller must
// re-read first.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// mapPgError translates driver failures onto the store error taxonomy while
// keeping the original error wrapped for logs.
func mapPgError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%s: %v: %w", msg, err, store.ErrConcurrencyConflict)
		case "55P03":
			return fmt.Errorf("%s: %v: %w", msg, err, store.ErrOrderNumberAllocation)
		case "23505":
			return fmt.Errorf("%s: %v: %w", msg, err, store.ErrDuplicateKey)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// parseDecimal converts a numeric column scanned as text
func parseDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse numeric value %q: %w", raw, err)
	}
	return d, nil
}
