package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/customrequest"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/history"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
)

const requestColumns = `
	id, customer_id, description, status, quote_amount, quoted_at, created_at, updated_at`

// CreateRequest implements store.RequestStore
func (s *Store) CreateRequest(ctx context.Context, r *customrequest.Request, initial history.Entry) (*customrequest.Request, error) {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO custom_requests (id, customer_id, description, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			r.ID, r.CustomerID, r.Description, r.Status, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return mapPgError(err, "failed to insert custom request")
		}
		return insertHistoryTx(ctx, tx, initial)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRequest(ctx, r.ID)
}

// GetRequest implements store.RequestStore
func (s *Store) GetRequest(ctx context.Context, id string) (*customrequest.Request, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM custom_requests WHERE id = $1`, id)

	r, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch custom request: %w", err)
	}
	return r, nil
}

// ListRequestsByStatus implements store.RequestStore
func (s *Store) ListRequestsByStatus(ctx context.Context, status customrequest.Status) ([]*customrequest.Request, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+requestColumns+` FROM custom_requests WHERE status = $1 ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*customrequest.Request, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan custom request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read custom requests: %w", err)
	}
	return requests, nil
}

// QuoteRequest implements store.RequestStore
func (s *Store) QuoteRequest(ctx context.Context, id string, amount decimal.Decimal, quotedAt time.Time, changedBy string, notes string) (*customrequest.Request, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, customrequest.ErrInvalidQuote
	}

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var current customrequest.Status
		err := tx.QueryRow(ctx,
			`SELECT status FROM custom_requests WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrNotFound
			}
			return mapPgError(err, "failed to lock custom request")
		}

		if !current.CanTransitionTo(customrequest.StatusQuoted) {
			return &store.InvalidTransitionError{EntityType: history.EntityCustomRequest, From: string(current), To: string(customrequest.StatusQuoted)}
		}

		_, err = tx.Exec(ctx,
			`UPDATE custom_requests
			 SET status = $2, quote_amount = $3, quoted_at = $4, updated_at = $5
			 WHERE id = $1`,
			id, customrequest.StatusQuoted, amount.StringFixed(2), quotedAt, time.Now())
		if err != nil {
			return mapPgError(err, "failed to quote custom request")
		}

		entry := history.NewEntry(id, history.EntityCustomRequest, string(current), string(customrequest.StatusQuoted), changedBy, history.ActorStaff, notes)
		return insertHistoryTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRequest(ctx, id)
}

// TransitionRequest implements store.RequestStore. Approval re-checks the
// quote's validity window against the caller's clock even when the expiry
// sweep has not caught the request yet.
func (s *Store) TransitionRequest(ctx context.Context, id string, next customrequest.Status, now time.Time, changedBy string, kind history.ActorKind, notes string) (*customrequest.Request, error) {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+requestColumns+` FROM custom_requests WHERE id = $1 FOR UPDATE`, id)
		r, err := scanRequest(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrNotFound
			}
			return mapPgError(err, "failed to lock custom request")
		}

		if !r.Status.CanTransitionTo(next) {
			return &store.InvalidTransitionError{EntityType: history.EntityCustomRequest, From: string(r.Status), To: string(next)}
		}
		if next == customrequest.StatusApproved && r.QuoteExpired(now) {
			return &store.InvalidTransitionError{EntityType: history.EntityCustomRequest, From: string(r.Status), To: string(next)}
		}

		_, err = tx.Exec(ctx,
			`UPDATE custom_requests SET status = $2, updated_at = $3 WHERE id = $1`,
			id, next, time.Now())
		if err != nil {
			return mapPgError(err, "failed to update custom request")
		}

		entry := history.NewEntry(id, history.EntityCustomRequest, string(r.Status), string(next), changedBy, kind, notes)
		return insertHistoryTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRequest(ctx, id)
}

// ExpireQuotedBefore implements store.RequestStore
func (s *Store) ExpireQuotedBefore(ctx context.Context, cutoff time.Time, changedBy string) (int, error) {
	expired := 0
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		expired = 0
		rows, err := tx.Query(ctx,
			`SELECT id FROM custom_requests
			 WHERE status = $1 AND quoted_at < $2
			 FOR UPDATE`, customrequest.StatusQuoted, cutoff)
		if err != nil {
			return mapPgError(err, "failed to select stale quotes")
		}

		ids := make([]string, 0)
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan stale quote: %w", err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to read stale quotes: %w", err)
		}

		for _, id := range ids {
			_, err = tx.Exec(ctx,
				`UPDATE custom_requests SET status = $2, updated_at = $3 WHERE id = $1`,
				id, customrequest.StatusExpired, time.Now())
			if err != nil {
				return mapPgError(err, "failed to expire quote")
			}

			entry := history.NewEntry(id, history.EntityCustomRequest,
				string(customrequest.StatusQuoted), string(customrequest.StatusExpired),
				changedBy, history.ActorSystem, "quote validity window elapsed")
			if err := insertHistoryTx(ctx, tx, entry); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

// IsDateBlocked implements store.HoldStore. order_holds is written by the
// scheduling component; the engine only reads it.
func (s *Store) IsDateBlocked(ctx context.Context, date time.Time) (string, bool, error) {
	var reason string
	err := s.db.QueryRow(ctx,
		`SELECT reason FROM order_holds WHERE hold_date = $1`, date).Scan(&reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to check order hold: %w", err)
	}
	return reason, true, nil
}

func scanRequest(row pgx.Row) (*customrequest.Request, error) {
	var r customrequest.Request
	var amount *string
	err := row.Scan(&r.ID, &r.CustomerID, &r.Description, &r.Status,
		&amount, &r.QuotedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if amount != nil {
		d, err := parseDecimal(*amount)
		if err != nil {
			return nil, err
		}
		r.QuoteAmount = &d
	}
	return &r, nil
}
