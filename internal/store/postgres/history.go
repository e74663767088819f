package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/history"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/order"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
)

// insertHistoryTx appends one audit entry inside the caller's transaction.
// created_at comes from the database clock so entries written in one
// transaction share a consistent ordering.
func insertHistoryTx(ctx context.Context, tx pgx.Tx, e history.Entry) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO status_history (
			id, entity_id, entity_type, old_status, new_status,
			changed_by, changed_by_kind, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		e.ID, e.EntityID, e.EntityType, e.OldStatus, e.NewStatus,
		e.ChangedBy, e.ChangedByKind, e.Notes)
	if err != nil {
		return mapPgError(err, "failed to insert history entry")
	}
	return nil
}

// TransitionOrder implements store.HistoryStore. The row is locked, the
// state machine checked against the current status, and the status write
// plus its audit entry commit together.
func (s *Store) TransitionOrder(ctx context.Context, orderID string, next order.Status, changedBy string, kind history.ActorKind, notes string) (*order.Order, error) {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var current order.Status
		err := tx.QueryRow(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrNotFound
			}
			return mapPgError(err, "failed to lock order")
		}

		if !current.CanTransitionTo(next) {
			return &store.InvalidTransitionError{EntityType: history.EntityOrder, From: string(current), To: string(next)}
		}

		_, err = tx.Exec(ctx,
			`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
			orderID, next, time.Now())
		if err != nil {
			return mapPgError(err, "failed to update order status")
		}

		entry := history.NewEntry(orderID, history.EntityOrder, string(current), string(next), changedBy, kind, notes)
		return insertHistoryTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

// TransitionPayment implements store.HistoryStore
func (s *Store) TransitionPayment(ctx context.Context, orderID string, next order.PaymentStatus, changedBy string, kind history.ActorKind, notes string) (*order.Order, error) {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var current order.PaymentStatus
		err := tx.QueryRow(ctx,
			`SELECT payment_status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrNotFound
			}
			return mapPgError(err, "failed to lock order")
		}

		if !current.CanTransitionTo(next) {
			return &store.InvalidTransitionError{EntityType: history.EntityOrder, From: string(current), To: string(next)}
		}

		_, err = tx.Exec(ctx,
			`UPDATE orders SET payment_status = $2, updated_at = $3 WHERE id = $1`,
			orderID, next, time.Now())
		if err != nil {
			return mapPgError(err, "failed to update payment status")
		}

		entry := history.NewEntry(orderID, history.EntityOrder, string(current), string(next), changedBy, kind, notes)
		return insertHistoryTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

// ListHistory implements store.HistoryStore
func (s *Store) ListHistory(ctx context.Context, entityID string) ([]history.Entry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, entity_id, entity_type, old_status, new_status,
		        changed_by, changed_by_kind, notes, created_at
		 FROM status_history
		 WHERE entity_id = $1
		 ORDER BY created_at, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := make([]history.Entry, 0)
	for rows.Next() {
		var e history.Entry
		if err := rows.Scan(&e.ID, &e.EntityID, &e.EntityType, &e.OldStatus,
			&e.NewStatus, &e.ChangedBy, &e.ChangedByKind, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}
