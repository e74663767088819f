package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/inventory"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
)

// AddBatch implements store.BatchStore
func (s *Store) AddBatch(ctx context.Context, b *inventory.Batch) (*inventory.Batch, error) {
	if b.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, inventory.ErrNonPositiveQuantity
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO inventory_batches (id, product_id, quantity, date_added, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.ProductID, b.Quantity.String(), b.DateAdded, b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, store.ErrNotFound
		}
		return nil, mapPgError(err, "failed to add batch")
	}

	out := *b
	return &out, nil
}

// TotalStock implements store.BatchStore
func (s *Store) TotalStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return decimal.Zero, store.ErrNotFound
	}

	var raw string
	err = s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM inventory_batches WHERE product_id = $1`,
		productID).Scan(&raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum stock: %w", err)
	}
	return parseDecimal(raw)
}

// ListBatches implements store.BatchStore
func (s *Store) ListBatches(ctx context.Context, productID string) ([]inventory.Batch, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, store.ErrNotFound
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, product_id, quantity, date_added, created_at
		 FROM inventory_batches
		 WHERE product_id = $1
		 ORDER BY date_added, created_at`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	return collectBatches(rows)
}

// ListAllBatches implements store.BatchStore
func (s *Store) ListAllBatches(ctx context.Context) ([]inventory.Batch, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, product_id, quantity, date_added, created_at
		 FROM inventory_batches
		 ORDER BY date_added, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	return collectBatches(rows)
}

func collectBatches(rows pgx.Rows) ([]inventory.Batch, error) {
	batches := make([]inventory.Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batches: %w", err)
	}
	return batches, nil
}

func scanBatch(row pgx.Row) (inventory.Batch, error) {
	var b inventory.Batch
	var qty string
	if err := row.Scan(&b.ID, &b.ProductID, &qty, &b.DateAdded, &b.CreatedAt); err != nil {
		return inventory.Batch{}, err
	}
	var err error
	if b.Quantity, err = parseDecimal(qty); err != nil {
		return inventory.Batch{}, err
	}
	return b, nil
}

// DeductFIFO implements store.BatchStore as its own serializable transaction
func (s *Store) DeductFIFO(ctx context.Context, productID string, quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return store.ErrValidation
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check product: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return deductFIFOTx(ctx, tx, productID, quantity)
	})
}

// deductFIFOTx locks the product's batches oldest-first and applies the
// deduction plan. Runs inside the caller's transaction so order placement
// shares the same all-or-nothing scope.
func deductFIFOTx(ctx context.Context, tx pgx.Tx, productID string, quantity decimal.Decimal) error {
	rows, err := tx.Query(ctx,
		`SELECT id, product_id, quantity, date_added, created_at
		 FROM inventory_batches
		 WHERE product_id = $1
		 ORDER BY date_added, created_at
		 FOR UPDATE`, productID)
	if err != nil {
		return mapPgError(err, "failed to lock batches")
	}
	batches, err := collectBatches(rows)
	if err != nil {
		return err
	}

	plan, available, ok := inventory.PlanFIFO(batches, quantity)
	if !ok {
		return &store.InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
	}

	for _, d := range plan {
		if d.Exhausted {
			_, err = tx.Exec(ctx, `DELETE FROM inventory_batches WHERE id = $1`, d.BatchID)
		} else {
			_, err = tx.Exec(ctx,
				`UPDATE inventory_batches SET quantity = quantity - $2 WHERE id = $1`,
				d.BatchID, d.Quantity.String())
		}
		if err != nil {
			return mapPgError(err, "failed to apply deduction")
		}
	}
	return nil
}
