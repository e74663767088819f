package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/stockreturn"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
)

// ProcessReturn implements store.ReturnStore. Each resolved batch is
// re-read under lock inside the transaction; a batch that vanished since
// the caller's read aborts the whole call with ErrConcurrencyConflict.
func (s *Store) ProcessReturn(ctx context.Context, returnDate time.Time, processedBy string, resolutions []stockreturn.Resolution) (*stockreturn.Return, error) {
	if len(resolutions) == 0 {
		return nil, stockreturn.ErrNothingToReturn
	}

	ret, err := stockreturn.NewReturn(returnDate, processedBy)
	if err != nil {
		return nil, err
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		// Reset accumulators in case a serialization retry re-runs fn.
		ret.Items = ret.Items[:0]
		ret.TotalValue = decimal.Zero
		ret.TotalQuantity = decimal.Zero

		for _, res := range resolutions {
			if err := stockreturn.ValidatePercentage(res.Percentage); err != nil {
				return err
			}

			var item stockreturn.Item
			var qty, cost, price string
			err := tx.QueryRow(ctx,
				`SELECT b.id, b.product_id, b.quantity, b.date_added,
				        p.name, p.original_cost, p.sale_price
				 FROM inventory_batches b
				 JOIN products p ON p.id = b.product_id
				 WHERE b.id = $1
				 FOR UPDATE OF b`, res.BatchID).Scan(
				&item.BatchID, &item.ProductID, &qty, &item.DateBatchAdded,
				&item.ProductName, &cost, &price)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("batch %s no longer exists: %w", res.BatchID, store.ErrConcurrencyConflict)
				}
				return mapPgError(err, "failed to lock batch for return")
			}

			if item.BatchQuantity, err = parseDecimal(qty); err != nil {
				return err
			}
			if item.OriginalCost, err = parseDecimal(cost); err != nil {
				return err
			}
			if item.SalePrice, err = parseDecimal(price); err != nil {
				return err
			}

			item.ID = stockreturn.NewItemID()
			item.ReturnID = ret.ID
			item.AgeAtReturn = ageInDays(item.DateBatchAdded, returnDate)
			item.ReturnPercentage = res.Percentage
			item.ReturnValuePerUnit = stockreturn.ValuePerUnit(item.OriginalCost, res.Percentage)
			item.TotalReturnValue = item.ReturnValuePerUnit.Mul(item.BatchQuantity).Round(2)

			ret.Items = append(ret.Items, item)
			ret.TotalValue = ret.TotalValue.Add(item.TotalReturnValue)
			ret.TotalQuantity = ret.TotalQuantity.Add(item.BatchQuantity)
		}
		ret.TotalBatches = len(ret.Items)

		_, err := tx.Exec(ctx,
			`INSERT INTO returns (id, return_date, processed_by, total_value, total_quantity, total_batches, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ret.ID, ret.ReturnDate, ret.ProcessedBy, ret.TotalValue.StringFixed(2),
			ret.TotalQuantity.String(), ret.TotalBatches, ret.CreatedAt)
		if err != nil {
			return mapPgError(err, "failed to insert return")
		}

		for _, item := range ret.Items {
			_, err = tx.Exec(ctx,
				`INSERT INTO return_items (
					id, return_id, batch_id, product_id, product_name,
					batch_quantity, age_at_return, date_batch_added,
					original_cost, sale_price, return_percentage,
					return_value_per_unit, total_return_value
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
				item.ID, item.ReturnID, item.BatchID, item.ProductID, item.ProductName,
				item.BatchQuantity.String(), item.AgeAtReturn, item.DateBatchAdded,
				item.OriginalCost.StringFixed(2), item.SalePrice.StringFixed(2),
				item.ReturnPercentage, item.ReturnValuePerUnit.StringFixed(2),
				item.TotalReturnValue.StringFixed(2))
			if err != nil {
				return mapPgError(err, "failed to insert return item")
			}

			if _, err = tx.Exec(ctx, `DELETE FROM inventory_batches WHERE id = $1`, item.BatchID); err != nil {
				return mapPgError(err, "failed to delete returned batch")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func ageInDays(added, on time.Time) int {
	a := time.Date(added.Year(), added.Month(), added.Day(), 0, 0, 0, 0, time.UTC)
	o := time.Date(on.Year(), on.Month(), on.Day(), 0, 0, 0, 0, time.UTC)
	return int(o.Sub(a).Hours() / 24)
}

// GetReturn implements store.ReturnStore
func (s *Store) GetReturn(ctx context.Context, id string) (*stockreturn.Return, error) {
	var ret stockreturn.Return
	var totalValue, totalQty string
	err := s.db.QueryRow(ctx,
		`SELECT id, return_date, processed_by, total_value, total_quantity, total_batches, created_at
		 FROM returns WHERE id = $1`, id).Scan(
		&ret.ID, &ret.ReturnDate, &ret.ProcessedBy, &totalValue, &totalQty,
		&ret.TotalBatches, &ret.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch return: %w", err)
	}

	if ret.TotalValue, err = parseDecimal(totalValue); err != nil {
		return nil, err
	}
	if ret.TotalQuantity, err = parseDecimal(totalQty); err != nil {
		return nil, err
	}

	if ret.Items, err = s.listReturnItems(ctx, ret.ID); err != nil {
		return nil, err
	}
	return &ret, nil
}

// ListReturns implements store.ReturnStore
func (s *Store) ListReturns(ctx context.Context, from, to time.Time) ([]*stockreturn.Return, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, return_date, processed_by, total_value, total_quantity, total_batches, created_at
		 FROM returns
		 WHERE return_date >= $1 AND return_date <= $2
		 ORDER BY return_date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list returns: %w", err)
	}
	defer rows.Close()

	returns := make([]*stockreturn.Return, 0)
	for rows.Next() {
		var ret stockreturn.Return
		var totalValue, totalQty string
		if err := rows.Scan(&ret.ID, &ret.ReturnDate, &ret.ProcessedBy, &totalValue,
			&totalQty, &ret.TotalBatches, &ret.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan return: %w", err)
		}
		if ret.TotalValue, err = parseDecimal(totalValue); err != nil {
			return nil, err
		}
		if ret.TotalQuantity, err = parseDecimal(totalQty); err != nil {
			return nil, err
		}
		returns = append(returns, &ret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read returns: %w", err)
	}

	for _, ret := range returns {
		if ret.Items, err = s.listReturnItems(ctx, ret.ID); err != nil {
			return nil, err
		}
	}
	return returns, nil
}

func (s *Store) listReturnItems(ctx context.Context, returnID string) ([]stockreturn.Item, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, return_id, batch_id, product_id, product_name,
		        batch_quantity, age_at_return, date_batch_added,
		        original_cost, sale_price, return_percentage,
		        return_value_per_unit, total_return_value
		 FROM return_items WHERE return_id = $1`, returnID)
	if err != nil {
		return nil, fmt.Errorf("failed to list return items: %w", err)
	}
	defer rows.Close()

	items := make([]stockreturn.Item, 0)
	for rows.Next() {
		var item stockreturn.Item
		var qty, cost, price, perUnit, total string
		if err := rows.Scan(&item.ID, &item.ReturnID, &item.BatchID, &item.ProductID,
			&item.ProductName, &qty, &item.AgeAtReturn, &item.DateBatchAdded,
			&cost, &price, &item.ReturnPercentage, &perUnit, &total); err != nil {
			return nil, fmt.Errorf("failed to scan return item: %w", err)
		}
		if item.BatchQuantity, err = parseDecimal(qty); err != nil {
			return nil, err
		}
		if item.OriginalCost, err = parseDecimal(cost); err != nil {
			return nil, err
		}
		if item.SalePrice, err = parseDecimal(price); err != nil {
			return nil, err
		}
		if item.ReturnValuePerUnit, err = parseDecimal(perUnit); err != nil {
			return nil, err
		}
		if item.TotalReturnValue, err = parseDecimal(total); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read return items: %w", err)
	}
	return items, nil
}
