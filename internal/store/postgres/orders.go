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

// allocateOrderNumber takes a transaction-scoped advisory lock on the order
// date and counts the day's existing orders. The lock serializes allocation
// per day across all placements while leaving other days untouched; it is
// released automatically at commit or rollback.
func allocateOrderNumber(ctx context.Context, tx pgx.Tx, day time.Time) (string, error) {
	key := "order-number-" + day.Format("2006-01-02")
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return "", mapPgError(err, "failed to lock order sequence")
	}

	var count int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE order_date = $1`, day).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("failed to count orders for date: %w", err)
	}

	return order.FormatNumber(day, count+1), nil
}

// CreateOrder implements store.OrderStore. Number allocation, the order and
// item rows, FIFO stock deduction, and the initial history entry all commit
// together; any failure rolls the lot back.
func (s *Store) CreateOrder(ctx context.Context, o *order.Order, initial history.Entry) (*order.Order, error) {
	var saved *order.Order

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		number, err := allocateOrderNumber(ctx, tx, o.OrderDate)
		if err != nil {
			return err
		}

		for productID, qty := range order.Cart(cartOf(o)).QuantityByProduct() {
			if err := deductFIFOTx(ctx, tx, productID, qty); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO orders (
				id, order_number, order_date, status, payment_status,
				customer_id, pickup_date, pickup_time, total_amount,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			o.ID, number, o.OrderDate, o.Status, o.PaymentStatus,
			o.CustomerID, o.PickupDate, o.PickupTime, o.TotalAmount.StringFixed(2),
			o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return mapPgError(err, "failed to insert order")
		}

		for _, item := range o.Items {
			_, err = tx.Exec(ctx,
				`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, subtotal)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				item.ID, o.ID, item.ProductID, item.Quantity.String(),
				item.UnitPrice.StringFixed(2), item.Subtotal.StringFixed(2))
			if err != nil {
				return mapPgError(err, "failed to insert order item")
			}
		}

		if err := insertHistoryTx(ctx, tx, initial); err != nil {
			return err
		}

		out := *o
		out.Number = number
		saved = &out
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, saved.ID)
}

func cartOf(o *order.Order) []order.CartLine {
	lines := make([]order.CartLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, order.CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

const orderColumns = `
	id, order_number, order_date, status, payment_status, customer_id,
	pickup_date, pickup_time, total_amount, created_at, updated_at`

// GetOrder implements store.OrderStore
func (s *Store) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return s.hydrateOrder(ctx, row)
}

// GetOrderByNumber implements store.OrderStore
func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
	return s.hydrateOrder(ctx, row)
}

func (s *Store) hydrateOrder(ctx context.Context, row pgx.Row) (*order.Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}

	o.Items, err = s.listItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrdersByDate implements store.OrderStore
func (s *Store) ListOrdersByDate(ctx context.Context, day time.Time) ([]*order.Order, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_date = $1 ORDER BY order_number`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	for _, o := range orders {
		if o.Items, err = s.listItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *Store) listItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, order_id, product_id, quantity, unit_price, subtotal
		 FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := make([]order.Item, 0)
	for rows.Next() {
		var item order.Item
		var qty, price, subtotal string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &qty, &price, &subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if item.Quantity, err = parseDecimal(qty); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = parseDecimal(price); err != nil {
			return nil, err
		}
		if item.Subtotal, err = parseDecimal(subtotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var total string
	err := row.Scan(&o.ID, &o.Number, &o.OrderDate, &o.Status, &o.PaymentStatus,
		&o.CustomerID, &o.PickupDate, &o.PickupTime, &total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if o.TotalAmount, err = parseDecimal(total); err != nil {
		return nil, err
	}
	return &o, nil
}
