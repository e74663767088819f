package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/product"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
)

const productColumns = `
	p.id, p.name, p.is_weight_based, p.original_cost, p.sale_price,
	p.default_return_percentage, p.low_stock_threshold,
	COALESCE((SELECT SUM(b.quantity) FROM inventory_batches b WHERE b.product_id = p.id), 0),
	p.created_at, p.updated_at`

// CreateProduct implements store.ProductStore
func (s *Store) CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO products (
			id, name, is_weight_based, original_cost, sale_price,
			default_return_percentage, low_stock_threshold, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.IsWeightBased, p.OriginalCost.StringFixed(2),
		p.SalePrice.StringFixed(2), p.DefaultReturnPercentage,
		p.LowStockThreshold.String(), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err, "failed to create product")
	}

	return s.GetProduct(ctx, p.ID)
}

// GetProduct implements store.ProductStore. StockQuantity is summed from the
// product's live batches in the same query.
func (s *Store) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return p, nil
}

// ListProducts implements store.ProductStore
func (s *Store) ListProducts(ctx context.Context) ([]*product.Product, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+productColumns+` FROM products p ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	var cost, price, threshold, stock string

	err := row.Scan(&p.ID, &p.Name, &p.IsWeightBased, &cost, &price,
		&p.DefaultReturnPercentage, &threshold, &stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if p.OriginalCost, err = parseDecimal(cost); err != nil {
		return nil, err
	}
	if p.SalePrice, err = parseDecimal(price); err != nil {
		return nil, err
	}
	if p.LowStockThreshold, err = parseDecimal(threshold); err != nil {
		return nil, err
	}
	if p.StockQuantity, err = parseDecimal(stock); err != nil {
		return nil, err
	}
	return &p, nil
}
