package product

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName               = errors.New("product name cannot be empty")
	ErrInvalidPrice            = errors.New("product prices must be greater than zero")
	ErrInvalidReturnPercentage = errors.New("default return percentage must be 20 or 100")
	ErrNonPositiveQuantity     = errors.New("quantity must be greater than zero")
	ErrFractionalUnitQuantity  = errors.New("unit-based products require whole quantities")
	ErrQuantityPrecision       = errors.New("weight quantities are limited to two decimal places")
)

// Product is a catalog item sold by the cafe. Unit-based products count in
// whole pieces; weight-based products count in kilograms with two decimal
// places. StockQuantity is derived from the product's live batches and is
// only populated on reads, never written directly.
type Product struct {
	ID                      string          `json:"id"`
	Name                    string          `json:"name"`
	IsWeightBased           bool            `json:"is_weight_based"`
	OriginalCost            decimal.Decimal `json:"original_cost"`
	SalePrice               decimal.Decimal `json:"sale_price"`
	DefaultReturnPercentage int             `json:"default_return_percentage"`
	LowStockThreshold       decimal.Decimal `json:"low_stock_threshold"`
	StockQuantity           decimal.Decimal `json:"stock_quantity"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// NewProduct creates a new product with a generated id
func NewProduct(name string, isWeightBased bool, originalCost, salePrice decimal.Decimal, defaultReturnPercentage int, lowStockThreshold decimal.Decimal) (*Product, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if originalCost.LessThanOrEqual(decimal.Zero) || salePrice.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}
	if defaultReturnPercentage != 20 && defaultReturnPercentage != 100 {
		return nil, ErrInvalidReturnPercentage
	}
	if lowStockThreshold.IsNegative() {
		lowStockThreshold = decimal.Zero
	}

	now := time.Now()
	return &Product{
		ID:                      uuid.New().String(),
		Name:                    name,
		IsWeightBased:           isWeightBased,
		OriginalCost:            originalCost,
		SalePrice:               salePrice,
		DefaultReturnPercentage: defaultReturnPercentage,
		LowStockThreshold:       lowStockThreshold,
		StockQuantity:           decimal.Zero,
		CreatedAt:               now,
		UpdatedAt:               now,
	}, nil
}

// ValidateQuantity checks that a quantity is expressible for this product:
// positive, whole for unit-based products, at most two decimal places for
// weight-based products.
func (p *Product) ValidateQuantity(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveQuantity
	}
	if !p.IsWeightBased && !qty.Equal(qty.Truncate(0)) {
		return ErrFractionalUnitQuantity
	}
	if p.IsWeightBased && !qty.Equal(qty.Truncate(2)) {
		return ErrQuantityPrecision
	}
	return nil
}

// IsLowStock reports whether the current stock is at or below the threshold
func (p *Product) IsLowStock() bool {
	if p.LowStockThreshold.IsZero() {
		return false
	}
	return p.StockQuantity.LessThanOrEqual(p.LowStockThreshold)
}
