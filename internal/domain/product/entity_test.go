package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductValidation(t *testing.T) {
	_, err := NewProduct("", false, decimal.NewFromInt(10), decimal.NewFromInt(20), 20, decimal.Zero)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = NewProduct("Butter Cake", false, decimal.Zero, decimal.NewFromInt(20), 20, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = NewProduct("Butter Cake", false, decimal.NewFromInt(10), decimal.NewFromInt(20), 50, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidReturnPercentage)

	p, err := NewProduct("Butter Cake", false, decimal.NewFromInt(10), decimal.NewFromInt(20), 100, decimal.NewFromInt(-1))
	require.NoError(t, err)
	assert.True(t, p.LowStockThreshold.IsZero())
}

func TestValidateQuantity(t *testing.T) {
	units := Product{IsWeightBased: false}
	weight := Product{IsWeightBased: true}

	assert.ErrorIs(t, units.ValidateQuantity(decimal.Zero), ErrNonPositiveQuantity)
	assert.ErrorIs(t, units.ValidateQuantity(decimal.NewFromFloat(1.5)), ErrFractionalUnitQuantity)
	assert.NoError(t, units.ValidateQuantity(decimal.NewFromInt(3)))

	assert.NoError(t, weight.ValidateQuantity(decimal.NewFromFloat(2.25)))
	assert.ErrorIs(t, weight.ValidateQuantity(decimal.NewFromFloat(2.253)), ErrQuantityPrecision)
}

func TestIsLowStock(t *testing.T) {
	p := Product{LowStockThreshold: decimal.NewFromInt(5), StockQuantity: decimal.NewFromInt(5)}
	assert.True(t, p.IsLowStock())

	p.StockQuantity = decimal.NewFromInt(6)
	assert.False(t, p.IsLowStock())

	// A zero threshold disables the alert entirely.
	p = Product{LowStockThreshold: decimal.Zero, StockQuantity: decimal.Zero}
	assert.False(t, p.IsLowStock())
}
