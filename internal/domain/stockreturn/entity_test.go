package stockreturn

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuePerUnit(t *testing.T) {
	// 450.00 at 20% = 90.00
	v := ValuePerUnit(decimal.NewFromInt(450), 20)
	assert.True(t, v.Equal(decimal.NewFromInt(90)))

	// 33.33 at 20% = 6.666 rounds to 6.67
	v = ValuePerUnit(decimal.NewFromFloat(33.33), 20)
	assert.True(t, v.Equal(decimal.NewFromFloat(6.67)), "got %s", v)

	v = ValuePerUnit(decimal.NewFromInt(450), 100)
	assert.True(t, v.Equal(decimal.NewFromInt(450)))
}

func TestValidatePercentage(t *testing.T) {
	assert.ErrorIs(t, ValidatePercentage(0), ErrInvalidPercentage)
	assert.ErrorIs(t, ValidatePercentage(101), ErrInvalidPercentage)
	assert.NoError(t, ValidatePercentage(1))
	assert.NoError(t, ValidatePercentage(100))
}

func TestNewReturnRequiresProcessor(t *testing.T) {
	_, err := NewReturn(time.Now(), "")
	assert.ErrorIs(t, err, ErrEmptyProcessor)

	ret, err := NewReturn(time.Now(), "staff-1")
	require.NoError(t, err)
	assert.True(t, ret.TotalValue.IsZero())
	assert.Empty(t, ret.Items)
}
