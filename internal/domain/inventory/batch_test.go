package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkBatch(id string, qty int64, added time.Time, created time.Time) Batch {
	return Batch{
		ID:        id,
		ProductID: "p1",
		Quantity:  decimal.NewFromInt(qty),
		DateAdded: added,
		CreatedAt: created,
	}
}

func TestNewBatchValidation(t *testing.T) {
	_, err := NewBatch("", decimal.NewFromInt(1), time.Now())
	assert.ErrorIs(t, err, ErrEmptyProduct)

	_, err = NewBatch("p1", decimal.Zero, time.Now())
	assert.ErrorIs(t, err, ErrNonPositiveQuantity)

	b, err := NewBatch("p1", decimal.NewFromInt(5), time.Date(2026, 8, 30, 14, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	// DateAdded is truncated to the calendar date.
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), b.DateAdded)
}

func TestAgeInDays(t *testing.T) {
	b := Batch{DateAdded: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 0, b.AgeInDays(time.Date(2026, 8, 27, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, b.AgeInDays(time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, b.AgeInDays(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)))
}

func TestPlanFIFOSpansBatches(t *testing.T) {
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	batches := []Batch{
		mkBatch("mon", 10, base, base),
		mkBatch("tue", 15, base.AddDate(0, 0, 1), base.AddDate(0, 0, 1)),
		mkBatch("wed", 20, base.AddDate(0, 0, 2), base.AddDate(0, 0, 2)),
	}

	plan, available, ok := PlanFIFO(batches, decimal.NewFromInt(12))
	require.True(t, ok)
	assert.True(t, available.Equal(decimal.NewFromInt(45)))
	require.Len(t, plan, 2)

	assert.Equal(t, "mon", plan[0].BatchID)
	assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, plan[0].Exhausted)

	assert.Equal(t, "tue", plan[1].BatchID)
	assert.True(t, plan[1].Quantity.Equal(decimal.NewFromInt(2)))
	assert.False(t, plan[1].Exhausted)

	// Input batches are not mutated.
	assert.True(t, batches[0].Quantity.Equal(decimal.NewFromInt(10)))
}

func TestPlanFIFOExactExhaustion(t *testing.T) {
	base := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	batches := []Batch{mkBatch("b1", 7, base, base)}

	plan, _, ok := PlanFIFO(batches, decimal.NewFromInt(7))
	require.True(t, ok)
	require.Len(t, plan, 1)
	assert.True(t, plan[0].Exhausted)
}

func TestPlanFIFOInsufficient(t *testing.T) {
	base := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	batches := []Batch{mkBatch("b1", 3, base, base), mkBatch("b2", 4, base, base)}

	plan, available, ok := PlanFIFO(batches, decimal.NewFromInt(8))
	assert.False(t, ok)
	assert.Nil(t, plan)
	assert.True(t, available.Equal(decimal.NewFromInt(7)))
}

func TestSortOldestFirstBreaksTiesByCreation(t *testing.T) {
	d := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	batches := []Batch{
		mkBatch("late", 1, d, d.Add(2*time.Hour)),
		mkBatch("older-day", 1, d.AddDate(0, 0, -1), d.Add(3*time.Hour)),
		mkBatch("early", 1, d, d.Add(1*time.Hour)),
	}

	SortOldestFirst(batches)
	assert.Equal(t, "older-day", batches[0].ID)
	assert.Equal(t, "early", batches[1].ID)
	assert.Equal(t, "late", batches[2].ID)
}
