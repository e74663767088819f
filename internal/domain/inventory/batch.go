package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveQuantity = errors.New("batch quantity must be greater than zero")
	ErrEmptyProduct        = errors.New("batch requires a product id")
)

// Batch is a quantity of one product added to inventory on a specific date.
// Batches are never merged, so each stock check-in stays auditable as a
// discrete event. Age is always derived from DateAdded; a batch kept during
// a return simply ages naturally the next day.
type Batch struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	DateAdded time.Time       `json:"date_added"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewBatch creates a batch for a daily check-in
func NewBatch(productID string, quantity decimal.Decimal, dateAdded time.Time) (*Batch, error) {
	if productID == "" {
		return nil, ErrEmptyProduct
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, ErrNonPositiveQuantity
	}

	return &Batch{
		ID:        uuid.New().String(),
		ProductID: productID,
		Quantity:  quantity,
		DateAdded: time.Date(dateAdded.Year(), dateAdded.Month(), dateAdded.Day(), 0, 0, 0, 0, dateAdded.Location()),
		CreatedAt: time.Now(),
	}, nil
}

// AgeInDays returns how many whole days old the batch is on the given date
func (b *Batch) AgeInDays(today time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(b.DateAdded.Year(), b.DateAdded.Month(), b.DateAdded.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(d).Hours() / 24)
}

// Deduction is one step of a FIFO plan: take Quantity from the batch,
// deleting it when Exhausted.
type Deduction struct {
	BatchID   string
	Quantity  decimal.Decimal
	Exhausted bool
}

// PlanFIFO walks batches ordered oldest-first and computes the deductions
// needed to satisfy the requested quantity. It returns the plan, the total
// quantity available, and whether the request can be satisfied. The input
// slice must already be sorted by DateAdded ascending (ties by CreatedAt);
// no batch is mutated.
func PlanFIFO(batches []Batch, requested decimal.Decimal) ([]Deduction, decimal.Decimal, bool) {
	available := decimal.Zero
	for _, b := range batches {
		available = available.Add(b.Quantity)
	}
	if available.LessThan(requested) {
		return nil, available, false
	}

	plan := make([]Deduction, 0, len(batches))
	remaining := requested
	for _, b := range batches {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		take := b.Quantity
		if take.GreaterThan(remaining) {
			take = remaining
		}
		plan = append(plan, Deduction{
			BatchID:   b.ID,
			Quantity:  take,
			Exhausted: take.Equal(b.Quantity),
		})
		remaining = remaining.Sub(take)
	}

	return plan, available, true
}

// SortOldestFirst orders batches by DateAdded ascending, breaking ties by
// CreatedAt so same-day check-ins are consumed in arrival order.
func SortOldestFirst(batches []Batch) {
	for i := 1; i < len(batches); i++ {
		for j := i; j > 0 && older(batches[j], batches[j-1]); j-- {
			batches[j], batches[j-1] = batches[j-1], batches[j]
		}
	}
}

func older(a, b Batch) bool {
	if !a.DateAdded.Equal(b.DateAdded) {
		return a.DateAdded.Before(b.DateAdded)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
