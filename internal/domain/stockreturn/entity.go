package stockreturn

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPercentage = errors.New("return percentage must be between 1 and 100")
	ErrUnknownBatch      = errors.New("selection references an unknown batch")
	ErrNothingToReturn   = errors.New("no batches selected for return")
	ErrEmptyProcessor    = errors.New("return requires the processing staff id")
)

// Decision is the staff choice for one batch during return processing
type Decision string

const (
	DecisionReturn Decision = "return"
	DecisionKeep   Decision = "keep"
)

// Selection is one explicit staff override. Batches without a selection
// default to RETURN at the product's default percentage, so staff only mark
// the exceptions.
type Selection struct {
	BatchID            string   `json:"batch_id"`
	Decision           Decision `json:"decision"`
	PercentageOverride *int     `json:"percentage_override,omitempty"`
}

// Resolution is a fully resolved per-batch outcome handed to the store:
// return this batch at this percentage.
type Resolution struct {
	BatchID    string
	Percentage int
}

// Item is the immutable snapshot of one returned batch. Snapshots, not live
// joins: a return outlives the product and batch it references.
type Item struct {
	ID                 string          `json:"id"`
	ReturnID           string          `json:"return_id"`
	BatchID            string          `json:"batch_id"`
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	BatchQuantity      decimal.Decimal `json:"batch_quantity"`
	AgeAtReturn        int             `json:"age_at_return"`
	DateBatchAdded     time.Time       `json:"date_batch_added"`
	OriginalCost       decimal.Decimal `json:"original_cost"`
	SalePrice          decimal.Decimal `json:"sale_price"`
	ReturnPercentage   int             `json:"return_percentage"`
	ReturnValuePerUnit decimal.Decimal `json:"return_value_per_unit"`
	TotalReturnValue   decimal.Decimal `json:"total_return_value"`
}

// Return is the append-only record of one supplier return run
type Return struct {
	ID            string          `json:"id"`
	ReturnDate    time.Time       `json:"return_date"`
	ProcessedBy   string          `json:"processed_by"`
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalBatches  int             `json:"total_batches"`
	Items         []Item          `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewReturn creates an empty return record ready to accumulate items
func NewReturn(returnDate time.Time, processedBy string) (*Return, error) {
	if processedBy == "" {
		return nil, ErrEmptyProcessor
	}
	return &Return{
		ID:            uuid.New().String(),
		ReturnDate:    returnDate,
		ProcessedBy:   processedBy,
		TotalValue:    decimal.Zero,
		TotalQuantity: decimal.Zero,
		CreatedAt:     time.Now(),
	}, nil
}

// ValuePerUnit computes the reimbursement per unit: originalCost scaled by
// the applied percentage, rounded to cents.
func ValuePerUnit(originalCost decimal.Decimal, percentage int) decimal.Decimal {
	return originalCost.Mul(decimal.NewFromInt(int64(percentage))).Div(decimal.NewFromInt(100)).Round(2)
}

// ValidatePercentage checks an override is in the accepted range
func ValidatePercentage(p int) error {
	if p < 1 || p > 100 {
		return ErrInvalidPercentage
	}
	return nil
}

// NewItemID returns a fresh identifier for a return item
func NewItemID() string {
	return uuid.New().String()
}
