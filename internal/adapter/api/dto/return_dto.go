package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/stockreturn"
)

// ReturnSelectionRequest is one explicit batch decision; batches without a
// selection default to RETURN at the product's default percentage
type ReturnSelectionRequest struct {
	BatchID            string `json:"batch_id" binding:"required"`
	Decision           string `json:"decision" binding:"required,oneof=return keep"`
	PercentageOverride *int   `json:"percentage_override,omitempty"`
}

// ProcessReturnRequest finalizes the day's supplier return
type ProcessReturnRequest struct {
	Selections []ReturnSelectionRequest `json:"selections"`
}

// ToSelections converts the request into domain selections
func (r ProcessReturnRequest) ToSelections() []stockreturn.Selection {
	selections := make([]stockreturn.Selection, 0, len(r.Selections))
	for _, sel := range r.Selections {
		selections = append(selections, stockreturn.Selection{
			BatchID:            sel.BatchID,
			Decision:           stockreturn.Decision(sel.Decision),
			PercentageOverride: sel.PercentageOverride,
		})
	}
	return selections
}

// ReturnItemResponse is one returned batch snapshot
type ReturnItemResponse struct {
	ID                 string          `json:"id"`
	BatchID            string          `json:"batch_id"`
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	BatchQuantity      decimal.Decimal `json:"batch_quantity"`
	AgeAtReturn        int             `json:"age_at_return"`
	DateBatchAdded     string          `json:"date_batch_added"`
	OriginalCost       decimal.Decimal `json:"original_cost"`
	SalePrice          decimal.Decimal `json:"sale_price"`
	ReturnPercentage   int             `json:"return_percentage"`
	ReturnValuePerUnit decimal.Decimal `json:"return_value_per_unit"`
	TotalReturnValue   decimal.Decimal `json:"total_return_value"`
}

// ReturnResponse is a finalized supplier return
type ReturnResponse struct {
	ID            string               `json:"id"`
	ReturnDate    string               `json:"return_date"`
	ProcessedBy   string               `json:"processed_by"`
	TotalValue    decimal.Decimal      `json:"total_value"`
	TotalQuantity decimal.Decimal      `json:"total_quantity"`
	TotalBatches  int                  `json:"total_batches"`
	Items         []ReturnItemResponse `json:"items"`
	CreatedAt     time.Time            `json:"created_at"`
}

// NewReturnResponse maps a return to its response shape
func NewReturnResponse(ret *stockreturn.Return) ReturnResponse {
	items := make([]ReturnItemResponse, 0, len(ret.Items))
	for _, item := range ret.Items {
		items = append(items, ReturnItemResponse{
			ID:                 item.ID,
			BatchID:            item.BatchID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			BatchQuantity:      item.BatchQuantity,
			AgeAtReturn:        item.AgeAtReturn,
			DateBatchAdded:     item.DateBatchAdded.Format("2006-01-02"),
			OriginalCost:       item.OriginalCost,
			SalePrice:          item.SalePrice,
			ReturnPercentage:   item.ReturnPercentage,
			ReturnValuePerUnit: item.ReturnValuePerUnit,
			TotalReturnValue:   item.TotalReturnValue,
		})
	}

	return ReturnResponse{
		ID:            ret.ID,
		ReturnDate:    ret.ReturnDate.Format("2006-01-02"),
		ProcessedBy:   ret.ProcessedBy,
		TotalValue:    ret.TotalValue,
		TotalQuantity: ret.TotalQuantity,
		TotalBatches:  ret.TotalBatches,
		Items:         items,
		CreatedAt:     ret.CreatedAt,
	}
}
