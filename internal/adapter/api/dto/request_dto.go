package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/customrequest"
)

// CreateRequestRequest opens a custom request for review
type CreateRequestRequest struct {
	Description string `json:"description" binding:"required"`
}

// QuoteRequestRequest attaches a price quote
type QuoteRequestRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Notes  string          `json:"notes"`
}

// RequestResponse is a custom request with its quote state
type RequestResponse struct {
	ID          string           `json:"id"`
	CustomerID  string           `json:"customer_id"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	QuoteAmount *decimal.Decimal `json:"quote_amount,omitempty"`
	QuotedAt    *time.Time       `json:"quoted_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewRequestResponse maps a custom request to its response shape
func NewRequestResponse(r *customrequest.Request) RequestResponse {
	return RequestResponse{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		Description: r.Description,
		Status:      string(r.Status),
		QuoteAmount: r.QuoteAmount,
		QuotedAt:    r.QuotedAt,
		CreatedAt:   r.CreatedAt,
	}
}
