package customrequest

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCustomer    = errors.New("custom request requires a customer id")
	ErrEmptyDescription = errors.New("custom request requires a description")
	ErrInvalidQuote     = errors.New("quote amount must be greater than zero")
)

// QuoteValidity is how long a quote stays approvable after it is issued
const QuoteValidity = 7 * 24 * time.Hour

// Status is the custom-request lifecycle state
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusQuoted        Status = "quoted"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusExpired       Status = "expired"
)

var statusTransitions = map[Status][]Status{
	StatusPendingReview: {StatusQuoted, StatusRejected},
	StatusQuoted:        {StatusApproved, StatusRejected, StatusExpired},
	StatusApproved:      {},
	StatusRejected:      {},
	StatusExpired:       {},
}

// IsValid reports whether s is a known request status
func (s Status) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpired
}

// CanTransitionTo reports whether the state machine permits the move
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Request is a customer's custom order request (celebration cakes and the
// like) that goes through review and quoting before becoming work.
type Request struct {
	ID          string           `json:"id"`
	CustomerID  string           `json:"customer_id"`
	Description string           `json:"description"`
	Status      Status           `json:"status"`
	QuoteAmount *decimal.Decimal `json:"quote_amount,omitempty"`
	QuotedAt    *time.Time       `json:"quoted_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewRequest creates a request awaiting staff review
func NewRequest(customerID, description string) (*Request, error) {
	if customerID == "" {
		return nil, ErrEmptyCustomer
	}
	if description == "" {
		return nil, ErrEmptyDescription
	}

	now := time.Now()
	return &Request{
		ID:          uuid.New().String(),
		CustomerID:  customerID,
		Description: description,
		Status:      StatusPendingReview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// QuoteExpired reports whether the quote's validity window has passed. The
// background sweep and the approval-time check both use this predicate, so
// correctness does not depend on sweep timeliness.
func (r *Request) QuoteExpired(now time.Time) bool {
	if r.Status != StatusQuoted || r.QuotedAt == nil {
		return false
	}
	return now.Sub(*r.QuotedAt) > QuoteValidity
}
