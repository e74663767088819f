package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart           = errors.New("cart cannot be empty")
	ErrNonPositiveQuantity = errors.New("cart line quantity must be greater than zero")
	ErrEmptyCustomer       = errors.New("order requires a customer id")
)

// Status is the order lifecycle state. Orders are never deleted;
// cancellation is a terminal status, not a row removal.
type Status string

const (
	StatusPendingPayment             Status = "pending_payment"
	StatusPaymentPendingVerification Status = "payment_pending_verification"
	StatusPaymentVerified            Status = "payment_verified"
	StatusConfirmed                  Status = "confirmed"
	StatusInPreparation              Status = "in_preparation"
	StatusReadyForPickup             Status = "ready_for_pickup"
	StatusCompleted                  Status = "completed"
	StatusCancelled                  Status = "cancelled"
)

// statusTransitions is the forward state machine. Cancellation is handled
// separately: it is reachable from any non-terminal state.
var statusTransitions = map[Status][]Status{
	StatusPendingPayment:             {StatusPaymentPendingVerification, StatusPaymentVerified, StatusConfirmed},
	StatusPaymentPendingVerification: {StatusPaymentVerified, StatusConfirmed},
	StatusPaymentVerified:            {StatusConfirmed},
	StatusConfirmed:                  {StatusInPreparation},
	StatusInPreparation:              {StatusReadyForPickup},
	StatusReadyForPickup:             {StatusCompleted},
	StatusCompleted:                  {},
	StatusCancelled:                  {},
}

// IsValid reports whether s is a known order status
func (s Status) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Backward moves are never allowed; cancelled is reachable from any
// non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if next == StatusCancelled {
		return !s.IsTerminal()
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus tracks payment progress independently of fulfilment
type PaymentStatus string

const (
	PaymentPending             PaymentStatus = "pending"
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentVerified            PaymentStatus = "verified"
	PaymentPaid                PaymentStatus = "paid"
	PaymentRefunded            PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:             {PaymentPendingVerification, PaymentVerified, PaymentPaid},
	PaymentPendingVerification: {PaymentVerified, PaymentPaid, PaymentPending},
	PaymentVerified:            {PaymentPaid, PaymentRefunded},
	PaymentPaid:                {PaymentRefunded},
	PaymentRefunded:            {},
}

// IsValid reports whether p is a known payment status
func (p PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[p]
	return ok
}

// CanTransitionTo reports whether the payment machine permits the move
func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Item is a priced order line. Quantity and price are a snapshot taken at
// order creation so history stays accurate when the catalog changes.
type Item struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Order is a durable customer order. The number is assigned inside the
// placement transaction and is immutable afterwards.
type Order struct {
	ID            string          `json:"id"`
	Number        string          `json:"order_number"`
	OrderDate     time.Time       `json:"order_date"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CustomerID    string          `json:"customer_id"`
	PickupDate    time.Time       `json:"pickup_date"`
	PickupTime    string          `json:"pickup_time"`
	Items         []Item          `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CartLine is one requested product before pricing
type CartLine struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Cart is the customer's requested lines. Lines for the same product are
// allowed and are aggregated at deduction time.
type Cart []CartLine

// Validate rejects empty carts and non-positive quantities before any
// mutation happens
func (c Cart) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCart
	}
	for _, line := range c {
		if line.ProductID == "" {
			return ErrEmptyCart
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return ErrNonPositiveQuantity
		}
	}
	return nil
}

// QuantityByProduct aggregates the cart into one requested quantity per
// distinct product
func (c Cart) QuantityByProduct() map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(c))
	for _, line := range c {
		totals[line.ProductID] = totals[line.ProductID].Add(line.Quantity)
	}
	return totals
}

// FormatNumber renders the human-readable order number for a day and
// sequence, e.g. ORD-20260830-007. The format is relied on by printed
// receipts and staff search tooling.
func FormatNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s-%03d", day.Format("20060102"), seq)
}

// NewItem builds a priced line with its subtotal snapshot
func NewItem(orderID, productID string, quantity, unitPrice decimal.Decimal) Item {
	return Item{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  quantity.Mul(unitPrice).Round(2),
	}
}
