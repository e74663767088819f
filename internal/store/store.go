package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/customrequest"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/history"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/inventory"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/order"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/product"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/stockreturn"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/user"
)

// Error taxonomy. Every failure mode a caller can react to maps onto one of
// these sentinels; detailed errors wrap them so errors.Is keeps working.
var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrOrderNumberAllocation = errors.New("order number allocation failed")
	ErrConcurrencyConflict   = errors.New("concurrent modification detected")
	ErrInvalidTransition     = errors.New("status transition not permitted")
	ErrDuplicateKey          = errors.New("record already exists")
)

// InsufficientStockError carries enough detail for the caller to adjust the
// cart: which product is short, how much was requested, how much is left.
type InsufficientStockError struct {
	ProductID string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %s, available %s",
		e.ProductID, e.Requested.String(), e.Available.String())
}

// Unwrap lets errors.Is match the ErrInsufficientStock sentinel
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InvalidTransitionError reports a status change the state machine rejects
type InvalidTransitionError struct {
	EntityType history.EntityType
	From       string
	To         string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %q to %q", e.EntityType, e.From, e.To)
}

// Unwrap lets errors.Is match the ErrInvalidTransition sentinel
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ProductStore owns the catalog entries the engine prices and deducts
// against. StockQuantity on returned products is always derived from batch
// sums inside the store, never from a writable column.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	ListProducts(ctx context.Context) ([]*product.Product, error)
}

// BatchStore is the authoritative source of per-product stock, partitioned
// into dated batches with FIFO semantics.
type BatchStore interface {
	// AddBatch records a stock check-in as a new discrete batch; batches
	// are never merged even when dated identically.
	AddBatch(ctx context.Context, b *inventory.Batch) (*inventory.Batch, error)

	// TotalStock sums all live batch quantities for a product.
	TotalStock(ctx context.Context, productID string) (decimal.Decimal, error)

	// ListBatches returns the product's live batches oldest-first.
	// Re-querying re-executes the ordering against current state.
	ListBatches(ctx context.Context, productID string) ([]inventory.Batch, error)

	// ListAllBatches returns every live batch oldest-first; used by return
	// processing to build the day's default selection.
	ListAllBatches(ctx context.Context) ([]inventory.Batch, error)

	// DeductFIFO subtracts the quantity from the product's batches oldest
	// first, deleting any batch that reaches zero. All-or-nothing: on
	// insufficient stock nothing is touched and an
	// *InsufficientStockError is returned.
	DeductFIFO(ctx context.Context, productID string, quantity decimal.Decimal) error
}

// OrderStore persists orders. CreateOrder is the engine's atomic core:
// number allocation, order and item rows, FIFO deduction, and the initial
// history entry all commit or roll back together.
type OrderStore interface {
	// CreateOrder takes an order with items, order date, and initial
	// statuses but no number. It allocates the day-scoped number under
	// mutual exclusion, inserts the order and its items, deducts stock
	// FIFO per distinct product, and appends the initial status history
	// entry. On any failure no row and no deduction survive.
	CreateOrder(ctx context.Context, o *order.Order, initial history.Entry) (*order.Order, error)

	GetOrder(ctx context.Context, id string) (*order.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*order.Order, error)
	ListOrdersByDate(ctx context.Context, day time.Time) ([]*order.Order, error)
}

// ReturnStore finalizes supplier returns and keeps their history
type ReturnStore interface {
	// ProcessReturn deletes each resolved batch and writes the return
	// record with per-batch snapshots, atomically. A resolution whose
	// batch no longer exists makes the whole call fail with
	// ErrConcurrencyConflict so the caller re-reads and retries.
	ProcessReturn(ctx context.Context, returnDate time.Time, processedBy string, resolutions []stockreturn.Resolution) (*stockreturn.Return, error)

	GetReturn(ctx context.Context, id string) (*stockreturn.Return, error)
	ListReturns(ctx context.Context, from, to time.Time) ([]*stockreturn.Return, error)
}

// HistoryStore is the only sanctioned write path to status fields. Each
// transition writes the new status and appends its audit entry in one
// atomic step.
type HistoryStore interface {
	TransitionOrder(ctx context.Context, orderID string, next order.Status, changedBy string, kind history.ActorKind, notes string) (*order.Order, error)
	TransitionPayment(ctx context.Context, orderID string, next order.PaymentStatus, changedBy string, kind history.ActorKind, notes string) (*order.Order, error)
	ListHistory(ctx context.Context, entityID string) ([]history.Entry, error)
}

// RequestStore owns custom requests and their quote lifecycle
type RequestStore interface {
	CreateRequest(ctx context.Context, r *customrequest.Request, initial history.Entry) (*customrequest.Request, error)
	GetRequest(ctx context.Context, id string) (*customrequest.Request, error)
	ListRequestsByStatus(ctx context.Context, status customrequest.Status) ([]*customrequest.Request, error)

	// QuoteRequest moves pending_review to quoted, stamping the amount and
	// quote time, with its history entry.
	QuoteRequest(ctx context.Context, id string, amount decimal.Decimal, quotedAt time.Time, changedBy string, notes string) (*customrequest.Request, error)

	// TransitionRequest applies the request state machine. Approval of a
	// quote older than its validity window is rejected even if the expiry
	// sweep has not run yet; now is the caller's clock reading.
	TransitionRequest(ctx context.Context, id string, next customrequest.Status, now time.Time, changedBy string, kind history.ActorKind, notes string) (*customrequest.Request, error)

	// ExpireQuotedBefore expires every quoted request whose quote was
	// issued before the cutoff, one history entry each. Returns how many
	// were expired.
	ExpireQuotedBefore(ctx context.Context, cutoff time.Time, changedBy string) (int, error)
}

// HoldStore is the read-only view onto the scheduling component's pickup
// holds; the engine only consults it, never writes it.
type HoldStore interface {
	IsDateBlocked(ctx context.Context, date time.Time) (string, bool, error)
}

// UserStore holds staff accounts for the auth boundary
type UserStore interface {
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
}

// Store is the full persistence surface of the engine. Two implementations
// exist: postgres (production) and memory (tests, local runs without a
// database).
type Store interface {
	ProductStore
	BatchStore
	OrderStore
	ReturnStore
	HistoryStore
	RequestStore
	HoldStore
	UserStore
}
