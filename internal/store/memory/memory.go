package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/customrequest"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/history"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/inventory"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/order"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/product"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/stockreturn"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/user"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
)

const dayKeyFormat = "20060102"

// memBatch wraps a batch with an insertion sequence so same-day check-ins
// keep a stable FIFO order
type memBatch struct {
	inventory.Batch
	seq int64
}

// Store is an in-memory implementation of store.Store. One mutex guards all
// state, which makes every public operation atomic and serialized exactly
// like a database transaction would; it backs the engine's tests and local
// runs without Postgres.
type Store struct {
	mu sync.Mutex

	products    map[string]*product.Product
	batches     []memBatch
	orders      map[string]*order.Order
	numberIndex map[string]string
	dayCounters map[string]int
	returns     map[string]*stockreturn.Return
	entries     []history.Entry
	requests    map[string]*customrequest.Request
	holds       map[string]string
	users       map[string]*user.User

	seq int64
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		products:    make(map[string]*product.Product),
		orders:      make(map[string]*order.Order),
		numberIndex: make(map[string]string),
		dayCounters: make(map[string]int),
		returns:     make(map[string]*stockreturn.Return),
		requests:    make(map[string]*customrequest.Request),
		holds:       make(map[string]string),
		users:       make(map[string]*user.User),
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// CreateProduct implements store.ProductStore
func (s *Store) CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if strings.EqualFold(existing.Name, p.Name) {
			return nil, store.ErrDuplicateKey
		}
	}

	saved := *p
	s.products[saved.ID] = &saved

	out := saved
	return &out, nil
}

// GetProduct implements store.ProductStore
func (s *Store) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getProductLocked(id)
}

func (s *Store) getProductLocked(id string) (*product.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *p
	out.StockQuantity = s.totalStockLocked(id)
	return &out, nil
}

// ListProducts implements store.ProductStore
func (s *Store) ListProducts(ctx context.Context) ([]*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]*product.Product, 0, len(s.products))
	for id := range s.products {
		p, _ := s.getProductLocked(id)
		products = append(products, p)
	}
	for i := 1; i < len(products); i++ {
		for j := i; j > 0 && products[j].Name < products[j-1].Name; j-- {
			products[j], products[j-1] = products[j-1], products[j]
		}
	}
	return products, nil
}

// AddBatch implements store.BatchStore
func (s *Store) AddBatch(ctx context.Context, b *inventory.Batch) (*inventory.Batch, error) {
	if b.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, inventory.ErrNonPositiveQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[b.ProductID]; !ok {
		return nil, store.ErrNotFound
	}

	s.batches = append(s.batches, memBatch{Batch: *b, seq: s.nextSeq()})
	out := *b
	return &out, nil
}

func (s *Store) totalStockLocked(productID string) decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.batches {
		if b.ProductID == productID {
			total = total.Add(b.Quantity)
		}
	}
	return total
}

// TotalStock implements store.BatchStore
func (s *Store) TotalStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return decimal.Zero, store.ErrNotFound
	}
	return s.totalStockLocked(productID), nil
}

func (s *Store) sortedBatchesLocked(productID string) []inventory.Batch {
	selected := make([]memBatch, 0, len(s.batches))
	for _, b := range s.batches {
		if productID == "" || b.ProductID == productID {
			selected = append(selected, b)
		}
	}
	for i := 1; i < len(selected); i++ {
		for j := i; j > 0 && olderBatch(selected[j], selected[j-1]); j-- {
			selected[j], selected[j-1] = selected[j-1], selected[j]
		}
	}

	out := make([]inventory.Batch, 0, len(selected))
	for _, b := range selected {
		out = append(out, b.Batch)
	}
	return out
}

func olderBatch(a, b memBatch) bool {
	if !a.DateAdded.Equal(b.DateAdded) {
		return a.DateAdded.Before(b.DateAdded)
	}
	return a.seq < b.seq
}

// ListBatches implements store.BatchStore
func (s *Store) ListBatches(ctx context.Context, productID string) ([]inventory.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return nil, store.ErrNotFound
	}
	return s.sortedBatchesLocked(productID), nil
}

// ListAllBatches implements store.BatchStore
func (s *Store) ListAllBatches(ctx context.Context) ([]inventory.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedBatchesLocked(""), nil
}

// deductLocked plans and applies a FIFO deduction; nothing is touched when
// stock is insufficient
func (s *Store) deductLocked(productID string, quantity decimal.Decimal) error {
	ordered := s.sortedBatchesLocked(productID)
	plan, available, ok := inventory.PlanFIFO(ordered, quantity)
	if !ok {
		return &store.InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
	}
	s.applyPlanLocked(plan)
	return nil
}

func (s *Store) applyPlanLocked(plan []inventory.Deduction) {
	for _, d := range plan {
		for i := range s.batches {
			if s.batches[i].ID != d.BatchID {
				continue
			}
			if d.Exhausted {
				s.batches = append(s.batches[:i], s.batches[i+1:]...)
			} else {
				s.batches[i].Quantity = s.batches[i].Quantity.Sub(d.Quantity)
			}
			break
		}
	}
}

// DeductFIFO implements store.BatchStore
func (s *Store) DeductFIFO(ctx context.Context, productID string, quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return store.ErrNotFound
	}
	return s.deductLocked(productID, quantity)
}

// CreateOrder implements store.OrderStore. Everything happens under the one
// mutex: number allocation, the order row, item rows, FIFO deduction, and
// the initial history entry, so a failure leaves no trace.
func (s *Store) CreateOrder(ctx context.Context, o *order.Order, initial history.Entry) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Plan every deduction before touching anything.
	requested := make(map[string]decimal.Decimal, len(o.Items))
	for _, item := range o.Items {
		requested[item.ProductID] = requested[item.ProductID].Add(item.Quantity)
	}

	plans := make([][]inventory.Deduction, 0, len(requested))
	for productID, qty := range requested {
		if _, ok := s.products[productID]; !ok {
			return nil, store.ErrNotFound
		}
		ordered := s.sortedBatchesLocked(productID)
		plan, available, ok := inventory.PlanFIFO(ordered, qty)
		if !ok {
			return nil, &store.InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
		}
		plans = append(plans, plan)
	}

	dayKey := o.OrderDate.Format(dayKeyFormat)
	seq := s.dayCounters[dayKey] + 1

	saved := *o
	saved.Number = order.FormatNumber(o.OrderDate, seq)
	saved.Items = append([]order.Item(nil), o.Items...)
	for i := range saved.Items {
		saved.Items[i].OrderID = saved.ID
	}

	for _, plan := range plans {
		s.applyPlanLocked(plan)
	}

	s.dayCounters[dayKey] = seq
	s.orders[saved.ID] = &saved
	s.numberIndex[saved.Number] = saved.ID

	initial.CreatedAt = time.Now()
	s.entries = append(s.entries, initial)

	out := saved
	out.Items = append([]order.Item(nil), saved.Items...)
	return &out, nil
}

// GetOrder implements store.OrderStore
func (s *Store) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrderLocked(id)
}

func (s *Store) getOrderLocked(id string) (*order.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *o
	out.Items = append([]order.Item(nil), o.Items...)
	return &out, nil
}

// GetOrderByNumber implements store.OrderStore
func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.numberIndex[number]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.getOrderLocked(id)
}

// ListOrdersByDate implements store.OrderStore
func (s *Store) ListOrdersByDate(ctx context.Context, day time.Time) ([]*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := day.Format(dayKeyFormat)
	orders := make([]*order.Order, 0)
	for id, o := range s.orders {
		if o.OrderDate.Format(dayKeyFormat) == key {
			copied, _ := s.getOrderLocked(id)
			orders = append(orders, copied)
		}
	}
	for i := 1; i < len(orders); i++ {
		for j := i; j > 0 && orders[j].Number < orders[j-1].Number; j-- {
			orders[j], orders[j-1] = orders[j-1], orders[j]
		}
	}
	return orders, nil
}

// ProcessReturn implements store.ReturnStore
func (s *Store) ProcessReturn(ctx context.Context, returnDate time.Time, processedBy string, resolutions []stockreturn.Resolution) (*stockreturn.Return, error) {
	if len(resolutions) == 0 {
		return nil, stockreturn.ErrNothingToReturn
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ret, err := stockreturn.NewReturn(returnDate, processedBy)
	if err != nil {
		return nil, err
	}

	removals := make([]string, 0, len(resolutions))
	for _, res := range resolutions {
		if err := stockreturn.ValidatePercentage(res.Percentage); err != nil {
			return nil, err
		}

		var batch *memBatch
		for i := range s.batches {
			if s.batches[i].ID == res.BatchID {
				batch = &s.batches[i]
				break
			}
		}
		if batch == nil {
			// The batch was sold out or returned by a concurrent call
			// between the caller's read and this commit.
			return nil, store.ErrConcurrencyConflict
		}

		p, ok := s.products[batch.ProductID]
		if !ok {
			return nil, store.ErrNotFound
		}

		perUnit := stockreturn.ValuePerUnit(p.OriginalCost, res.Percentage)
		total := perUnit.Mul(batch.Quantity).Round(2)
		ret.Items = append(ret.Items, stockreturn.Item{
			ID:                 stockreturn.NewItemID(),
			ReturnID:           ret.ID,
			BatchID:            batch.ID,
			ProductID:          batch.ProductID,
			ProductName:        p.Name,
			BatchQuantity:      batch.Quantity,
			AgeAtReturn:        batch.AgeInDays(returnDate),
			DateBatchAdded:     batch.DateAdded,
			OriginalCost:       p.OriginalCost,
			SalePrice:          p.SalePrice,
			ReturnPercentage:   res.Percentage,
			ReturnValuePerUnit: perUnit,
			TotalReturnValue:   total,
		})
		ret.TotalValue = ret.TotalValue.Add(total)
		ret.TotalQuantity = ret.TotalQuantity.Add(batch.Quantity)
		removals = append(removals, batch.ID)
	}
	ret.TotalBatches = len(ret.Items)

	for _, id := range removals {
		for i := range s.batches {
			if s.batches[i].ID == id {
				s.batches = append(s.batches[:i], s.batches[i+1:]...)
				break
			}
		}
	}

	saved := *ret
	saved.Items = append([]stockreturn.Item(nil), ret.Items...)
	s.returns[saved.ID] = &saved

	out := saved
	out.Items = append([]stockreturn.Item(nil), saved.Items...)
	return &out, nil
}

// GetReturn implements store.ReturnStore
func (s *Store) GetReturn(ctx context.Context, id string) (*stockreturn.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret, ok := s.returns[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *ret
	out.Items = append([]stockreturn.Item(nil), ret.Items...)
	return &out, nil
}

// ListReturns implements store.ReturnStore
func (s *Store) ListReturns(ctx context.Context, from, to time.Time) ([]*stockreturn.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	returns := make([]*stockreturn.Return, 0)
	for _, ret := range s.returns {
		if ret.ReturnDate.Before(from) || ret.ReturnDate.After(to) {
			continue
		}
		out := *ret
		out.Items = append([]stockreturn.Item(nil), ret.Items...)
		returns = append(returns, &out)
	}
	return returns, nil
}

// TransitionOrder implements store.HistoryStore
func (s *Store) TransitionOrder(ctx context.Context, orderID string, next order.Status, changedBy string, kind history.ActorKind, notes string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, &store.InvalidTransitionError{EntityType: history.EntityOrder, From: string(o.Status), To: string(next)}
	}

	entry := history.NewEntry(orderID, history.EntityOrder, string(o.Status), string(next), changedBy, kind, notes)
	entry.CreatedAt = time.Now()

	o.Status = next
	o.UpdatedAt = time.Now()
	s.entries = append(s.entries, entry)

	return s.getOrderLocked(orderID)
}

// TransitionPayment implements store.HistoryStore
func (s *Store) TransitionPayment(ctx context.Context, orderID string, next order.PaymentStatus, changedBy string, kind history.ActorKind, notes string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !o.PaymentStatus.CanTransitionTo(next) {
		return nil, &store.InvalidTransitionError{EntityType: history.EntityOrder, From: string(o.PaymentStatus), To: string(next)}
	}

	entry := history.NewEntry(orderID, history.EntityOrder, string(o.PaymentStatus), string(next), changedBy, kind, notes)
	entry.CreatedAt = time.Now()

	o.PaymentStatus = next
	o.UpdatedAt = time.Now()
	s.entries = append(s.entries, entry)

	return s.getOrderLocked(orderID)
}

// ListHistory implements store.HistoryStore. Entries come back in append
// order, which is chronological by construction.
func (s *Store) ListHistory(ctx context.Context, entityID string) ([]history.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]history.Entry, 0)
	for _, e := range s.entries {
		if e.EntityID == entityID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// CreateRequest implements store.RequestStore
func (s *Store) CreateRequest(ctx context.Context, r *customrequest.Request, initial history.Entry) (*customrequest.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *r
	s.requests[saved.ID] = &saved

	initial.CreatedAt = time.Now()
	s.entries = append(s.entries, initial)

	out := saved
	return &out, nil
}

// GetRequest implements store.RequestStore
func (s *Store) GetRequest(ctx context.Context, id string) (*customrequest.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *r
	return &out, nil
}

// ListRequestsByStatus implements store.RequestStore
func (s *Store) ListRequestsByStatus(ctx context.Context, status customrequest.Status) ([]*customrequest.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := make([]*customrequest.Request, 0)
	for _, r := range s.requests {
		if r.Status == status {
			out := *r
			requests = append(requests, &out)
		}
	}
	return requests, nil
}

// QuoteRequest implements store.RequestStore
func (s *Store) QuoteRequest(ctx context.Context, id string, amount decimal.Decimal, quotedAt time.Time, changedBy string, notes string) (*customrequest.Request, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, customrequest.ErrInvalidQuote
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !r.Status.CanTransitionTo(customrequest.StatusQuoted) {
		return nil, &store.InvalidTransitionError{EntityType: history.EntityCustomRequest, From: string(r.Status), To: string(customrequest.StatusQuoted)}
	}

	entry := history.NewEntry(id, history.EntityCustomRequest, string(r.Status), string(customrequest.StatusQuoted), changedBy, history.ActorStaff, notes)
	entry.CreatedAt = time.Now()

	r.Status = customrequest.StatusQuoted
	r.QuoteAmount = &amount
	r.QuotedAt = &quotedAt
	r.UpdatedAt = time.Now()
	s.entries = append(s.entries, entry)

	out := *r
	return &out, nil
}

// TransitionRequest implements store.RequestStore
func (s *Store) TransitionRequest(ctx context.Context, id string, next customrequest.Status, now time.Time, changedBy string, kind history.ActorKind, notes string) (*customrequest.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !r.Status.CanTransitionTo(next) {
		return nil, &store.InvalidTransitionError{EntityType: history.EntityCustomRequest, From: string(r.Status), To: string(next)}
	}
	if next == customrequest.StatusApproved && r.QuoteExpired(now) {
		return nil, &store.InvalidTransitionError{EntityType: history.EntityCustomRequest, From: string(customrequest.StatusQuoted), To: string(next)}
	}

	entry := history.NewEntry(id, history.EntityCustomRequest, string(r.Status), string(next), changedBy, kind, notes)
	entry.CreatedAt = time.Now()

	r.Status = next
	r.UpdatedAt = time.Now()
	s.entries = append(s.entries, entry)

	out := *r
	return &out, nil
}

// ExpireQuotedBefore implements store.RequestStore
func (s *Store) ExpireQuotedBefore(ctx context.Context, cutoff time.Time, changedBy string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for _, r := range s.requests {
		if r.Status != customrequest.StatusQuoted || r.QuotedAt == nil || !r.QuotedAt.Before(cutoff) {
			continue
		}

		entry := history.NewEntry(r.ID, history.EntityCustomRequest, string(r.Status), string(customrequest.StatusExpired), changedBy, history.ActorSystem, "quote validity window elapsed")
		entry.CreatedAt = time.Now()

		r.Status = customrequest.StatusExpired
		r.UpdatedAt = time.Now()
		s.entries = append(s.entries, entry)
		expired++
	}
	return expired, nil
}

// IsDateBlocked implements store.HoldStore
func (s *Store) IsDateBlocked(ctx context.Context, date time.Time) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reason, ok := s.holds[date.Format(dayKeyFormat)]
	return reason, ok, nil
}

// SetHold blocks a pickup date; used by tests and local runs (the owning
// scheduler writes this table in production)
func (s *Store) SetHold(date time.Time, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds[date.Format(dayKeyFormat)] = reason
}

// CreateUser implements store.UserStore
func (s *Store) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Username)
	if _, ok := s.users[key]; ok {
		return nil, store.ErrDuplicateKey
	}

	saved := *u
	s.users[key] = &saved
	out := saved
	return &out, nil
}

// GetUserByUsername implements store.UserStore
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(username)]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *u
	return &out, nil
}
