package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/customrequest"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/history"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/inventory"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/order"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/product"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/stockreturn"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustProduct(t *testing.T, s *Store, name string) *product.Product {
	t.Helper()
	p, err := product.NewProduct(name, false, decimal.NewFromInt(100), decimal.NewFromInt(150), 20, decimal.Zero)
	require.NoError(t, err)
	saved, err := s.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return saved
}

func mustBatch(t *testing.T, s *Store, productID string, qty int64, added time.Time) *inventory.Batch {
	t.Helper()
	b, err := inventory.NewBatch(productID, decimal.NewFromInt(qty), added)
	require.NoError(t, err)
	saved, err := s.AddBatch(context.Background(), b)
	require.NoError(t, err)
	return saved
}

func buildOrder(t *testing.T, p *product.Product, qty int64, orderDate time.Time) (*order.Order, history.Entry) {
	t.Helper()
	o := &order.Order{
		ID:            fmt.Sprintf("order-%d", time.Now().UnixNano()),
		OrderDate:     orderDate,
		Status:        order.StatusPendingPayment,
		PaymentStatus: order.PaymentPending,
		CustomerID:    "customer-1",
		PickupDate:    orderDate.AddDate(0, 0, 1),
		PickupTime:    "10:00",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	item := order.NewItem(o.ID, p.ID, decimal.NewFromInt(qty), p.SalePrice)
	o.Items = []order.Item{item}
	o.TotalAmount = item.Subtotal
	entry := history.NewEntry(o.ID, history.EntityOrder, "", string(o.Status), "system", history.ActorSystem, "order placed")
	return o, entry
}

func TestAddBatchValidation(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Butter Cake")

	_, err := s.AddBatch(ctx, &inventory.Batch{ID: "b1", ProductID: p.ID, Quantity: decimal.Zero})
	assert.ErrorIs(t, err, inventory.ErrNonPositiveQuantity)

	b, err := inventory.NewBatch("missing-product", decimal.NewFromInt(5), day(2026, 8, 30))
	require.NoError(t, err)
	_, err = s.AddBatch(ctx, b)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeductFIFOConsumesOldestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Fish Bun")

	mon := mustBatch(t, s, p.ID, 10, day(2026, 8, 24))
	tue := mustBatch(t, s, p.ID, 15, day(2026, 8, 25))
	wed := mustBatch(t, s, p.ID, 20, day(2026, 8, 26))

	require.NoError(t, s.DeductFIFO(ctx, p.ID, decimal.NewFromInt(12)))

	batches, err := s.ListBatches(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	// Monday is gone, Tuesday is down to 13, Wednesday untouched.
	assert.Equal(t, tue.ID, batches[0].ID)
	assert.True(t, batches[0].Quantity.Equal(decimal.NewFromInt(13)))
	assert.Equal(t, wed.ID, batches[1].ID)
	assert.True(t, batches[1].Quantity.Equal(decimal.NewFromInt(20)))

	for _, b := range batches {
		assert.NotEqual(t, mon.ID, b.ID)
	}

	total, err := s.TotalStock(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(33)))
}

func TestDeductFIFOInsufficientLeavesStockUntouched(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Egg Roll")
	mustBatch(t, s, p.ID, 3, day(2026, 8, 29))
	mustBatch(t, s, p.ID, 4, day(2026, 8, 30))

	err := s.DeductFIFO(ctx, p.ID, decimal.NewFromInt(8))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	var short *store.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.True(t, short.Available.Equal(decimal.NewFromInt(7)))
	assert.True(t, short.Requested.Equal(decimal.NewFromInt(8)))

	total, err := s.TotalStock(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(7)))
}

func TestSameDayBatchesStayDiscrete(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Kimbula Bun")

	first := mustBatch(t, s, p.ID, 5, day(2026, 8, 30))
	second := mustBatch(t, s, p.ID, 7, day(2026, 8, 30))

	batches, err := s.ListBatches(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, first.ID, batches[0].ID)
	assert.Equal(t, second.ID, batches[1].ID)

	// Same-day ties consume in arrival order.
	require.NoError(t, s.DeductFIFO(ctx, p.ID, decimal.NewFromInt(6)))
	batches, err = s.ListBatches(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, second.ID, batches[0].ID)
	assert.True(t, batches[0].Quantity.Equal(decimal.NewFromInt(6)))
}

func TestCreateOrderAllocatesSequentialNumbersPerDay(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Chocolate Cake")
	mustBatch(t, s, p.ID, 100, day(2026, 8, 30))

	today := day(2026, 8, 30)
	for i := 1; i <= 3; i++ {
		o, entry := buildOrder(t, p, 1, today)
		saved, err := s.CreateOrder(ctx, o, entry)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-20260830-%03d", i), saved.Number)
	}

	// A new day restarts the sequence at 001.
	o, entry := buildOrder(t, p, 1, day(2026, 8, 31))
	saved, err := s.CreateOrder(ctx, o, entry)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260831-001", saved.Number)
}

func TestCreateOrderConcurrentNumbersUnique(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Milk Toffee")
	mustBatch(t, s, p.ID, 500, day(2026, 8, 30))

	today := day(2026, 8, 30)
	const n = 50

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, entry := buildOrder(t, p, 1, today)
			saved, err := s.CreateOrder(ctx, o, entry)
			if err == nil {
				numbers <- saved.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	count := 0
	for num := range numbers {
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
		count++
	}
	assert.Equal(t, n, count)

	total, err := s.TotalStock(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(500-n)))
}

func TestCreateOrderInsufficientStockIsAtomic(t *testing.T) {
	s := New()
	ctx := context.Background()
	plenty := mustProduct(t, s, "Plain Tea Bun")
	scarce := mustProduct(t, s, "Ribbon Cake Slice")
	mustBatch(t, s, plenty.ID, 50, day(2026, 8, 30))
	mustBatch(t, s, scarce.ID, 2, day(2026, 8, 30))

	o, entry := buildOrder(t, plenty, 5, day(2026, 8, 30))
	o.Items = append(o.Items, order.NewItem(o.ID, scarce.ID, decimal.NewFromInt(3), scarce.SalePrice))

	_, err := s.CreateOrder(ctx, o, entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	// Neither product lost stock and no order or history row survives.
	total, err := s.TotalStock(ctx, plenty.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(50)))

	_, err = s.GetOrder(ctx, o.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	entries, err := s.ListHistory(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	orders, err := s.ListOrdersByDate(ctx, day(2026, 8, 30))
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderWritesInitialHistory(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Seeni Sambol Bun")
	mustBatch(t, s, p.ID, 10, day(2026, 8, 30))

	o, entry := buildOrder(t, p, 2, day(2026, 8, 30))
	saved, err := s.CreateOrder(ctx, o, entry)
	require.NoError(t, err)

	entries, err := s.ListHistory(ctx, saved.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].OldStatus)
	assert.Equal(t, string(order.StatusPendingPayment), entries[0].NewStatus)
	assert.Equal(t, history.ActorSystem, entries[0].ChangedByKind)
	assert.False(t, entries[0].CreatedAt.IsZero())

	byNumber, err := s.GetOrderByNumber(ctx, saved.Number)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byNumber.ID)
}

func TestTransitionOrderEnforcesStateMachine(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Vanilla Cupcake")
	mustBatch(t, s, p.ID, 10, day(2026, 8, 30))

	o, entry := buildOrder(t, p, 1, day(2026, 8, 30))
	saved, err := s.CreateOrder(ctx, o, entry)
	require.NoError(t, err)

	updated, err := s.TransitionOrder(ctx, saved.ID, order.StatusConfirmed, "staff-1", history.ActorStaff, "")
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, updated.Status)

	// Backward move rejected, status unchanged, no extra entry.
	_, err = s.TransitionOrder(ctx, saved.ID, order.StatusPendingPayment, "staff-1", history.ActorStaff, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	var bad *store.InvalidTransitionError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, string(order.StatusConfirmed), bad.From)

	current, err := s.GetOrder(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, current.Status)

	entries, err := s.ListHistory(ctx, saved.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, string(order.StatusPendingPayment), entries[1].OldStatus)
	assert.Equal(t, string(order.StatusConfirmed), entries[1].NewStatus)
}

func TestTransitionPaymentTracksIndependently(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Date Cake")
	mustBatch(t, s, p.ID, 10, day(2026, 8, 30))

	o, entry := buildOrder(t, p, 1, day(2026, 8, 30))
	saved, err := s.CreateOrder(ctx, o, entry)
	require.NoError(t, err)

	updated, err := s.TransitionPayment(ctx, saved.ID, order.PaymentVerified, "staff-1", history.ActorStaff, "bank slip checked")
	require.NoError(t, err)
	assert.Equal(t, order.PaymentVerified, updated.PaymentStatus)
	assert.Equal(t, order.StatusPendingPayment, updated.Status)

	_, err = s.TransitionPayment(ctx, saved.ID, order.PaymentPending, "staff-1", history.ActorStaff, "")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestProcessReturnSnapshotsAndDeletesBatches(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Maalu Paan")
	old := mustBatch(t, s, p.ID, 8, day(2026, 8, 28))
	fresh := mustBatch(t, s, p.ID, 12, day(2026, 8, 30))

	ret, err := s.ProcessReturn(ctx, day(2026, 8, 30), "staff-1", []stockreturn.Resolution{
		{BatchID: old.ID, Percentage: 20},
	})
	require.NoError(t, err)
	require.Len(t, ret.Items, 1)

	item := ret.Items[0]
	assert.Equal(t, p.ID, item.ProductID)
	assert.Equal(t, "Maalu Paan", item.ProductName)
	assert.Equal(t, 2, item.AgeAtReturn)
	assert.Equal(t, 20, item.ReturnPercentage)
	// cost 100 at 20% = 20.00 per unit, 8 units = 160.00
	assert.True(t, item.ReturnValuePerUnit.Equal(decimal.NewFromInt(20)))
	assert.True(t, item.TotalReturnValue.Equal(decimal.NewFromInt(160)))
	assert.True(t, ret.TotalValue.Equal(decimal.NewFromInt(160)))
	assert.True(t, ret.TotalQuantity.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, 1, ret.TotalBatches)

	batches, err := s.ListBatches(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, fresh.ID, batches[0].ID)

	fetched, err := s.GetReturn(ctx, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, ret.ID, fetched.ID)
}

func TestProcessReturnMissingBatchFailsWhole(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := mustProduct(t, s, "Kithul Treacle Cake")
	b := mustBatch(t, s, p.ID, 5, day(2026, 8, 29))

	_, err := s.ProcessReturn(ctx, day(2026, 8, 30), "staff-1", []stockreturn.Resolution{
		{BatchID: b.ID, Percentage: 100},
		{BatchID: "vanished", Percentage: 100},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrConcurrencyConflict)

	// The resolvable batch was not consumed either.
	batches, err := s.ListBatches(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}

func TestRequestQuoteLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	r, err := customrequest.NewRequest("customer-1", "three tier wedding cake")
	require.NoError(t, err)
	entry := history.NewEntry(r.ID, history.EntityCustomRequest, "", string(r.Status), "customer-1", history.ActorCustomer, "")
	_, err = s.CreateRequest(ctx, r, entry)
	require.NoError(t, err)

	quotedAt := day(2026, 8, 20)
	quoted, err := s.QuoteRequest(ctx, r.ID, decimal.NewFromInt(15000), quotedAt, "staff-1", "")
	require.NoError(t, err)
	require.NotNil(t, quoted.QuoteAmount)
	assert.Equal(t, customrequest.StatusQuoted, quoted.Status)

	// Approval nine days after quoting is past the validity window.
	_, err = s.TransitionRequest(ctx, r.ID, customrequest.StatusApproved, day(2026, 8, 29), "customer-1", history.ActorCustomer, "")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	// Within the window it goes through.
	approved, err := s.TransitionRequest(ctx, r.ID, customrequest.StatusApproved, day(2026, 8, 26), "customer-1", history.ActorCustomer, "")
	require.NoError(t, err)
	assert.Equal(t, customrequest.StatusApproved, approved.Status)

	entries, err := s.ListHistory(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, string(customrequest.StatusQuoted), entries[2].OldStatus)
	assert.Equal(t, string(customrequest.StatusApproved), entries[2].NewStatus)
}

func TestExpireQuotedBefore(t *testing.T) {
	s := New()
	ctx := context.Background()

	stale, err := customrequest.NewRequest("customer-1", "birthday cake")
	require.NoError(t, err)
	_, err = s.CreateRequest(ctx, stale, history.NewEntry(stale.ID, history.EntityCustomRequest, "", string(stale.Status), "customer-1", history.ActorCustomer, ""))
	require.NoError(t, err)
	_, err = s.QuoteRequest(ctx, stale.ID, decimal.NewFromInt(4500), day(2026, 8, 10), "staff-1", "")
	require.NoError(t, err)

	recent, err := customrequest.NewRequest("customer-2", "cupcake tower")
	require.NoError(t, err)
	_, err = s.CreateRequest(ctx, recent, history.NewEntry(recent.ID, history.EntityCustomRequest, "", string(recent.Status), "customer-2", history.ActorCustomer, ""))
	require.NoError(t, err)
	_, err = s.QuoteRequest(ctx, recent.ID, decimal.NewFromInt(6000), day(2026, 8, 28), "staff-1", "")
	require.NoError(t, err)

	cutoff := day(2026, 8, 30).Add(-customrequest.QuoteValidity)
	expired, err := s.ExpireQuotedBefore(ctx, cutoff, "system")
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	got, err := s.GetRequest(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, customrequest.StatusExpired, got.Status)

	got, err = s.GetRequest(ctx, recent.ID)
	require.NoError(t, err)
	assert.Equal(t, customrequest.StatusQuoted, got.Status)
}

func TestHoldLookup(t *testing.T) {
	s := New()
	ctx := context.Background()

	reason, blocked, err := s.IsDateBlocked(ctx, day(2026, 9, 1))
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.Empty(t, reason)

	s.SetHold(day(2026, 9, 1), "poya day closure")
	reason, blocked, err = s.IsDateBlocked(ctx, day(2026, 9, 1))
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, "poya day closure", reason)
}
