package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/history"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/inventory"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/order"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/product"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store/memory"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/clock"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/notifier"
)

var frozenNow = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

type capturedEvent struct {
	RecipientID string
	Event       notifier.EventType
	Payload     map[string]interface{}
}

// captureNotifier records events so tests can assert on delivery
type captureNotifier struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (c *captureNotifier) Notify(ctx context.Context, recipientID string, event notifier.EventType, payload map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, capturedEvent{RecipientID: recipientID, Event: event, Payload: payload})
	return nil
}

func (c *captureNotifier) byType(event notifier.EventType) []capturedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	matched := make([]capturedEvent, 0)
	for _, e := range c.events {
		if e.Event == event {
			matched = append(matched, e)
		}
	}
	return matched
}

func seedProduct(t *testing.T, s *memory.Store, name string, weightBased bool, threshold int64) *product.Product {
	t.Helper()
	p, err := product.NewProduct(name, weightBased,
		decimal.NewFromInt(200), decimal.NewFromInt(350), 20, decimal.NewFromInt(threshold))
	require.NoError(t, err)
	saved, err := s.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return saved
}

func seedBatch(t *testing.T, s *memory.Store, productID string, qty int64, added time.Time) *inventory.Batch {
	t.Helper()
	b, err := inventory.NewBatch(productID, decimal.NewFromInt(qty), added)
	require.NoError(t, err)
	saved, err := s.AddBatch(context.Background(), b)
	require.NoError(t, err)
	return saved
}

func newOrderService(s *memory.Store) (*OrderService, *captureNotifier) {
	n := &captureNotifier{}
	return NewOrderService(s, clock.Fixed(frozenNow), logger.NewNop(), n), n
}

func TestPlaceOrderHappyPath(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	p := seedProduct(t, s, "Chocolate Cake", false, 0)
	seedBatch(t, s, p.ID, 20, frozenNow.AddDate(0, 0, -1))

	svc, n := newOrderService(s)
	cart := order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromInt(3)}}

	placed, err := svc.PlaceOrder(ctx, "customer-1", cart, frozenNow.AddDate(0, 0, 2), "14:30")
	require.NoError(t, err)

	assert.Equal(t, "ORD-20260830-001", placed.Number)
	assert.Equal(t, order.StatusPendingPayment, placed.Status)
	assert.Equal(t, order.PaymentPending, placed.PaymentStatus)
	require.Len(t, placed.Items, 1)
	assert.True(t, placed.Items[0].UnitPrice.Equal(decimal.NewFromInt(350)))
	assert.True(t, placed.TotalAmount.Equal(decimal.NewFromInt(1050)))

	total, err := s.TotalStock(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(17)))

	entries, err := s.ListHistory(ctx, placed.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].OldStatus)
	assert.Equal(t, string(order.StatusPendingPayment), entries[0].NewStatus)
	assert.Equal(t, history.ActorSystem, entries[0].ChangedByKind)

	events := n.byType(notifier.EventOrderPlaced)
	require.Len(t, events, 1)
	assert.Equal(t, "customer-1", events[0].RecipientID)
	assert.Equal(t, placed.Number, events[0].Payload["order_number"])
}

func TestPlaceOrderRejectsBlockedPickupDate(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Butter Cake", false, 0)
	seedBatch(t, s, p.ID, 10, frozenNow)
	s.SetHold(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "poya day closure")

	svc, _ := newOrderService(s)
	cart := order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromInt(1)}}

	_, err := svc.PlaceOrder(context.Background(), "customer-1", cart, time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC), "10:00")
	require.Error(t, err)

	var blocked *PickupBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "poya day closure", blocked.Reason)
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestPlaceOrderCartValidation(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Fruit Cake", false, 0)
	seedBatch(t, s, p.ID, 10, frozenNow)
	svc, _ := newOrderService(s)
	ctx := context.Background()
	pickup := frozenNow.AddDate(0, 0, 1)

	_, err := svc.PlaceOrder(ctx, "customer-1", order.Cart{}, pickup, "10:00")
	assert.ErrorIs(t, err, order.ErrEmptyCart)

	cart := order.Cart{{ProductID: p.ID, Quantity: decimal.Zero}}
	_, err = svc.PlaceOrder(ctx, "customer-1", cart, pickup, "10:00")
	assert.ErrorIs(t, err, order.ErrNonPositiveQuantity)

	// Unit-based products reject fractional quantities.
	cart = order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromFloat(1.5)}}
	_, err = svc.PlaceOrder(ctx, "customer-1", cart, pickup, "10:00")
	assert.ErrorIs(t, err, product.ErrFractionalUnitQuantity)

	_, err = svc.PlaceOrder(ctx, "", order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromInt(1)}}, pickup, "10:00")
	assert.ErrorIs(t, err, order.ErrEmptyCustomer)
}

func TestPlaceOrderWeightBasedQuantities(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Kiri Pani", true, 0)
	seedBatch(t, s, p.ID, 10, frozenNow)
	svc, _ := newOrderService(s)
	ctx := context.Background()
	pickup := frozenNow.AddDate(0, 0, 1)

	cart := order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromFloat(2.25)}}
	placed, err := svc.PlaceOrder(ctx, "customer-1", cart, pickup, "10:00")
	require.NoError(t, err)
	assert.True(t, placed.Items[0].Quantity.Equal(decimal.NewFromFloat(2.25)))

	cart = order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromFloat(0.125)}}
	_, err = svc.PlaceOrder(ctx, "customer-1", cart, pickup, "10:00")
	assert.ErrorIs(t, err, product.ErrQuantityPrecision)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Ribbon Cake", false, 0)
	seedBatch(t, s, p.ID, 2, frozenNow)
	svc, n := newOrderService(s)

	cart := order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromInt(5)}}
	_, err := svc.PlaceOrder(context.Background(), "customer-1", cart, frozenNow.AddDate(0, 0, 1), "10:00")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	var short *store.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.True(t, short.Available.Equal(decimal.NewFromInt(2)))

	assert.Empty(t, n.byType(notifier.EventOrderPlaced))
}

func TestPlaceOrderConcurrentUniqueNumbers(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Cutlet", false, 0)
	seedBatch(t, s, p.ID, 200, frozenNow)
	svc, _ := newOrderService(s)

	const n = 40
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart := order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromInt(1)}}
			placed, err := svc.PlaceOrder(context.Background(), "customer-1", cart, frozenNow.AddDate(0, 0, 1), "10:00")
			if err == nil {
				numbers <- placed.Number
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

	total, err := s.TotalStock(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(200-n)))
}

func TestPlaceOrderNoOversellUnderContention(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Hot Butter Roll", false, 0)
	seedBatch(t, s, p.ID, 10, frozenNow)
	svc, _ := newOrderService(s)

	// 20 customers race for 10 units; exactly 10 single-unit orders can win.
	const n = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	placedCount := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart := order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromInt(1)}}
			_, err := svc.PlaceOrder(context.Background(), "customer-1", cart, frozenNow.AddDate(0, 0, 1), "10:00")
			if err == nil {
				mu.Lock()
				placedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, placedCount)
	total, err := s.TotalStock(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestPlaceOrderLowStockNotification(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Pol Roti", false, 5)
	seedBatch(t, s, p.ID, 8, frozenNow)
	svc, n := newOrderService(s)

	cart := order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromInt(4)}}
	_, err := svc.PlaceOrder(context.Background(), "customer-1", cart, frozenNow.AddDate(0, 0, 1), "10:00")
	require.NoError(t, err)

	events := n.byType(notifier.EventLowStock)
	require.Len(t, events, 1)
	assert.Equal(t, "owner", events[0].RecipientID)
	assert.Equal(t, p.ID, events[0].Payload["product_id"])
}

func TestGetOrderByNumber(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Pan Paan", false, 0)
	seedBatch(t, s, p.ID, 10, frozenNow)
	svc, _ := newOrderService(s)

	cart := order.Cart{{ProductID: p.ID, Quantity: decimal.NewFromInt(2)}}
	placed, err := svc.PlaceOrder(context.Background(), "customer-1", cart, frozenNow.AddDate(0, 0, 1), "10:00")
	require.NoError(t, err)

	found, err := svc.GetOrderByNumber(context.Background(), placed.Number)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, found.ID)

	_, err = svc.GetOrderByNumber(context.Background(), "ORD-20260830-999")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
