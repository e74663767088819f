package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/history"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/order"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/product"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/clock"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/notifier"
)

// placementAttempts bounds retries when concurrent placements collide
const placementAttempts = 3

// ownerRecipient is the notification address for the business owner
const ownerRecipient = "owner"

// PickupBlockedError rejects a placement whose pickup date is on hold
type PickupBlockedError struct {
	Date   time.Time
	Reason string
}

func (e *PickupBlockedError) Error() string {
	return fmt.Sprintf("pickup date %s is blocked: %s", e.Date.Format("2006-01-02"), e.Reason)
}

// Unwrap lets errors.Is match the validation sentinel
func (e *PickupBlockedError) Unwrap() error {
	return store.ErrValidation
}

// OrderService places orders and reads them back
type OrderService struct {
	store  store.Store
	clk    clock.Clock
	log    logger.Logger
	notify notifier.Notifier
}

// NewOrderService creates an OrderService
func NewOrderService(st store.Store, clk clock.Clock, log logger.Logger, n notifier.Notifier) *OrderService {
	return &OrderService{store: st, clk: clk, log: log, notify: n}
}

// PlaceOrder validates the cart, checks the pickup date and stock, then
// hands the store one atomic placement: number allocation, order rows, FIFO
// deduction, and the initial history entry commit together. Notifications
// go out only after the commit and never fail the placement.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID string, cart order.Cart, pickupDate time.Time, pickupTime string) (*order.Order, error) {
	if customerID == "" {
		return nil, order.ErrEmptyCustomer
	}
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	pickupDate = clock.Date(pickupDate)
	reason, blocked, err := s.store.IsDateBlocked(ctx, pickupDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check pickup date: %w", err)
	}
	if blocked {
		return nil, &PickupBlockedError{Date: pickupDate, Reason: reason}
	}

	products, err := s.loadProducts(ctx, cart)
	if err != nil {
		return nil, err
	}

	// Validate quantity shape per line and availability per product. The
	// store re-checks availability atomically; this pre-flight just fails
	// fast without burning an order number.
	for _, line := range cart {
		if err := products[line.ProductID].ValidateQuantity(line.Quantity); err != nil {
			return nil, err
		}
	}
	for productID, qty := range cart.QuantityByProduct() {
		available, err := s.store.TotalStock(ctx, productID)
		if err != nil {
			return nil, err
		}
		if available.LessThan(qty) {
			return nil, &store.InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
		}
	}

	o := s.buildOrder(customerID, cart, products, pickupDate, pickupTime)
	initial := history.NewEntry(o.ID, history.EntityOrder, "", string(o.Status), "system", history.ActorSystem, "order placed")

	var saved *order.Order
	for attempt := 1; attempt <= placementAttempts; attempt++ {
		saved, err = s.store.CreateOrder(ctx, o, initial)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConcurrencyConflict) && !errors.Is(err, store.ErrOrderNumberAllocation) {
			return nil, err
		}
		s.log.Warn("order placement collided, retrying", "attempt", attempt, "error", err)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("order placed", "order_id", saved.ID, "order_number", saved.Number,
		"customer_id", customerID, "total", saved.TotalAmount.String())

	s.sendPlacementEvents(ctx, saved, products)
	return saved, nil
}

func (s *OrderService) loadProducts(ctx context.Context, cart order.Cart) (map[string]*product.Product, error) {
	products := make(map[string]*product.Product, len(cart))
	for _, line := range cart {
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		p, err := s.store.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		products[line.ProductID] = p
	}
	return products, nil
}

func (s *OrderService) buildOrder(customerID string, cart order.Cart, products map[string]*product.Product, pickupDate time.Time, pickupTime string) *order.Order {
	now := s.clk.Now()
	o := &order.Order{
		ID:            uuid.New().String(),
		OrderDate:     s.clk.Today(),
		Status:        order.StatusPendingPayment,
		PaymentStatus: order.PaymentPending,
		CustomerID:    customerID,
		PickupDate:    pickupDate,
		PickupTime:    pickupTime,
		TotalAmount:   decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, line := range cart {
		item := order.NewItem(o.ID, line.ProductID, line.Quantity, products[line.ProductID].SalePrice)
		o.Items = append(o.Items, item)
		o.TotalAmount = o.TotalAmount.Add(item.Subtotal)
	}
	return o
}

// sendPlacementEvents notifies the customer and flags products the
// placement pushed to their low-stock threshold. Failures are logged only.
func (s *OrderService) sendPlacementEvents(ctx context.Context, o *order.Order, products map[string]*product.Product) {
	err := s.notify.Notify(ctx, o.CustomerID, notifier.EventOrderPlaced, map[string]interface{}{
		"order_id":     o.ID,
		"order_number": o.Number,
		"total_amount": o.TotalAmount.String(),
		"pickup_date":  o.PickupDate.Format("2006-01-02"),
	})
	if err != nil {
		s.log.Error("failed to send order placed notification", "order_id", o.ID, "error", err)
	}

	for productID := range products {
		p, err := s.store.GetProduct(ctx, productID)
		if err != nil {
			s.log.Error("failed to re-read product for low stock check", "product_id", productID, "error", err)
			continue
		}
		if !p.IsLowStock() {
			continue
		}
		err = s.notify.Notify(ctx, ownerRecipient, notifier.EventLowStock, map[string]interface{}{
			"product_id":     p.ID,
			"product_name":   p.Name,
			"stock_quantity": p.StockQuantity.String(),
			"threshold":      p.LowStockThreshold.String(),
		})
		if err != nil {
			s.log.Error("failed to send low stock notification", "product_id", p.ID, "error", err)
		}
	}
}

// GetOrder returns one order with its items
func (s *OrderService) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// GetOrderByNumber looks an order up by its human-readable number
func (s *OrderService) GetOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	return s.store.GetOrderByNumber(ctx, number)
}

// ListOrdersByDate returns a day's orders in number order
func (s *OrderService) ListOrdersByDate(ctx context.Context, day time.Time) ([]*order.Order, error) {
	return s.store.ListOrdersByDate(ctx, clock.Date(day))
}
