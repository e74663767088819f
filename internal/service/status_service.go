package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/customrequest"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/history"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/order"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/clock"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/notifier"
)

// StatusService drives the order, payment, and custom-request state
// machines. It is the only caller of the store's transition operations, so
// every status change carries its audit entry.
type StatusService struct {
	store  store.Store
	clk    clock.Clock
	log    logger.Logger
	notify notifier.Notifier
}

// NewStatusService creates a StatusService
func NewStatusService(st store.Store, clk clock.Clock, log logger.Logger, n notifier.Notifier) *StatusService {
	return &StatusService{store: st, clk: clk, log: log, notify: n}
}

// TransitionOrder moves an order to its next fulfilment status
func (s *StatusService) TransitionOrder(ctx context.Context, orderID string, next order.Status, changedBy string, kind history.ActorKind, notes string) (*order.Order, error) {
	updated, err := s.store.TransitionOrder(ctx, orderID, next, changedBy, kind, notes)
	if err != nil {
		return nil, err
	}

	s.log.Info("order status changed", "order_id", orderID, "status", next, "changed_by", changedBy)

	nerr := s.notify.Notify(ctx, updated.CustomerID, notifier.EventOrderStatusChanged, map[string]interface{}{
		"order_id":     updated.ID,
		"order_number": updated.Number,
		"status":       string(next),
	})
	if nerr != nil {
		s.log.Error("failed to send order status notification", "order_id", orderID, "error", nerr)
	}
	return updated, nil
}

// TransitionPayment moves an order's payment status
func (s *StatusService) TransitionPayment(ctx context.Context, orderID string, next order.PaymentStatus, changedBy string, kind history.ActorKind, notes string) (*order.Order, error) {
	updated, err := s.store.TransitionPayment(ctx, orderID, next, changedBy, kind, notes)
	if err != nil {
		return nil, err
	}

	s.log.Info("payment status changed", "order_id", orderID, "payment_status", next, "changed_by", changedBy)

	nerr := s.notify.Notify(ctx, updated.CustomerID, notifier.EventPaymentStatusChanged, map[string]interface{}{
		"order_id":       updated.ID,
		"order_number":   updated.Number,
		"payment_status": string(next),
	})
	if nerr != nil {
		s.log.Error("failed to send payment status notification", "order_id", orderID, "error", nerr)
	}
	return updated, nil
}

// ListHistory returns an entity's audit trail oldest-first
func (s *StatusService) ListHistory(ctx context.Context, entityID string) ([]history.Entry, error) {
	return s.store.ListHistory(ctx, entityID)
}

// CreateRequest opens a custom request for staff review
func (s *StatusService) CreateRequest(ctx context.Context, customerID, description string) (*customrequest.Request, error) {
	r, err := customrequest.NewRequest(customerID, description)
	if err != nil {
		return nil, err
	}

	initial := history.NewEntry(r.ID, history.EntityCustomRequest, "", string(r.Status), customerID, history.ActorCustomer, "request submitted")
	saved, err := s.store.CreateRequest(ctx, r, initial)
	if err != nil {
		return nil, err
	}

	s.log.Info("custom request created", "request_id", saved.ID, "customer_id", customerID)
	return saved, nil
}

// GetRequest returns one custom request
func (s *StatusService) GetRequest(ctx context.Context, id string) (*customrequest.Request, error) {
	return s.store.GetRequest(ctx, id)
}

// ListRequestsByStatus returns custom requests filtered by status
func (s *StatusService) ListRequestsByStatus(ctx context.Context, status customrequest.Status) ([]*customrequest.Request, error) {
	return s.store.ListRequestsByStatus(ctx, status)
}

// QuoteRequest attaches a price quote to a pending request. The quote's
// validity window starts now.
func (s *StatusService) QuoteRequest(ctx context.Context, id string, amount decimal.Decimal, changedBy, notes string) (*customrequest.Request, error) {
	updated, err := s.store.QuoteRequest(ctx, id, amount, s.clk.Now(), changedBy, notes)
	if err != nil {
		return nil, err
	}

	s.log.Info("custom request quoted", "request_id", id, "amount", amount.String())

	nerr := s.notify.Notify(ctx, updated.CustomerID, notifier.EventRequestStatusChanged, map[string]interface{}{
		"request_id":   updated.ID,
		"status":       string(updated.Status),
		"quote_amount": amount.String(),
	})
	if nerr != nil {
		s.log.Error("failed to send quote notification", "request_id", id, "error", nerr)
	}
	return updated, nil
}

// TransitionRequest applies the request state machine; approval re-checks
// the quote validity window against the current clock.
func (s *StatusService) TransitionRequest(ctx context.Context, id string, next customrequest.Status, changedBy string, kind history.ActorKind, notes string) (*customrequest.Request, error) {
	updated, err := s.store.TransitionRequest(ctx, id, next, s.clk.Now(), changedBy, kind, notes)
	if err != nil {
		return nil, err
	}

	s.log.Info("custom request status changed", "request_id", id, "status", next, "changed_by", changedBy)

	nerr := s.notify.Notify(ctx, updated.CustomerID, notifier.EventRequestStatusChanged, map[string]interface{}{
		"request_id": updated.ID,
		"status":     string(next),
	})
	if nerr != nil {
		s.log.Error("failed to send request status notification", "request_id", id, "error", nerr)
	}
	return updated, nil
}

// ExpireStaleQuotes expires every quote older than the validity window. The
// API server runs this on a timer; correctness does not depend on it
// because approval re-checks expiry itself.
func (s *StatusService) ExpireStaleQuotes(ctx context.Context) (int, error) {
	cutoff := s.clk.Now().Add(-customrequest.QuoteValidity)
	expired, err := s.store.ExpireQuotedBefore(ctx, cutoff, "system")
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.log.Info("stale quotes expired", "count", expired)
	}
	return expired, nil
}
