package notifier

import "context"

// EventType identifies what happened, for routing on the consumer side
type EventType string

const (
	EventOrderPlaced          EventType = "order_placed"
	EventOrderStatusChanged   EventType = "order_status_changed"
	EventPaymentStatusChanged EventType = "payment_status_changed"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventReturnProcessed      EventType = "return_processed"
	EventLowStock             EventType = "low_stock"
)

// Notifier delivers events to customers or staff. Delivery is fire and
// forget: callers log failures and never let them affect the operation that
// produced the event.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, event EventType, payload map[string]interface{}) error
}

// Noop is a Notifier that drops every event; used when no broker is
// configured and in tests.
type Noop struct{}

// Notify implements Notifier
func (Noop) Notify(ctx context.Context, recipientID string, event EventType, payload map[string]interface{}) error {
	return nil
}
