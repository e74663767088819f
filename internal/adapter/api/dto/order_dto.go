package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/history"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/order"
)

// CartLineRequest is one requested product line
type CartLineRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// PlaceOrderRequest places a new order
type PlaceOrderRequest struct {
	Items      []CartLineRequest `json:"items" binding:"required"`
	PickupDate time.Time         `json:"pickup_date" binding:"required"`
	PickupTime string            `json:"pickup_time" binding:"required"`
}

// Cart converts the request lines into the domain cart
func (r PlaceOrderRequest) Cart() order.Cart {
	cart := make(order.Cart, 0, len(r.Items))
	for _, line := range r.Items {
		cart = append(cart, order.CartLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return cart
}

// OrderItemResponse is one priced line of an order
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse is a full order
type OrderResponse struct {
	ID            string              `json:"id"`
	OrderNumber   string              `json:"order_number"`
	OrderDate     string              `json:"order_date"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	CustomerID    string              `json:"customer_id"`
	PickupDate    string              `json:"pickup_date"`
	PickupTime    string              `json:"pickup_time"`
	Items         []OrderItemResponse `json:"items"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	CreatedAt     time.Time           `json:"created_at"`
}

// NewOrderResponse maps an order to its response shape
func NewOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}

	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.Number,
		OrderDate:     o.OrderDate.Format("2006-01-02"),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		CustomerID:    o.CustomerID,
		PickupDate:    o.PickupDate.Format("2006-01-02"),
		PickupTime:    o.PickupTime,
		Items:         items,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
	}
}

// StatusChangeRequest moves an order or payment to its next status
type StatusChangeRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// HistoryEntryResponse is one audit fact
type HistoryEntryResponse struct {
	ID            string    `json:"id"`
	EntityID      string    `json:"entity_id"`
	EntityType    string    `json:"entity_type"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	ChangedBy     string    `json:"changed_by"`
	ChangedByKind string    `json:"changed_by_kind"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewHistoryResponse maps history entries to their response shape
func NewHistoryResponse(entries []history.Entry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryResponse{
			ID:            e.ID,
			EntityID:      e.EntityID,
			EntityType:    string(e.EntityType),
			OldStatus:     e.OldStatus,
			NewStatus:     e.NewStatus,
			ChangedBy:     e.ChangedBy,
			ChangedByKind: string(e.ChangedByKind),
			Notes:         e.Notes,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out
}
