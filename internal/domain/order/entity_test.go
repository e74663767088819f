package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPendingPayment, StatusPaymentPendingVerification, true},
		{StatusPendingPayment, StatusConfirmed, true},
		{StatusPaymentVerified, StatusConfirmed, true},
		{StatusConfirmed, StatusInPreparation, true},
		{StatusInPreparation, StatusReadyForPickup, true},
		{StatusReadyForPickup, StatusCompleted, true},
		{StatusConfirmed, StatusPendingPayment, false},
		{StatusCompleted, StatusReadyForPickup, false},
		{StatusInPreparation, StatusCompleted, false},
		{StatusPendingPayment, StatusReadyForPickup, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCancelledReachableFromAnyActiveState(t *testing.T) {
	active := []Status{
		StatusPendingPayment, StatusPaymentPendingVerification, StatusPaymentVerified,
		StatusConfirmed, StatusInPreparation, StatusReadyForPickup,
	}
	for _, s := range active {
		assert.True(t, s.CanTransitionTo(StatusCancelled), "%s should allow cancel", s)
	}

	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusCancelled))
	// Cancelled is terminal.
	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))
}

func TestUnknownStatusRejected(t *testing.T) {
	assert.False(t, Status("shipped").IsValid())
	assert.False(t, StatusPendingPayment.CanTransitionTo(Status("shipped")))
	assert.False(t, Status("shipped").CanTransitionTo(StatusConfirmed))
}

func TestPaymentTransitions(t *testing.T) {
	assert.True(t, PaymentPending.CanTransitionTo(PaymentVerified))
	assert.True(t, PaymentPendingVerification.CanTransitionTo(PaymentPending))
	assert.True(t, PaymentPaid.CanTransitionTo(PaymentRefunded))
	assert.False(t, PaymentRefunded.CanTransitionTo(PaymentPending))
	assert.False(t, PaymentVerified.CanTransitionTo(PaymentPending))
}

func TestCartValidate(t *testing.T) {
	assert.ErrorIs(t, Cart{}.Validate(), ErrEmptyCart)

	cart := Cart{{ProductID: "p1", Quantity: decimal.NewFromInt(-1)}}
	assert.ErrorIs(t, cart.Validate(), ErrNonPositiveQuantity)

	cart = Cart{
		{ProductID: "p1", Quantity: decimal.NewFromInt(2)},
		{ProductID: "p1", Quantity: decimal.NewFromInt(3)},
		{ProductID: "p2", Quantity: decimal.NewFromInt(1)},
	}
	assert.NoError(t, cart.Validate())

	totals := cart.QuantityByProduct()
	assert.True(t, totals["p1"].Equal(decimal.NewFromInt(5)))
	assert.True(t, totals["p2"].Equal(decimal.NewFromInt(1)))
}

func TestFormatNumber(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "ORD-20260830-001", FormatNumber(day, 1))
	assert.Equal(t, "ORD-20260830-042", FormatNumber(day, 42))
	// Past 999 the sequence widens rather than wrapping.
	assert.Equal(t, "ORD-20260830-1000", FormatNumber(day, 1000))
}

func TestNewItemSubtotal(t *testing.T) {
	item := NewItem("o1", "p1", decimal.NewFromFloat(1.25), decimal.NewFromFloat(433.33))
	assert.True(t, item.Subtotal.Equal(decimal.NewFromFloat(541.66)), "got %s", item.Subtotal)
}
