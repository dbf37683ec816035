// internal/models/order_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotal(t *testing.T) {
	assert.InDelta(t, 115.00, ComputeTotal(100.00, 10.00, 5.00), 0.001)
	assert.InDelta(t, 110.00, ComputeTotal(100.00, 10.00, 0), 0.001)
	assert.Zero(t, ComputeTotal(0, 0, 0))
}

func TestAmountMatchesWithinTolerance(t *testing.T) {
	assert.True(t, AmountMatches(100.00, 100.00))
	assert.True(t, AmountMatches(100.00, 100.01))
	assert.True(t, AmountMatches(100.00, 99.99))
	assert.False(t, AmountMatches(100.00, 100.02))
	assert.False(t, AmountMatches(100.00, 99.98))
	assert.False(t, AmountMatches(100.00, 101.00))
}

func TestOrderFlagsDeriveFromTimestamps(t *testing.T) {
	now := time.Now()
	order := &Order{Status: OrderStatusSent, PaidAt: &now, SentAt: &now}

	flags := order.Flags()

	assert.True(t, flags["is_paid"])
	assert.True(t, flags["is_sent"])
	assert.False(t, flags["is_delivered"])
	assert.False(t, flags["is_received"])
}

func TestOrderFlagsUnpaid(t *testing.T) {
	order := &Order{Status: OrderStatusPending}

	assert.False(t, order.IsPaid())
	assert.False(t, order.IsSent())
	assert.False(t, order.IsDelivered())
	assert.False(t, order.IsReceived())
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod("card"))
	assert.True(t, ValidPaymentMethod("cash_on_delivery"))
	assert.True(t, ValidPaymentMethod("mobile_banking"))
	assert.True(t, ValidPaymentMethod("balance"))
	assert.False(t, ValidPaymentMethod("paypal"))
	assert.False(t, ValidPaymentMethod(""))
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "processing", "shipped", "sent", "delivered", "received", "cancelled"} {
		assert.True(t, ValidOrderStatus(s), s)
	}
	assert.False(t, ValidOrderStatus("refunded"))
}
