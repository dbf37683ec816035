// internal/services/order_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/storefront-backend/internal/models"
)

func TestCreateOrderCashOnDelivery(t *testing.T) {
	svc, db := newTestOrderService(t)
	user := seedUser(t, db, 0)
	product := seedProduct(t, db, 10.00, 20)

	order, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   string(models.PaymentMethodCashOnDelivery),
		ClaimedTotal:    27.00,
	})
	require.NoError(t, err)

	assert.InDelta(t, 20.00, order.ItemsPrice, 0.001)
	assert.InDelta(t, 2.00, order.TaxPrice, 0.001)
	assert.InDelta(t, 5.00, order.ShippingPrice, 0.001)
	assert.InDelta(t, 27.00, order.TotalPrice, 0.001)

	// COD settles at checkout, fulfilment has not started
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.NotNil(t, order.PaidAt)
	assert.True(t, order.Flags()["is_paid"])

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 18, reloaded.Stock)
	assert.Equal(t, 2, reloaded.Sold)
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	svc, db := newTestOrderService(t)
	user := seedUser(t, db, 0)
	plenty := seedProduct(t, db, 8.00, 5)
	scarce := seedProduct(t, db, 3.00, 1)

	_, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: plenty.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 3},
		},
		ShippingAddress: testAddress(),
		PaymentMethod:   string(models.PaymentMethodCashOnDelivery),
	})
	require.ErrorIs(t, err, ErrStockConflict)

	// The first line's reservation must not survive the rollback
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, plenty.ID).Error)
	assert.Equal(t, 5, reloaded.Stock)
	assert.Equal(t, 0, reloaded.Sold)

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
}

func TestCreateOrderRejectsStaleClaimedTotal(t *testing.T) {
	svc, db := newTestOrderService(t)
	user := seedUser(t, db, 0)
	product := seedProduct(t, db, 10.00, 20)

	_, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   string(models.PaymentMethodCashOnDelivery),
		ClaimedTotal:    25.00,
	})
	require.ErrorIs(t, err, ErrPriceMismatch)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 20, reloaded.Stock)
}

func TestCreateOrderWaivesShippingOverThreshold(t *testing.T) {
	svc, db := newTestOrderService(t)
	user := seedUser(t, db, 0)
	product := seedProduct(t, db, 60.00, 10)

	order, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   string(models.PaymentMethodCashOnDelivery),
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, order.ShippingPrice, 0.001)
	assert.InDelta(t, 132.00, order.TotalPrice, 0.001)
}

func TestCreateOrderBalanceDebitsAndRecordsPayment(t *testing.T) {
	svc, db := newTestOrderService(t)
	user := seedUser(t, db, 27.00)
	product := seedProduct(t, db, 10.00, 20)

	order, err := svc.CreateOrder(user.ID, &CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   string(models.PaymentMethodBalance),
	})
	require.NoError(t, err)
	require.NotNil(t, order.PaidAt)

	var reloadedUser models.User
	require.NoError(t, db.First(&reloadedUser, user.ID).Error)
	assert.InDelta(t, 0.0, reloadedUser.Balance, 0.001)

	var payment models.PaymentResult
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.Equal(t, "balance-"+order.ID.String(), payment.ExternalID)
	assert.Equal(t, "succeeded", payment.Status)
}

func TestConfirmReceiptFromSent(t *testing.T) {
	svc, db := newTestOrderService(t)
	user := seedUser(t, db, 0)

	sentAt := time.Now().Add(-48 * time.Hour)
	order := &models.Order{
		UserID:        user.ID,
		PaymentMethod: models.PaymentMethodCashOnDelivery,
		ItemsPrice:    20, TaxPrice: 2, ShippingPrice: 5, TotalPrice: 27,
		Status: models.OrderStatusSent,
		SentAt: &sentAt,
	}
	require.NoError(t, db.Create(order).Error)

	updated, err := svc.ConfirmReceipt(order.ID, user.ID)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusReceived, updated.Status)
	require.NotNil(t, updated.ReceivedAt)
	// Courier never confirmed, so receipt stamps delivery too
	require.NotNil(t, updated.DeliveredAt)
}

func TestConfirmReceiptOwnerOnly(t *testing.T) {
	svc, db := newTestOrderService(t)
	owner := seedUser(t, db, 0)
	stranger := seedUser(t, db, 0)

	sentAt := time.Now().Add(-time.Hour)
	order := &models.Order{
		UserID:        owner.ID,
		PaymentMethod: models.PaymentMethodCashOnDelivery,
		ItemsPrice:    20, TaxPrice: 2, ShippingPrice: 5, TotalPrice: 27,
		Status: models.OrderStatusSent,
		SentAt: &sentAt,
	}
	require.NoError(t, db.Create(order).Error)

	_, err := svc.ConfirmReceipt(order.ID, stranger.ID)
	require.ErrorIs(t, err, ErrOrderAccessDenied)
}
