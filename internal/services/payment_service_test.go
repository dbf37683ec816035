// internal/services/payment_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/models"
)

func seedUnpaidOrder(t *testing.T, db *gorm.DB, user *models.User, total float64) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:        user.ID,
		PaymentMethod: models.PaymentMethodCard,
		ItemsPrice:    total - 7, TaxPrice: 2, ShippingPrice: 5, TotalPrice: total,
		Status: models.OrderStatusPending,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestApplyExternalPaymentSettlesOrder(t *testing.T) {
	svc, db := newTestPaymentService(t)
	user := seedUser(t, db, 0)
	order := seedUnpaidOrder(t, db, user, 27.00)

	paidAt := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	err := svc.ApplyExternalPayment(order.ID, "pi_3Abc", "succeeded", user.Email, 27.00, paidAt)
	require.NoError(t, err)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	require.NotNil(t, reloaded.PaidAt)
	assert.WithinDuration(t, paidAt, *reloaded.PaidAt, time.Second)
}

func TestApplyExternalPaymentReplayIsNoOp(t *testing.T) {
	svc, db := newTestPaymentService(t)
	user := seedUser(t, db, 0)
	order := seedUnpaidOrder(t, db, user, 27.00)

	firstAt := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, svc.ApplyExternalPayment(order.ID, "pi_3Abc", "succeeded", user.Email, 27.00, firstAt))

	// Provider retries the same charge a day later
	replayAt := firstAt.Add(24 * time.Hour)
	require.NoError(t, svc.ApplyExternalPayment(order.ID, "pi_3Abc", "succeeded", user.Email, 27.00, replayAt))

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	require.NotNil(t, reloaded.PaidAt)
	assert.WithinDuration(t, firstAt, *reloaded.PaidAt, time.Second)

	var results int64
	db.Model(&models.PaymentResult{}).Where("order_id = ?", order.ID).Count(&results)
	assert.Equal(t, int64(1), results)
}

func TestApplyExternalPaymentSecondChargeRejected(t *testing.T) {
	svc, db := newTestPaymentService(t)
	user := seedUser(t, db, 0)
	order := seedUnpaidOrder(t, db, user, 27.00)

	at := time.Now()
	require.NoError(t, svc.ApplyExternalPayment(order.ID, "pi_3Abc", "succeeded", user.Email, 27.00, at))

	err := svc.ApplyExternalPayment(order.ID, "pi_9Xyz", "succeeded", user.Email, 27.00, at)
	require.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestApplyExternalPaymentAmountMismatch(t *testing.T) {
	svc, db := newTestPaymentService(t)
	user := seedUser(t, db, 0)
	order := seedUnpaidOrder(t, db, user, 27.00)

	err := svc.ApplyExternalPayment(order.ID, "pi_3Abc", "succeeded", user.Email, 19.99, time.Now())
	require.ErrorIs(t, err, ErrAmountMismatch)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Nil(t, reloaded.PaidAt)
}

func TestApplyExternalPaymentUnknownOrder(t *testing.T) {
	svc, _ := newTestPaymentService(t)
	err := svc.ApplyExternalPayment(uuid.New(), "pi_3Abc", "succeeded", "x@example.com", 10, time.Now())
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPayWithBalanceInsufficientFundsLeavesBalance(t *testing.T) {
	svc, db := newTestPaymentService(t)
	user := seedUser(t, db, 10.00)
	order := seedUnpaidOrder(t, db, user, 27.00)

	_, err := svc.PayWithBalance(user.ID, &BalancePaymentRequest{OrderID: order.ID, Amount: 27.00})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	var reloadedUser models.User
	require.NoError(t, db.First(&reloadedUser, user.ID).Error)
	assert.InDelta(t, 10.00, reloadedUser.Balance, 0.001)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Nil(t, reloaded.PaidAt)

	var results int64
	db.Model(&models.PaymentResult{}).Where("order_id = ?", order.ID).Count(&results)
	assert.Zero(t, results)
}

func TestPayWithBalanceExactBalanceGoesToZero(t *testing.T) {
	svc, db := newTestPaymentService(t)
	user := seedUser(t, db, 27.00)
	order := seedUnpaidOrder(t, db, user, 27.00)

	paid, err := svc.PayWithBalance(user.ID, &BalancePaymentRequest{OrderID: order.ID, Amount: 27.00})
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)

	var reloadedUser models.User
	require.NoError(t, db.First(&reloadedUser, user.ID).Error)
	assert.InDelta(t, 0.0, reloadedUser.Balance, 0.001)

	var payment models.PaymentResult
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.Equal(t, "balance-"+order.ID.String(), payment.ExternalID)
}

func TestPayWithBalanceTwiceIsRejected(t *testing.T) {
	svc, db := newTestPaymentService(t)
	user := seedUser(t, db, 60.00)
	order := seedUnpaidOrder(t, db, user, 27.00)

	_, err := svc.PayWithBalance(user.ID, &BalancePaymentRequest{OrderID: order.ID, Amount: 27.00})
	require.NoError(t, err)

	_, err = svc.PayWithBalance(user.ID, &BalancePaymentRequest{OrderID: order.ID, Amount: 27.00})
	require.ErrorIs(t, err, ErrAlreadyPaid)

	var reloadedUser models.User
	require.NoError(t, db.First(&reloadedUser, user.ID).Error)
	assert.InDelta(t, 33.00, reloadedUser.Balance, 0.001)
}

func TestPayWithBalanceAmountMismatch(t *testing.T) {
	svc, db := newTestPaymentService(t)
	user := seedUser(t, db, 100.00)
	order := seedUnpaidOrder(t, db, user, 27.00)

	_, err := svc.PayWithBalance(user.ID, &BalancePaymentRequest{OrderID: order.ID, Amount: 26.50})
	require.ErrorIs(t, err, ErrAmountMismatch)
}

func TestPayWithBalanceOwnerOnly(t *testing.T) {
	svc, db := newTestPaymentService(t)
	owner := seedUser(t, db, 100.00)
	stranger := seedUser(t, db, 100.00)
	order := seedUnpaidOrder(t, db, owner, 27.00)

	_, err := svc.PayWithBalance(stranger.ID, &BalancePaymentRequest{OrderID: order.ID, Amount: 27.00})
	require.ErrorIs(t, err, ErrOrderAccessDenied)
}
