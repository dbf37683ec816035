// internal/models/order_status_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func TestSellerFulfilmentTransitions(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusSent, true},
		{OrderStatusShipped, OrderStatusSent, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusSent, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusSent, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusSent, false},
	}

	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to, RoleSeller, false)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.Error(t, err, "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestCustomerCannotDriveFulfilment(t *testing.T) {
	assert.Error(t, CanTransition(OrderStatusPending, OrderStatusProcessing, RoleCustomer, true))
	assert.Error(t, CanTransition(OrderStatusProcessing, OrderStatusShipped, RoleCustomer, true))
	assert.Error(t, CanTransition(OrderStatusShipped, OrderStatusDelivered, RoleCustomer, true))
}

func TestReceiveIsOwnerOnlyFromSent(t *testing.T) {
	assert.NoError(t, CanTransition(OrderStatusSent, OrderStatusReceived, RoleCustomer, true))

	// not the owner
	assert.Error(t, CanTransition(OrderStatusSent, OrderStatusReceived, RoleCustomer, false))
	assert.Error(t, CanTransition(OrderStatusSent, OrderStatusReceived, RoleSeller, false))
	assert.Error(t, CanTransition(OrderStatusSent, OrderStatusReceived, RoleAdmin, false))

	// wrong starting state
	assert.Error(t, CanTransition(OrderStatusShipped, OrderStatusReceived, RoleCustomer, true))
	assert.Error(t, CanTransition(OrderStatusPending, OrderStatusReceived, RoleCustomer, true))
}

func TestCancellationRules(t *testing.T) {
	// admin cancels any non-terminal order
	for _, from := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusSent} {
		assert.NoError(t, CanTransition(from, OrderStatusCancelled, RoleAdmin, false), "admin from %s", from)
	}

	// seller only before shipment
	assert.NoError(t, CanTransition(OrderStatusPending, OrderStatusCancelled, RoleSeller, false))
	assert.NoError(t, CanTransition(OrderStatusProcessing, OrderStatusCancelled, RoleSeller, false))
	assert.Error(t, CanTransition(OrderStatusShipped, OrderStatusCancelled, RoleSeller, false))
	assert.Error(t, CanTransition(OrderStatusSent, OrderStatusCancelled, RoleSeller, false))

	// customers never cancel through the state machine
	assert.Error(t, CanTransition(OrderStatusPending, OrderStatusCancelled, RoleCustomer, true))
}

func TestTerminalStatesDenyEverything(t *testing.T) {
	terminals := []OrderStatus{OrderStatusDelivered, OrderStatusReceived, OrderStatusCancelled}
	targets := []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusSent, OrderStatusDelivered, OrderStatusReceived, OrderStatusCancelled}

	for _, from := range terminals {
		assert.True(t, IsTerminalStatus(from))
		for _, to := range targets {
			assert.Error(t, CanTransition(from, to, RoleAdmin, false), "%s -> %s", from, to)
		}
	}
}

func TestApplyTransitionStampsTimestamps(t *testing.T) {
	order := &Order{Status: OrderStatusProcessing}

	require.NoError(t, order.ApplyTransition(OrderStatusShipped, RoleSeller, false, fixedNow))
	assert.Equal(t, OrderStatusShipped, order.Status)
	require.NotNil(t, order.ShippedAt)
	assert.Equal(t, fixedNow(), *order.ShippedAt)

	require.NoError(t, order.ApplyTransition(OrderStatusSent, RoleSeller, false, fixedNow))
	require.NotNil(t, order.SentAt)
	assert.True(t, order.IsSent())
}

func TestReceiveStampsDeliveredWhenCourierNeverConfirmed(t *testing.T) {
	order := &Order{Status: OrderStatusSent}

	require.NoError(t, order.ApplyTransition(OrderStatusReceived, RoleCustomer, true, fixedNow))
	assert.Equal(t, OrderStatusReceived, order.Status)
	require.NotNil(t, order.ReceivedAt)
	require.NotNil(t, order.DeliveredAt)
	assert.Equal(t, *order.ReceivedAt, *order.DeliveredAt)
}

func TestReceiveKeepsEarlierDeliveredStamp(t *testing.T) {
	delivered := fixedNow().Add(-24 * time.Hour)
	order := &Order{Status: OrderStatusSent, DeliveredAt: &delivered}

	require.NoError(t, order.ApplyTransition(OrderStatusReceived, RoleCustomer, true, fixedNow))
	assert.Equal(t, delivered, *order.DeliveredAt)
	assert.Equal(t, fixedNow(), *order.ReceivedAt)
}

func TestApplyTransitionRejectsInvalidMove(t *testing.T) {
	order := &Order{Status: OrderStatusPending}

	err := order.ApplyTransition(OrderStatusDelivered, RoleSeller, false, fixedNow)
	require.Error(t, err)

	var transitionErr *ErrInvalidTransition
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, OrderStatusPending, transitionErr.From)
	assert.Equal(t, OrderStatusDelivered, transitionErr.To)

	// nothing stamped, status unchanged
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Nil(t, order.DeliveredAt)
}
