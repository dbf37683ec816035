// internal/models/order_status.go
package models

import (
	"fmt"
	"time"
)

type nowFunc func() time.Time

// ErrInvalidTransition is returned when a requested status change is not in
// the transition table for the acting role.
type ErrInvalidTransition struct {
	From  OrderStatus
	To    OrderStatus
	Actor UserRole
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid order transition %s -> %s for %s", e.From, e.To, e.Actor)
}

// IsTerminalStatus reports whether no transition leads out of s.
func IsTerminalStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusDelivered, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// sellerTargets is the transition table for sellers and admins acting on
// fulfilment. Cancellation has its own rules below.
var sellerTargets = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusSent},
	OrderStatusShipped:    {OrderStatusSent, OrderStatusDelivered},
	OrderStatusSent:       {OrderStatusDelivered},
}

// CanTransition validates a status change for the given actor. isOwner
// marks the purchasing user acting on their own order; only they may
// confirm receipt. Sellers may cancel until the order ships; admins may
// cancel any non-terminal order.
func CanTransition(from, to OrderStatus, actor UserRole, isOwner bool) error {
	deny := &ErrInvalidTransition{From: from, To: to, Actor: actor}

	if IsTerminalStatus(from) {
		return deny
	}

	if to == OrderStatusCancelled {
		switch actor {
		case RoleAdmin:
			return nil
		case RoleSeller:
			if from == OrderStatusPending || from == OrderStatusProcessing {
				return nil
			}
		}
		return deny
	}

	if to == OrderStatusReceived {
		if isOwner && from == OrderStatusSent {
			return nil
		}
		return deny
	}

	if actor != RoleSeller && actor != RoleAdmin {
		return deny
	}
	for _, t := range sellerTargets[from] {
		if t == to {
			return nil
		}
	}
	return deny
}

// ApplyTransition validates the change and stamps the matching timestamp.
// The caller persists the order; notification dispatch stays outside.
func (o *Order) ApplyTransition(to OrderStatus, actor UserRole, isOwner bool, now nowFunc) error {
	if err := CanTransition(o.Status, to, actor, isOwner); err != nil {
		return err
	}
	ts := now()
	switch to {
	case OrderStatusShipped:
		o.ShippedAt = &ts
	case OrderStatusSent:
		o.SentAt = &ts
	case OrderStatusDelivered:
		o.DeliveredAt = &ts
	case OrderStatusReceived:
		o.ReceivedAt = &ts
		if o.DeliveredAt == nil {
			o.DeliveredAt = &ts
		}
	case OrderStatusCancelled:
		o.CancelledAt = &ts
	}
	o.Status = to
	return nil
}
