// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the primary key app-side so batch inserts get
// distinct IDs without a round trip per row.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Enums
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleSeller   UserRole = "seller"
	RoleAdmin    UserRole = "admin"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusSent       OrderStatus = "sent"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusReceived   OrderStatus = "received"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodMobileBanking  PaymentMethod = "mobile_banking"
	PaymentMethodBalance        PaymentMethod = "balance"
)

// PriceTolerance is the maximum acceptable drift between two monetary
// amounts that are supposed to be equal.
const PriceTolerance = 0.01

func ValidUserRole(s string) bool {
	switch UserRole(s) {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

func ValidPaymentMethod(s string) bool {
	switch PaymentMethod(s) {
	case PaymentMethodCard, PaymentMethodCashOnDelivery, PaymentMethodMobileBanking, PaymentMethodBalance:
		return true
	}
	return false
}

func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusSent,
		OrderStatusDelivered, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}
