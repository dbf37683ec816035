// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ShippingAddress is embedded into the order as a value object.
type ShippingAddress struct {
	FullName   string `json:"full_name" gorm:"size:100"`
	Line1      string `json:"line1" gorm:"size:255"`
	Line2      string `json:"line2" gorm:"size:255"`
	City       string `json:"city" gorm:"size:100"`
	PostalCode string `json:"postal_code" gorm:"size:20"`
	Country    string `json:"country" gorm:"size:100"`
	Phone      string `json:"phone" gorm:"size:30"`
}

// Order is an immutable snapshot of a checkout. Items are frozen copies of
// the purchased lines and are never re-derived from catalog state. Status is
// the single source of truth for payment-independent lifecycle; the legacy
// boolean flags are exposed as derived read-only fields.
type Order struct {
	BaseModel
	UserID          uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`

	ItemsPrice    float64 `json:"items_price" gorm:"type:decimal(10,2);not null"`
	TaxPrice      float64 `json:"tax_price" gorm:"type:decimal(10,2);not null"`
	ShippingPrice float64 `json:"shipping_price" gorm:"type:decimal(10,2);not null"`
	TotalPrice    float64 `json:"total_price" gorm:"type:decimal(10,2);not null"`

	Status OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	PaidAt      *time.Time `json:"paid_at"`
	ShippedAt   *time.Time `json:"shipped_at"`
	SentAt      *time.Time `json:"sent_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	ReceivedAt  *time.Time `json:"received_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	PaymentResult *PaymentResult `json:"payment_result,omitempty" gorm:"foreignKey:OrderID"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Image     string    `json:"image" gorm:"size:512"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`
}

// PaymentResult records the provider-side receipt for a paid order.
// ExternalID is unique so webhook replays cannot double-apply.
type PaymentResult struct {
	BaseModel
	OrderID    uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ExternalID string    `json:"external_id" gorm:"size:255;uniqueIndex;not null"`
	Status     string    `json:"status" gorm:"size:50"`
	PayerEmail string    `json:"payer_email" gorm:"size:255"`
	PaidAt     time.Time `json:"paid_at"`
}

// Derived legacy flags. The status enum and timestamps are authoritative.

func (o *Order) IsPaid() bool      { return o.PaidAt != nil }
func (o *Order) IsSent() bool      { return o.SentAt != nil }
func (o *Order) IsDelivered() bool { return o.DeliveredAt != nil }
func (o *Order) IsReceived() bool  { return o.ReceivedAt != nil }

// Flags returns the derived boolean view of the order for API payloads.
func (o *Order) Flags() map[string]bool {
	return map[string]bool{
		"is_paid":      o.IsPaid(),
		"is_sent":      o.IsSent(),
		"is_delivered": o.IsDelivered(),
		"is_received":  o.IsReceived(),
	}
}

// ComputeTotal returns items + tax + shipping.
func ComputeTotal(itemsPrice, taxPrice, shippingPrice float64) float64 {
	return itemsPrice + taxPrice + shippingPrice
}

// AmountMatches reports whether a claimed amount equals the expected amount
// within PriceTolerance.
func AmountMatches(expected, claimed float64) bool {
	diff := expected - claimed
	if diff < 0 {
		diff = -diff
	}
	return diff <= PriceTolerance
}
