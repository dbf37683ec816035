// internal/services/payment_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/config"
	"github.com/marketbay/storefront-backend/internal/models"
	"github.com/marketbay/storefront-backend/internal/utils"
)

var (
	ErrAlreadyPaid    = errors.New("order already paid")
	ErrAmountMismatch = errors.New("paid amount does not match order total")
	ErrBadSignature   = errors.New("webhook signature verification failed")
	ErrNotCardOrder   = errors.New("order is not a card payment")
)

type PaymentService struct {
	db            *gorm.DB
	config        *config.Config
	notifications *NotificationService
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type BalancePaymentRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Amount  float64   `json:"amount" validate:"required,gt=0"`
}

func NewPaymentService(db *gorm.DB, config *config.Config, notifications *NotificationService) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		db:            db,
		config:        config,
		notifications: notifications,
	}
}

// CreateOrderPaymentIntent opens a card payment for an unpaid order. The
// order and user ids ride along as metadata so the webhook can find the
// order without trusting the client.
func (s *PaymentService) CreateOrderPaymentIntent(orderID, userID uuid.UUID) (*PaymentIntentResponse, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	if order.PaymentMethod != models.PaymentMethodCard {
		return nil, ErrNotCardOrder
	}
	if order.IsPaid() {
		return nil, ErrAlreadyPaid
	}

	// Convert amount to cents for Stripe
	amountInCents := int64(order.TotalPrice * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(s.config.Payment.Currency),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("user_id", order.UserID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// PayWithBalance settles an unpaid order from the user's internal balance.
// The declared amount must match the order total within tolerance and the
// debit only happens when the balance covers it. A synthetic payment
// result keyed on the order id makes repeated calls no-ops.
func (s *PaymentService) PayWithBalance(userID uuid.UUID, req *BalancePaymentRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&order, req.OrderID).Error; err != nil {
			return ErrOrderNotFound
		}
		if order.UserID != userID {
			return ErrOrderAccessDenied
		}
		if order.IsPaid() {
			return ErrAlreadyPaid
		}
		if !models.AmountMatches(order.TotalPrice, req.Amount) {
			return ErrAmountMismatch
		}

		result := tx.Model(&models.User{}).
			Where("id = ? AND balance >= ?", userID, order.TotalPrice).
			UpdateColumn("balance", gorm.Expr("balance - ?", order.TotalPrice))
		if result.Error != nil {
			return fmt.Errorf("failed to debit balance: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		now := time.Now()
		payment := &models.PaymentResult{
			OrderID:    order.ID,
			ExternalID: balanceExternalID(order.ID),
			Status:     "succeeded",
			PayerEmail: order.User.Email,
			PaidAt:     now,
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to record payment result: %w", err)
		}

		order.PaidAt = &now
		return tx.Model(&order).UpdateColumn("paid_at", now).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyAsync("order_status", func() error {
		return s.notifications.SendOrderStatusEmail(&order.User, &order)
	})

	return &order, nil
}

// balanceExternalID is the synthetic provider id for wallet payments, one
// per order so the unique index rejects double settlement.
func balanceExternalID(orderID uuid.UUID) string {
	return "balance-" + orderID.String()
}

// HandleWebhook verifies the provider signature and applies successful
// card payments. Unknown event types are acknowledged and skipped.
func (s *PaymentService) HandleWebhook(payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.config.Payment.StripeWebhookSecret)
	if err != nil {
		return ErrBadSignature
	}

	if event.Type != "payment_intent.succeeded" {
		return nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	orderIDStr := pi.Metadata["order_id"]
	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		return fmt.Errorf("webhook payment intent missing order_id metadata")
	}

	payerEmail := ""
	if pi.ReceiptEmail != "" {
		payerEmail = pi.ReceiptEmail
	}

	return s.ApplyExternalPayment(orderID, pi.ID, string(pi.Status), payerEmail, float64(pi.Amount)/100, time.Now())
}

// ApplyExternalPayment settles an order from a provider confirmation.
// The unique external id makes replays no-ops, and the amount must match
// the order total within tolerance.
func (s *PaymentService) ApplyExternalPayment(orderID uuid.UUID, externalID, status, payerEmail string, amount float64, paidAt time.Time) error {
	var order models.Order
	applied := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&order, orderID).Error; err != nil {
			return ErrOrderNotFound
		}

		// Replayed confirmation for the same charge is a no-op
		var existing models.PaymentResult
		if err := tx.Where("external_id = ?", externalID).First(&existing).Error; err == nil {
			return nil
		}

		if order.IsPaid() {
			return ErrAlreadyPaid
		}

		if !models.AmountMatches(order.TotalPrice, amount) {
			return ErrAmountMismatch
		}

		result := &models.PaymentResult{
			OrderID:    order.ID,
			ExternalID: externalID,
			Status:     status,
			PayerEmail: payerEmail,
			PaidAt:     paidAt,
		}
		if err := tx.Create(result).Error; err != nil {
			return fmt.Errorf("failed to record payment result: %w", err)
		}

		order.PaidAt = &paidAt
		applied = true
		return tx.Model(&order).UpdateColumn("paid_at", paidAt).Error
	})
	if err != nil {
		return err
	}

	// Replays settle quietly, the customer was already told once.
	if applied {
		s.notifications.NotifyAsync("order_status", func() error {
			return s.notifications.SendOrderStatusEmail(&order.User, &order)
		})
	}

	return nil
}
