// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/config"
	"github.com/marketbay/storefront-backend/internal/models"
	"github.com/marketbay/storefront-backend/internal/utils"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderEmpty          = errors.New("order must contain at least one item")
	ErrOrderAccessDenied   = errors.New("no access to this order")
	ErrStockConflict       = errors.New("insufficient stock for one or more items")
	ErrPriceMismatch       = errors.New("claimed total does not match computed total")
	ErrInsufficientBalance = errors.New("insufficient account balance")
	ErrInvalidPayment      = errors.New("invalid payment method")
)

type OrderService struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"omitempty,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"required"`

	// FromCart builds the line list from the user's cart instead of
	// explicit items.
	FromCart bool `json:"from_cart,omitempty"`

	// Optional client-side total, checked against the server-computed
	// total when present.
	ClaimedTotal float64 `json:"claimed_total,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"omitempty"`

	// Legacy admin overrides. The status enum and timestamps stay
	// authoritative; these map directly onto PaidAt/DeliveredAt.
	IsPaid      *bool `json:"is_paid,omitempty"`
	IsDelivered *bool `json:"is_delivered,omitempty"`
}

func NewOrderService(db *gorm.DB, cfg *config.Config, notifications *NotificationService) *OrderService {
	return &OrderService{
		db:            db,
		cfg:           cfg,
		notifications: notifications,
	}
}

// CreateOrder snapshots the requested lines at current catalog prices,
// decrements stock atomically, and debits the internal balance when that
// is the chosen payment method. Everything runs in one transaction; a
// stock or balance conflict rolls the whole order back.
func (s *OrderService) CreateOrder(userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.FromCart {
		var cart models.Cart
		if err := s.db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			return nil, ErrOrderEmpty
		}
		req.Items = req.Items[:0]
		for _, li := range cart.Items {
			req.Items = append(req.Items, OrderItemRequest{ProductID: li.ProductID, Quantity: li.Quantity})
		}
	}
	if len(req.Items) == 0 {
		return nil, ErrOrderEmpty
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPayment
	}
	method := models.PaymentMethod(req.PaymentMethod)

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Snapshot lines at authoritative prices
		items := make([]models.OrderItem, 0, len(req.Items))
		itemsPrice := 0.0
		for _, line := range req.Items {
			var product models.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				return ErrProductNotFound
			}
			if !product.Active {
				return ErrProductUnavailable
			}

			unitPrice := product.EffectivePrice()
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Image:     product.FirstImage(),
				Quantity:  line.Quantity,
				UnitPrice: unitPrice,
			})
			itemsPrice += unitPrice * float64(line.Quantity)

			// Conditional decrement guards against oversell under
			// concurrent checkouts.
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, line.Quantity).
				Updates(map[string]interface{}{
					"stock": gorm.Expr("stock - ?", line.Quantity),
					"sold":  gorm.Expr("sold + ?", line.Quantity),
				})
			if result.Error != nil {
				return fmt.Errorf("failed to reserve stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrStockConflict
			}
		}

		taxPrice := round2(itemsPrice * s.cfg.Pricing.TaxRatePercent / 100)
		shippingPrice := s.cfg.Pricing.FlatShippingPrice
		if itemsPrice >= s.cfg.Pricing.FreeShippingOver {
			shippingPrice = 0
		}
		totalPrice := models.ComputeTotal(itemsPrice, taxPrice, shippingPrice)

		if req.ClaimedTotal > 0 && !models.AmountMatches(totalPrice, req.ClaimedTotal) {
			return ErrPriceMismatch
		}

		order = &models.Order{
			UserID:          userID,
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   method,
			ItemsPrice:      round2(itemsPrice),
			TaxPrice:        taxPrice,
			ShippingPrice:   shippingPrice,
			TotalPrice:      round2(totalPrice),
			Status:          models.OrderStatusPending,
		}

		// Card payments stay unpaid until the webhook confirms; every
		// other method settles at checkout.
		if method != models.PaymentMethodCard {
			now := time.Now()
			order.PaidAt = &now
		}

		if method == models.PaymentMethodBalance {
			result := tx.Model(&models.User{}).
				Where("id = ? AND balance >= ?", userID, order.TotalPrice).
				UpdateColumn("balance", gorm.Expr("balance - ?", order.TotalPrice))
			if result.Error != nil {
				return fmt.Errorf("failed to debit balance: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrInsufficientBalance
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if method == models.PaymentMethodBalance {
			payment := &models.PaymentResult{
				OrderID:    order.ID,
				ExternalID: balanceExternalID(order.ID),
				Status:     "succeeded",
				PayerEmail: user.Email,
				PaidAt:     *order.PaidAt,
			}
			if err := tx.Create(payment).Error; err != nil {
				return fmt.Errorf("failed to record payment result: %w", err)
			}
		}

		// Drop purchased lines from the cart
		var cart models.Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err == nil {
			for _, line := range req.Items {
				tx.Unscoped().
					Where("cart_id = ? AND product_id = ?", cart.ID, line.ProductID).
					Delete(&models.CartItem{})
			}
			var remaining []models.CartItem
			tx.Where("cart_id = ?", cart.ID).Find(&remaining)
			cart.Items = remaining
			cart.RecomputeTotals()
			tx.Model(&cart).Updates(map[string]interface{}{
				"total_items": cart.TotalItems,
				"total_price": cart.TotalPrice,
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	order.User = user
	return order, nil
}

// GetOrder enforces visibility: owners and admins see the order; sellers
// see orders that contain at least one of their products.
func (s *OrderService) GetOrder(orderID, actorID uuid.UUID, actorRole models.UserRole) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Preload("PaymentResult").Preload("User").
		First(&order, orderID).Error; err != nil {
		return nil, ErrOrderNotFound
	}

	if order.UserID == actorID || actorRole == models.RoleAdmin {
		return &order, nil
	}

	if actorRole == models.RoleSeller {
		var count int64
		s.db.Model(&models.OrderItem{}).
			Joins("JOIN products ON products.id = order_items.product_id").
			Where("order_items.order_id = ? AND products.seller_id = ?", orderID, actorID).
			Count(&count)
		if count > 0 {
			return &order, nil
		}
	}

	return nil, ErrOrderAccessDenied
}

func (s *OrderService) ListOrders(actorID uuid.UUID, actorRole models.UserRole, status string, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("Items")

	switch actorRole {
	case models.RoleAdmin:
		// all orders
	case models.RoleSeller:
		query = query.
			Joins("JOIN order_items ON order_items.order_id = orders.id").
			Joins("JOIN products ON products.id = order_items.product_id").
			Where("products.seller_id = ?", actorID).
			Distinct("orders.*")
	default:
		query = query.Where("orders.user_id = ?", actorID)
	}

	if status != "" && models.ValidOrderStatus(status) {
		query = query.Where("orders.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_price", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus drives the lifecycle state machine. Cancellation restores
// stock and refunds a balance payment; the sold counter is never wound
// back so sales totals stay monotonic.
func (s *OrderService) UpdateStatus(orderID, actorID uuid.UUID, actorRole models.UserRole, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.Status == "" && req.IsPaid == nil && req.IsDelivered == nil {
		return nil, &models.ErrInvalidTransition{Actor: actorRole}
	}
	if req.Status != "" && !models.ValidOrderStatus(req.Status) {
		return nil, &models.ErrInvalidTransition{To: models.OrderStatus(req.Status), Actor: actorRole}
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Preload("User").First(&order, orderID).Error; err != nil {
			return ErrOrderNotFound
		}

		isOwner := order.UserID == actorID
		if !isOwner && actorRole != models.RoleAdmin && actorRole != models.RoleSeller {
			return ErrOrderAccessDenied
		}
		if actorRole == models.RoleSeller && !s.sellerInOrder(tx, orderID, actorID) {
			return ErrOrderAccessDenied
		}
		if (req.IsPaid != nil || req.IsDelivered != nil) && actorRole != models.RoleAdmin {
			return ErrOrderAccessDenied
		}

		if req.Status != "" {
			target := models.OrderStatus(req.Status)
			if err := order.ApplyTransition(target, actorRole, isOwner, time.Now); err != nil {
				return err
			}
			if target == models.OrderStatusCancelled {
				if err := s.releaseOrder(tx, &order); err != nil {
					return err
				}
			}
		}

		applyLegacyFlags(&order, req)

		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyAsync("order_status", func() error {
		return s.notifications.SendOrderStatusEmail(&order.User, &order)
	})

	return &order, nil
}

// ConfirmReceipt is the owner-only shortcut for marking an order received.
func (s *OrderService) ConfirmReceipt(orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Preload("User").First(&order, orderID).Error; err != nil {
			return ErrOrderNotFound
		}
		if order.UserID != userID {
			return ErrOrderAccessDenied
		}
		if err := order.ApplyTransition(models.OrderStatusReceived, models.RoleCustomer, true, time.Now); err != nil {
			return err
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyAsync("order_status", func() error {
		return s.notifications.SendOrderStatusEmail(&order.User, &order)
	})

	return &order, nil
}

// releaseOrder returns reserved stock and refunds a settled balance
// payment when an order is cancelled.
func (s *OrderService) releaseOrder(tx *gorm.DB, order *models.Order) error {
	for _, item := range order.Items {
		if err := tx.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	if order.PaymentMethod == models.PaymentMethodBalance && order.IsPaid() {
		if err := tx.Model(&models.User{}).
			Where("id = ?", order.UserID).
			UpdateColumn("balance", gorm.Expr("balance + ?", order.TotalPrice)).Error; err != nil {
			return fmt.Errorf("failed to refund balance: %w", err)
		}
	}

	return nil
}

// applyLegacyFlags maps the boolean admin overrides onto the timestamps
// the derived flags are computed from.
func applyLegacyFlags(order *models.Order, req *UpdateOrderStatusRequest) {
	now := time.Now()
	if req.IsPaid != nil {
		if *req.IsPaid && !order.IsPaid() {
			order.PaidAt = &now
		} else if !*req.IsPaid {
			order.PaidAt = nil
		}
	}
	if req.IsDelivered != nil {
		if *req.IsDelivered && !order.IsDelivered() {
			order.DeliveredAt = &now
		} else if !*req.IsDelivered {
			order.DeliveredAt = nil
		}
	}
}

func (s *OrderService) sellerInOrder(tx *gorm.DB, orderID, sellerID uuid.UUID) bool {
	var count int64
	tx.Model(&models.OrderItem{}).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ? AND products.seller_id = ?", orderID, sellerID).
		Count(&count)
	return count > 0
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
