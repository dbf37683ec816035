// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/models"
	"github.com/marketbay/storefront-backend/internal/utils"
)

var (
	ErrCartItemNotFound   = errors.New("item is not in the cart")
	ErrStockExceeded      = errors.New("requested quantity exceeds available stock")
	ErrProductUnavailable = errors.New("product is not available")
)

type CartService struct {
	db *gorm.DB
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetCart returns the user's cart, creating an empty one the first time.
func (s *CartService) GetCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := s.db.Create(&cart).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return &cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return &cart, nil
}

// AddItem merges qty of the product into the cart. The resulting line
// quantity is validated against current stock, not just the increment.
func (s *CartService) AddItem(userID uuid.UUID, req *AddCartItemRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		return nil, ErrProductNotFound
	}
	if !product.Active {
		return nil, ErrProductUnavailable
	}

	lineQty := cart.MergeItem(&product, req.Quantity)
	if lineQty > product.Stock {
		return nil, ErrStockExceeded
	}

	if err := s.saveCart(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem sets the line quantity for a product already in the cart.
// Quantity zero removes the line.
func (s *CartService) UpdateItem(userID, productID uuid.UUID, req *UpdateCartItemRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	if cart.FindItem(productID) == nil {
		return nil, ErrCartItemNotFound
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		return nil, ErrProductNotFound
	}

	if req.Quantity > product.Stock {
		return nil, ErrStockExceeded
	}

	cart.SetItem(&product, req.Quantity)

	if err := s.saveCart(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveItem(userID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	if cart.FindItem(productID) == nil {
		return nil, ErrCartItemNotFound
	}

	cart.RemoveItem(productID)

	if err := s.saveCart(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) ClearCart(userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	cart.Items = nil
	cart.RecomputeTotals()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}
		return tx.Model(cart).Updates(map[string]interface{}{
			"total_items": 0,
			"total_price": 0,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// saveCart persists the full line-item set and the recomputed totals in
// one transaction. Replacing the association keeps removals in sync.
func (s *CartService) saveCart(cart *models.Cart) error {
	cart.RecomputeTotals()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to replace cart items: %w", err)
		}
		for i := range cart.Items {
			cart.Items[i].CartID = cart.ID
			cart.Items[i].ID = uuid.Nil
			if err := tx.Create(&cart.Items[i]).Error; err != nil {
				return fmt.Errorf("failed to save cart item: %w", err)
			}
		}
		return tx.Model(cart).Updates(map[string]interface{}{
			"total_items": cart.TotalItems,
			"total_price": cart.TotalPrice,
		}).Error
	})
}
