// internal/services/wishlist_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/models"
)

var (
	ErrWishlistDuplicate = errors.New("product already in wishlist")
	ErrWishlistNotFound  = errors.New("item is not in the wishlist")
)

type WishlistService struct {
	db *gorm.DB
}

func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{db: db}
}

func (s *WishlistService) GetWishlist(userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := s.db.Preload("Items.Product").Where("user_id = ?", userID).First(&wishlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wishlist = models.Wishlist{UserID: userID}
		if err := s.db.Create(&wishlist).Error; err != nil {
			return nil, fmt.Errorf("failed to create wishlist: %w", err)
		}
		return &wishlist, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wishlist: %w", err)
	}
	return &wishlist, nil
}

func (s *WishlistService) AddItem(userID, productID uuid.UUID) (*models.Wishlist, error) {
	wishlist, err := s.GetWishlist(userID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		return nil, ErrProductNotFound
	}

	for _, item := range wishlist.Items {
		if item.ProductID == productID {
			return nil, ErrWishlistDuplicate
		}
	}

	item := models.WishlistItem{
		WishlistID: wishlist.ID,
		ProductID:  productID,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	return s.GetWishlist(userID)
}

func (s *WishlistService) RemoveItem(userID, productID uuid.UUID) (*models.Wishlist, error) {
	wishlist, err := s.GetWishlist(userID)
	if err != nil {
		return nil, err
	}

	result := s.db.Unscoped().
		Where("wishlist_id = ? AND product_id = ?", wishlist.ID, productID).
		Delete(&models.WishlistItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrWishlistNotFound
	}

	return s.GetWishlist(userID)
}
