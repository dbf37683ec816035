// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/models"
	"github.com/marketbay/storefront-backend/internal/utils"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductNotYours   = errors.New("product does not belong to this seller")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategorySlugTaken = errors.New("category slug already taken")
)

type CatalogService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	CategoryID      uuid.UUID `json:"category_id" validate:"required"`
	Name            string    `json:"name" validate:"required,min=3,max=255"`
	Description     string    `json:"description" validate:"required,min=10"`
	Price           float64   `json:"price" validate:"required,min=0.01"`
	Stock           int       `json:"stock" validate:"min=0"`
	Images          []string  `json:"images,omitempty"`
	DiscountPercent float64   `json:"discount_percent,omitempty" validate:"omitempty,min=0,max=90"`
}

type UpdateProductRequest struct {
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	Name            string     `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Description     string     `json:"description,omitempty" validate:"omitempty,min=10"`
	Price           *float64   `json:"price,omitempty" validate:"omitempty,min=0.01"`
	Stock           *int       `json:"stock,omitempty" validate:"omitempty,min=0"`
	Images          []string   `json:"images,omitempty"`
	DiscountPercent *float64   `json:"discount_percent,omitempty" validate:"omitempty,min=0,max=90"`
	Active          *bool      `json:"active,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug" validate:"required,min=2,max=120"`
	Description string `json:"description,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description string `json:"description,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) CreateProduct(sellerID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Verify category exists
	var category models.Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		return nil, ErrCategoryNotFound
	}

	product := &models.Product{
		SellerID:        sellerID,
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Stock:           req.Stock,
		Images:          pq.StringArray(req.Images),
		Active:          true,
		DiscountPercent: req.DiscountPercent,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *CatalogService) GetProduct(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").Preload("Seller").
		First(&product, productID).Error; err != nil {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

type RateProductRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// RateProduct folds a new rating into the running aggregate. Both columns
// update in one statement so concurrent ratings cannot lose counts.
func (s *CatalogService) RateProduct(productID uuid.UUID, req *RateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	result := s.db.Model(&models.Product{}).
		Where("id = ? AND active = ?", productID, true).
		Updates(map[string]interface{}{
			"rating":       gorm.Expr("(rating * rating_count + ?) / (rating_count + 1)", req.Rating),
			"rating_count": gorm.Expr("rating_count + 1"),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}

	return s.GetProduct(productID)
}

// UpdateProduct applies a partial update. Admins may edit any product;
// sellers only their own.
func (s *CatalogService) UpdateProduct(actorID uuid.UUID, actorRole models.UserRole, productID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		return nil, ErrProductNotFound
	}

	if actorRole != models.RoleAdmin && product.SellerID != actorID {
		return nil, ErrProductNotYours
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, *req.CategoryID).Error; err != nil {
			return nil, ErrCategoryNotFound
		}
		product.CategoryID = *req.CategoryID
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Images != nil {
		product.Images = pq.StringArray(req.Images)
	}
	if req.DiscountPercent != nil {
		product.DiscountPercent = *req.DiscountPercent
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.db.Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil
}

// DeleteProduct retires a product from the catalog. Existing order
// items keep their snapshot, so this is a soft delete.
func (s *CatalogService) DeleteProduct(actorID uuid.UUID, actorRole models.UserRole, productID uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		return ErrProductNotFound
	}

	if actorRole != models.RoleAdmin && product.SellerID != actorID {
		return ErrProductNotYours
	}

	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

func (s *CatalogService) SearchProducts(params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("active = ?", true).
		Preload("Category")

	if params.Search != "" {
		search := "%" + strings.TrimSpace(params.Search) + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", search, search)
	}

	if params.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", params.Category)
	}

	if params.MinPrice > 0 {
		query = query.Where("price >= ?", params.MinPrice)
	}
	if params.MaxPrice > 0 {
		query = query.Where("price <= ?", params.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "price", "name", "rating", "sold"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *CatalogService) ListSellerProducts(sellerID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("seller_id = ?", sellerID).
		Preload("Category")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "price", "name", "stock", "sold"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *CatalogService) CreateCategory(req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	var existing models.Category
	if err := s.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		return nil, ErrCategorySlugTaken
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Active:      true,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *CatalogService) UpdateCategory(categoryID uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		return nil, ErrCategoryNotFound
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Description != "" {
		category.Description = req.Description
	}
	if req.Active != nil {
		category.Active = *req.Active
	}

	if err := s.db.Save(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return &category, nil
}

func (s *CatalogService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("active = ?", true).Order("name asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) DeleteCategory(categoryID uuid.UUID) error {
	result := s.db.Delete(&models.Category{}, categoryID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
