// internal/handlers/catalog.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketbay/storefront-backend/internal/i18n"
	"github.com/marketbay/storefront-backend/internal/models"
	"github.com/marketbay/storefront-backend/internal/services"
	"github.com/marketbay/storefront-backend/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
	storageService *services.StorageService
}

func NewCatalogHandler(catalogService *services.CatalogService, storageService *services.StorageService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		storageService: storageService,
	}
}

// GET /products
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products, total, err := h.catalogService.SearchProducts(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	product, err := h.catalogService.GetProduct(productID)
	if err != nil {
		utils.NotFoundResponse(c, "product")
		return
	}

	utils.SuccessResponse(c, product)
}

// POST /products/:id/rating
func (h *CatalogHandler) RateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req services.RateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	product, err := h.catalogService.RateProduct(productID, &req)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, product)
}

// POST /products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.catalogService.CreateProduct(sellerID, &req)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			utils.NotFoundResponse(c, "category")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, product)
}

// PUT /products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	roleStr, _ := utils.GetUserRoleFromContext(c)

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.catalogService.UpdateProduct(actorID, models.UserRole(roleStr), productID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "product")
		case errors.Is(err, services.ErrCategoryNotFound):
			utils.NotFoundResponse(c, "category")
		case errors.Is(err, services.ErrProductNotYours):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyProductNotYours))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	roleStr, _ := utils.GetUserRoleFromContext(c)

	if err := h.catalogService.DeleteProduct(actorID, models.UserRole(roleStr), productID); err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "product")
		case errors.Is(err, services.ErrProductNotYours):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyProductNotYours))
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// GET /seller/products
func (h *CatalogHandler) ListSellerProducts(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	products, total, err := h.catalogService.ListSellerProducts(sellerID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /seller/products/images
func (h *CatalogHandler) UploadProductImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Missing image file", nil)
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions("products")
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, result)
}

// GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, categories)
}

// POST /admin/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	category, err := h.catalogService.CreateCategory(&req)
	if err != nil {
		if errors.Is(err, services.ErrCategorySlugTaken) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCategorySlugTaken))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, category)
}

// PUT /admin/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID", nil)
		return
	}

	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	category, err := h.catalogService.UpdateCategory(categoryID, &req)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			utils.NotFoundResponse(c, "category")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, category)
}

// DELETE /admin/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID", nil)
		return
	}

	if err := h.catalogService.DeleteCategory(categoryID); err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			utils.NotFoundResponse(c, "category")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
