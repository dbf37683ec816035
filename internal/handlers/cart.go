// internal/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketbay/storefront-backend/internal/i18n"
	"github.com/marketbay/storefront-backend/internal/services"
	"github.com/marketbay/storefront-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, cart)
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	cart, err := h.cartService.AddItem(userID, &req)
	if err != nil {
		h.writeCartError(c, lang, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// PUT /cart/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req services.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	cart, err := h.cartService.UpdateItem(userID, productID, &req)
	if err != nil {
		h.writeCartError(c, lang, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	cart, err := h.cartService.RemoveItem(userID, productID)
	if err != nil {
		h.writeCartError(c, lang, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.ClearCart(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, cart)
}

func (h *CartHandler) writeCartError(c *gin.Context, lang string, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, services.ErrProductUnavailable):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductOutOfStock), nil)
	case errors.Is(err, services.ErrCartItemNotFound):
		utils.NotFoundResponse(c, "cart.item")
	case errors.Is(err, services.ErrStockExceeded):
		utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", i18n.T(lang, i18n.KeyCartStockExceeded), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
