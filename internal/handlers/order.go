// internal/handlers/order.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/marketbay/storefront-backend/internal/i18n"
	"github.com/marketbay/storefront-backend/internal/models"
	"github.com/marketbay/storefront-backend/internal/services"
	"github.com/marketbay/storefront-backend/internal/utils"
)

type OrderHandler struct {
	orderService        *services.OrderService
	receiptService      *services.ReceiptService
	notificationService *services.NotificationService
	logger              *logrus.Logger
}

func NewOrderHandler(orderService *services.OrderService, receiptService *services.ReceiptService, notificationService *services.NotificationService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService:        orderService,
		receiptService:      receiptService,
		notificationService: notificationService,
		logger:              logger,
	}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	order, err := h.orderService.CreateOrder(userID, &req)
	if err != nil {
		h.writeOrderError(c, lang, err)
		return
	}

	receiptURL := ""
	downloadURL := ""
	receipt, rerr := h.receiptService.GenerateForOrder(c.Request.Context(), order)
	if rerr != nil {
		h.logger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"error":    rerr.Error(),
		}).Warn("receipt generation failed")
	} else {
		receiptURL = h.receiptService.ViewURL(receipt)
		if url, derr := h.receiptService.DownloadURL(receipt); derr == nil {
			downloadURL = url
		}
	}

	// Card orders confirm by email once the webhook settles them
	if order.PaymentMethod != models.PaymentMethodCard {
		h.notificationService.NotifyAsync("order_confirmation", func() error {
			return h.notificationService.SendOrderConfirmationEmail(&order.User, order, receiptURL)
		})
	}

	utils.CreatedResponse(c, gin.H{
		"order":                order,
		"flags":                order.Flags(),
		"receipt_url":          receiptURL,
		"download_receipt_url": downloadURL,
	})
}

// GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	roleStr, _ := utils.GetUserRoleFromContext(c)
	params := utils.GetPaginationParams(c)
	status := c.Query("status")

	orders, total, err := h.orderService.ListOrders(userID, models.UserRole(roleStr), status, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	roleStr, _ := utils.GetUserRoleFromContext(c)

	order, err := h.orderService.GetOrder(orderID, userID, models.UserRole(roleStr))
	if err != nil {
		h.writeOrderError(c, lang, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order": order,
		"flags": order.Flags(),
	})
}

// PUT /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	roleStr, _ := utils.GetUserRoleFromContext(c)

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	order, err := h.orderService.UpdateStatus(orderID, userID, models.UserRole(roleStr), &req)
	if err != nil {
		h.writeOrderError(c, lang, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order": order,
		"flags": order.Flags(),
	})
}

// PUT /orders/:id/receive
func (h *OrderHandler) ConfirmReceipt(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	order, err := h.orderService.ConfirmReceipt(orderID, userID)
	if err != nil {
		h.writeOrderError(c, lang, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order": order,
		"flags": order.Flags(),
	})
}

func (h *OrderHandler) writeOrderError(c *gin.Context, lang string, err error) {
	var transitionErr *models.ErrInvalidTransition

	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		utils.NotFoundResponse(c, "order")
	case errors.Is(err, services.ErrOrderAccessDenied):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyOrderAccessDenied))
	case errors.Is(err, services.ErrOrderEmpty):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyOrderEmpty), nil)
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, services.ErrProductUnavailable):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductOutOfStock), nil)
	case errors.Is(err, services.ErrStockConflict):
		utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", i18n.T(lang, i18n.KeyOrderStockConflict), nil)
	case errors.Is(err, services.ErrPriceMismatch):
		utils.ErrorResponse(c, http.StatusBadRequest, "PRICE_MISMATCH", i18n.T(lang, i18n.KeyOrderPriceMismatch), nil)
	case errors.Is(err, services.ErrInsufficientBalance):
		utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_BALANCE", i18n.T(lang, i18n.KeyPaymentBalanceLow), nil)
	case errors.As(err, &transitionErr):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_TRANSITION", i18n.T(lang, i18n.KeyOrderBadTransition, transitionErr.From, transitionErr.To), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
