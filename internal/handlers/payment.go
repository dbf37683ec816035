// internal/handlers/payment.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketbay/storefront-backend/internal/i18n"
	"github.com/marketbay/storefront-backend/internal/services"
	"github.com/marketbay/storefront-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /orders/:id/payment-intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
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

	response, err := h.paymentService.CreateOrderPaymentIntent(orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "order")
		case errors.Is(err, services.ErrOrderAccessDenied):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyOrderAccessDenied))
		case errors.Is(err, services.ErrAlreadyPaid):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyPaymentAlreadyPaid))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, response)
}

// POST /payments/balance
func (h *PaymentHandler) PayWithBalance(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.BalancePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	order, err := h.paymentService.PayWithBalance(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "order")
		case errors.Is(err, services.ErrOrderAccessDenied):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyOrderAccessDenied))
		case errors.Is(err, services.ErrAlreadyPaid):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyPaymentAlreadyPaid))
		case errors.Is(err, services.ErrAmountMismatch):
			utils.ErrorResponse(c, http.StatusBadRequest, "AMOUNT_MISMATCH", i18n.T(lang, i18n.KeyPaymentAmountMismatch), nil)
		case errors.Is(err, services.ErrInsufficientBalance):
			utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_BALANCE", i18n.T(lang, i18n.KeyPaymentBalanceLow), nil)
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order, "flags": order.Flags()})
}

// POST /payments/webhook
//
// The provider retries on non-2xx, so only signature failures and parse
// errors are rejected. Replays of an already-applied charge succeed.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if err := h.paymentService.HandleWebhook(payload, sigHeader); err != nil {
		switch {
		case errors.Is(err, services.ErrBadSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		case errors.Is(err, services.ErrAmountMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount mismatch"})
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, services.ErrAlreadyPaid):
			// Different charge against a settled order; acknowledge so the
			// provider stops retrying, operators reconcile out of band.
			c.JSON(http.StatusOK, gin.H{"received": true, "ignored": true})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
