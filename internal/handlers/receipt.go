// internal/handlers/receipt.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketbay/storefront-backend/internal/i18n"
	"github.com/marketbay/storefront-backend/internal/models"
	"github.com/marketbay/storefront-backend/internal/services"
	"github.com/marketbay/storefront-backend/internal/utils"
)

type ReceiptHandler struct {
	receiptService *services.ReceiptService
	orderService   *services.OrderService
}

func NewReceiptHandler(receiptService *services.ReceiptService, orderService *services.OrderService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		orderService:   orderService,
	}
}

// GET /orders/:id/receipt
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
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

	// Visibility follows order visibility
	order, err := h.orderService.GetOrder(orderID, userID, models.UserRole(roleStr))
	if err != nil {
		if errors.Is(err, services.ErrOrderAccessDenied) {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyOrderAccessDenied))
			return
		}
		utils.NotFoundResponse(c, "order")
		return
	}

	receipt, err := h.receiptService.GetByOrder(orderID)
	if err != nil {
		utils.NotFoundResponse(c, "receipt")
		return
	}

	if c.Query("download") == "true" {
		pdf, err := h.receiptService.RenderPDF(c.Request.Context(), receipt, order)
		if err != nil {
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyReceiptRenderFailed))
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+receipt.Number+".pdf")
		c.Data(http.StatusOK, "application/pdf", pdf)
		return
	}

	if c.Query("format") == "html" {
		html, err := h.receiptService.RenderHTML(receipt, order)
		if err != nil {
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyReceiptRenderFailed))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	downloadURL, _ := h.receiptService.DownloadURL(receipt)
	utils.SuccessResponse(c, gin.H{
		"receipt":              receipt,
		"download_receipt_url": downloadURL,
	})
}
