// internal/handlers/order_test.go
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/storefront-backend/internal/models"
	"github.com/marketbay/storefront-backend/internal/services"
	"github.com/marketbay/storefront-backend/internal/utils"
)

func newOrderErrorRecorder(t *testing.T, err error) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewOrderHandler(nil, nil, nil, logrus.New())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/orders", nil)

	handler.writeOrderError(c, "en", err)

	var body utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

// Business-rule violations are the caller's fault and come back as 400,
// with the error code telling the rules apart.
func TestOrderErrorsAreBadRequests(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{
			name: "insufficient stock",
			err:  services.ErrStockConflict,
			code: "INSUFFICIENT_STOCK",
		},
		{
			name: "price mismatch",
			err:  services.ErrPriceMismatch,
			code: "PRICE_MISMATCH",
		},
		{
			name: "insufficient balance",
			err:  services.ErrInsufficientBalance,
			code: "INSUFFICIENT_BALANCE",
		},
		{
			name: "seller skips ahead to delivered",
			err: &models.ErrInvalidTransition{
				From:  models.OrderStatusProcessing,
				To:    models.OrderStatusDelivered,
				Actor: models.RoleSeller,
			},
			code: "INVALID_TRANSITION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := newOrderErrorRecorder(t, tt.err)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestOrderErrorsKeepResourceStatuses(t *testing.T) {
	w, _ := newOrderErrorRecorder(t, services.ErrOrderNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = newOrderErrorRecorder(t, services.ErrOrderAccessDenied)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
