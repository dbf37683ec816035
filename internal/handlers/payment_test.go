// internal/handlers/payment_test.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/marketbay/storefront-backend/internal/config"
	"github.com/marketbay/storefront-backend/internal/services"
)

const testWebhookSecret = "whsec_test_secret"

func newWebhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Payment: config.PaymentConfig{StripeWebhookSecret: testWebhookSecret},
	}
	paymentService := services.NewPaymentService(nil, cfg, nil)
	handler := NewPaymentHandler(paymentService)

	router := gin.New()
	router.POST("/v1/payments/webhook", handler.Webhook)
	return router
}

// signPayload builds a Stripe-Signature header the same way the provider does.
func signPayload(payload []byte, secret string, at time.Time) string {
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%x", at.Unix(), sig)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	router := newWebhookRouter()
	payload := []byte(`{"id":"evt_1","api_version":"2022-11-15","type":"payment_intent.succeeded","data":{"object":{}}}`)

	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(payload, "whsec_wrong_secret", time.Now()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "signature verification failed")
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	router := newWebhookRouter()
	payload := []byte(`{"id":"evt_1","api_version":"2022-11-15","type":"payment_intent.succeeded","data":{"object":{}}}`)

	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsStaleSignature(t *testing.T) {
	router := newWebhookRouter()
	payload := []byte(`{"id":"evt_1","api_version":"2022-11-15","type":"payment_intent.succeeded","data":{"object":{}}}`)

	// signed far outside the replay tolerance window
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookAcknowledgesUnhandledEventTypes(t *testing.T) {
	router := newWebhookRouter()
	payload := []byte(`{"id":"evt_2","api_version":"2022-11-15","type":"payment_intent.created","data":{"object":{}}}`)

	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
}
