package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderpay/internal/server/http/dto"
)

const stripeSignatureHeader = "Stripe-Signature"

// WebhookHandler receives provider notifications.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Stripe handles POST /api/payments/webhook/stripe. The body is passed on
// untouched because the signature covers the exact bytes.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	signature := c.GetHeader(stripeSignatureHeader)
	if signature == "" {
		c.JSON(http.StatusBadRequest, dto.Error("missing Stripe-Signature header"))
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("unable to read body"))
		return
	}

	if err := h.facade.HandleStripeWebhook(c.Request.Context(), signature, payload); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}

// Paypal handles POST /api/payments/webhook/paypal.
func (h *WebhookHandler) Paypal(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil || !json.Valid(payload) {
		c.JSON(http.StatusBadRequest, dto.Error("body must be JSON"))
		return
	}

	if err := h.facade.HandlePaypalWebhook(c.Request.Context(), payload); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}
