package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/services"
	"golang.org/x/exp/slog"
)

// WebhookHandler processes payment-provider callbacks. Delivery is
// asynchronous and at-least-once; the ledger's idempotency on the
// provider transaction id makes redelivery safe.
type WebhookHandler struct {
	ledgerService   services.LedgerService
	secret          string
	signatureHeader string
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(ledgerService services.LedgerService, secret, signatureHeader string) *WebhookHandler {
	if signatureHeader == "" {
		signatureHeader = "X-Payment-Signature"
	}
	return &WebhookHandler{
		ledgerService:   ledgerService,
		secret:          secret,
		signatureHeader: signatureHeader,
	}
}

// HandlePaymentEvent handles POST /webhooks/payment
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read request body"})
		return
	}

	if !h.isValidSignature(c.GetHeader(h.signatureHeader), body) {
		slog.Warn("Webhook rejected: invalid signature", "remoteAddr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var event models.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	result, err := h.ledgerService.CreditFromPaymentEvent(c.Request.Context(), event.UserKey, event.PointsAmount, event.ProviderTransactionID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	// A duplicate delivery lands here too, with the originally committed
	// result, so the provider always sees success and stops redelivering.
	c.JSON(http.StatusOK, result)
}

// isValidSignature checks the hex-encoded HMAC-SHA256 of the raw body
func (h *WebhookHandler) isValidSignature(signature string, body []byte) bool {
	if h.secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
