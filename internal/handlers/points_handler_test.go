package handlers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/restoq/foodsupply-backend/internal/handlers"
	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/repositories/memory"
	"github.com/restoq/foodsupply-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

func newTestRouter(t *testing.T) (*gin.Engine, *models.Account) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.New()
	account := &models.Account{ExternalAuthID: "auth0|demo"}
	require.NoError(t, repo.Create(context.Background(), account))

	ledgerService := services.NewLedgerService(repo, repo)
	pointsHandler := handlers.NewPointsHandler(ledgerService)
	webhookHandler := handlers.NewWebhookHandler(ledgerService, testWebhookSecret, "X-Payment-Signature")

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/points/purchase", pointsHandler.PurchasePoints)
	v1.POST("/points/deduct", pointsHandler.DeductPoints)
	v1.GET("/points/:userKey/balance", pointsHandler.GetBalance)
	v1.GET("/points/:userKey/transactions", pointsHandler.GetTransactionHistory)
	v1.POST("/webhooks/payment", webhookHandler.HandlePaymentEvent)

	return router, account
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func doWebhook(router *gin.Engine, event models.PaymentEvent, secret string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(event)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Payment-Signature", signBody(secret, payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPurchaseEndpoint_Success(t *testing.T) {
	router, account := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/points/purchase", gin.H{
		"userKey":       account.ID.Hex(),
		"points":        100,
		"paymentAmount": 100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result models.LedgerResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(100), result.NewBalance)
	assert.NotEmpty(t, result.TransactionID)
}

func TestPurchaseEndpoint_PaymentMismatch(t *testing.T) {
	router, account := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/points/purchase", gin.H{
		"userKey":       account.ID.Hex(),
		"points":        100,
		"paymentAmount": 90,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeductEndpoint_InsufficientBalance(t *testing.T) {
	router, account := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/points/purchase", gin.H{
		"userKey":       account.ID.Hex(),
		"points":        50,
		"paymentAmount": 50,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/points/deduct", gin.H{
		"userKey": account.ID.Hex(),
		"amount":  60,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 50, body["balance"])
	assert.EqualValues(t, 60, body["required"])
	assert.EqualValues(t, 10, body["shortfall"])
}

func TestBalanceEndpoint_UnknownAccount(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/points/nobody/balance", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryEndpoint_InvalidLimit(t *testing.T) {
	router, account := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/points/"+account.ID.Hex()+"/transactions?limit=0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookEndpoint_InvalidSignature(t *testing.T) {
	router, account := newTestRouter(t)

	event := models.PaymentEvent{
		UserKey:               account.ID.Hex(),
		PointsAmount:          500,
		ProviderTransactionID: "prov-tx-1",
	}
	w := doWebhook(router, event, "wrong-secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookEndpoint_CreditAndRedelivery(t *testing.T) {
	router, account := newTestRouter(t)

	event := models.PaymentEvent{
		UserKey:               account.ID.Hex(),
		PointsAmount:          500,
		ProviderTransactionID: "prov-tx-1",
	}

	w := doWebhook(router, event, testWebhookSecret)
	require.Equal(t, http.StatusOK, w.Code)
	var first models.LedgerResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, int64(500), first.NewBalance)

	// Redelivery: still 200, same transaction, no second credit
	w = doWebhook(router, event, testWebhookSecret)
	require.Equal(t, http.StatusOK, w.Code)
	var second models.LedgerResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, int64(500), second.NewBalance)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/points/"+account.ID.Hex()+"/balance", nil)
	balanceRec := httptest.NewRecorder()
	router.ServeHTTP(balanceRec, req)
	require.Equal(t, http.StatusOK, balanceRec.Code)
	var balanceBody map[string]int64
	require.NoError(t, json.Unmarshal(balanceRec.Body.Bytes(), &balanceBody))
	assert.Equal(t, int64(500), balanceBody["balance"])
}

func TestWebhookEndpoint_UnknownAccount(t *testing.T) {
	router, _ := newTestRouter(t)

	event := models.PaymentEvent{
		UserKey:               "nobody",
		PointsAmount:          500,
		ProviderTransactionID: "prov-tx-2",
	}
	w := doWebhook(router, event, testWebhookSecret)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
