package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/restoq/foodsupply-backend/internal/ledger"
	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/services"
)

// PointsHandler handles points-ledger HTTP requests
type PointsHandler struct {
	ledgerService services.LedgerService
}

// NewPointsHandler creates a new PointsHandler
func NewPointsHandler(ledgerService services.LedgerService) *PointsHandler {
	return &PointsHandler{
		ledgerService: ledgerService,
	}
}

// PurchasePoints handles POST /points/purchase
func (h *PointsHandler) PurchasePoints(c *gin.Context) {
	var req models.PurchasePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ledgerService.PurchasePoints(c.Request.Context(), req.UserKey, req.Points, req.PaymentAmount, req.OperationRef)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeductPoints handles POST /points/deduct
func (h *PointsHandler) DeductPoints(c *gin.Context) {
	var req models.DeductPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ledgerService.DeductPoints(c.Request.Context(), req.UserKey, req.Amount, req.Description, req.OperationRef)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBalance handles GET /points/:userKey/balance
func (h *PointsHandler) GetBalance(c *gin.Context) {
	balance, err := h.ledgerService.GetBalance(c.Request.Context(), c.Param("userKey"))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GetTransactionHistory handles GET /points/:userKey/transactions
func (h *PointsHandler) GetTransactionHistory(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}

	transactions, err := h.ledgerService.GetTransactionHistory(c.Request.Context(), c.Param("userKey"), limit)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// respondLedgerError maps the ledger error taxonomy to HTTP responses.
// InsufficientBalance is a terminal client error: callers must not retry
// it, so it gets a 422 with the figures needed for a corrective message.
func respondLedgerError(c *gin.Context, err error) {
	var insufficient *ledger.InsufficientBalanceError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "Insufficient balance",
			"balance":   insufficient.Balance,
			"required":  insufficient.Required,
			"shortfall": insufficient.Shortfall(),
		})
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, ledger.ErrAccountExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Account already exists"})
	case errors.Is(err, ledger.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporarily unavailable, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
