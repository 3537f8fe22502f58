package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/services"
)

// AccountHandler handles member account HTTP requests
type AccountHandler struct {
	accountService services.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// CreateAccount handles POST /accounts
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.accountService.Register(c.Request.Context(), req.ExternalAuthID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// GetAccount handles GET /accounts/:userKey
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccount(c.Request.Context(), c.Param("userKey"))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
