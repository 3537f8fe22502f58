package models

import (
	"github.com/shopspring/decimal"
)

// PurchasePointsRequest is the payload for a direct point purchase.
// PaymentAmount is the currency amount charged; the exchange rate is fixed
// at 1 currency unit per point, so it must equal Points exactly.
type PurchasePointsRequest struct {
	UserKey       string          `json:"userKey" binding:"required"`
	Points        int64           `json:"points" binding:"required"`
	PaymentAmount decimal.Decimal `json:"paymentAmount"`
	OperationRef  string          `json:"operationRef,omitempty"`
}

// DeductPointsRequest is the payload for spending points at checkout.
type DeductPointsRequest struct {
	UserKey      string `json:"userKey" binding:"required"`
	Amount       int64  `json:"amount" binding:"required"`
	Description  string `json:"description,omitempty"`
	OperationRef string `json:"operationRef,omitempty"`
}

// PaymentEvent is the payment-provider webhook payload. Delivery is
// at-least-once; ProviderTransactionID is the idempotency key.
type PaymentEvent struct {
	UserKey               string `json:"userKey"`
	PointsAmount          int64  `json:"pointsAmount"`
	ProviderTransactionID string `json:"providerTransactionId"`
}

// CreateAccountRequest registers a member account with a zero balance.
type CreateAccountRequest struct {
	ExternalAuthID string `json:"externalAuthId" binding:"required"`
}

// LedgerResult is the outcome of an accepted ledger mutation.
type LedgerResult struct {
	NewBalance    int64  `json:"newBalance"`
	TransactionID string `json:"transactionId"`
}
