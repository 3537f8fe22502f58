package services

import (
	"context"
	"errors"

	"github.com/restoq/foodsupply-backend/internal/ledger"
	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LedgerService defines the interface for points-ledger operations
type LedgerService interface {
	// PurchasePoints credits points bought directly. The exchange rate is
	// fixed 1:1, so paymentAmount must equal points exactly.
	PurchasePoints(ctx context.Context, userKey string, points int64, paymentAmount decimal.Decimal, operationRef string) (*models.LedgerResult, error)

	// DeductPoints spends points at checkout. Fails with
	// *ledger.InsufficientBalanceError when amount exceeds the balance.
	DeductPoints(ctx context.Context, userKey string, amount int64, description, operationRef string) (*models.LedgerResult, error)

	// CreditFromPaymentEvent credits points from a payment-provider
	// webhook. Redelivery of the same providerTransactionID returns the
	// previously committed result without applying the delta again.
	CreditFromPaymentEvent(ctx context.Context, userKey string, pointsAmount int64, providerTransactionID string) (*models.LedgerResult, error)

	// GetBalance returns the current balance for a user key
	GetBalance(ctx context.Context, userKey string) (int64, error)

	// GetTransactionHistory returns up to limit transactions, newest first
	GetTransactionHistory(ctx context.Context, userKey string, limit int64) ([]*models.Transaction, error)
}

// AccountService defines the interface for member account operations
type AccountService interface {
	Register(ctx context.Context, externalAuthID string) (*models.Account, error)
	GetAccount(ctx context.Context, userKey string) (*models.Account, error)
}

// AuthService defines the interface for dashboard authentication
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (string, error) // Returns JWT token
	RegisterAdmin(ctx context.Context, req *models.RegisterAdminRequest) (*models.AdminUser, error)
}

// resolveAccount maps an opaque user key to exactly one account: first as
// an account id, then as an external auth id. The unique index on
// externalAuthId keeps the second step unambiguous; there is deliberately
// no further fallback.
func resolveAccount(ctx context.Context, accountRepo repositories.AccountRepository, userKey string) (*models.Account, error) {
	if userKey == "" {
		return nil, ledger.ErrAccountNotFound
	}

	if id, err := primitive.ObjectIDFromHex(userKey); err == nil {
		account, err := accountRepo.FindByID(ctx, id)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.Unavailable(err)
		}
	}

	account, err := accountRepo.FindByExternalAuthID(ctx, userKey)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, ledger.Unavailable(err)
	}
	return account, nil
}
