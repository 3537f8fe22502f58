package repositories

import (
	"context"

	"github.com/restoq/foodsupply-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountRepository defines the interface for member account data operations.
// Not-found lookups return mongo.ErrNoDocuments regardless of implementation.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	FindByExternalAuthID(ctx context.Context, externalAuthID string) (*models.Account, error)
}

// LedgerRepository defines the interface for balance mutation and
// transaction-history operations.
//
// ApplyDelta is the single write path for balances: it adjusts the account
// by delta and appends exactly one transaction record, both atomically.
// Concurrent calls on the same account serialize; a deduction that would
// drive the balance negative fails with *ledger.InsufficientBalanceError
// and persists nothing. When externalRef is non-empty and a transaction
// with that reference already exists for the account, ApplyDelta is a
// no-op returning the previously committed transaction.
type LedgerRepository interface {
	ApplyDelta(ctx context.Context, accountID primitive.ObjectID, delta int64, kind models.DeltaKind, description, externalRef string) (*models.Transaction, error)
	FindTransactionByExternalRef(ctx context.Context, accountID primitive.ObjectID, externalRef string) (*models.Transaction, error)
	FindTransactionsByAccountID(ctx context.Context, accountID primitive.ObjectID, limit int64) ([]*models.Transaction, error)
}

// AdminUserRepository defines the interface for dashboard staff accounts.
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}
