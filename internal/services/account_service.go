package services

import (
	"context"
	"errors"

	"github.com/restoq/foodsupply-backend/internal/ledger"
	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AccountServiceImpl implements AccountService
var _ AccountService = (*AccountServiceImpl)(nil)

type AccountServiceImpl struct {
	accountRepo repositories.AccountRepository
}

func NewAccountService(accountRepo repositories.AccountRepository) *AccountServiceImpl {
	return &AccountServiceImpl{accountRepo: accountRepo}
}

// Register creates a member account with a zero balance. Called once at
// user registration; the balance only ever changes through the ledger.
func (s *AccountServiceImpl) Register(ctx context.Context, externalAuthID string) (*models.Account, error) {
	if externalAuthID == "" {
		return nil, ledger.InvalidAmount("external auth id is required")
	}

	_, err := s.accountRepo.FindByExternalAuthID(ctx, externalAuthID)
	if err == nil {
		return nil, ledger.ErrAccountExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ledger.Unavailable(err)
	}

	account := &models.Account{
		ExternalAuthID: externalAuthID,
		Balance:        0,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		// The unique index catches registrations racing on the same key.
		if errors.Is(err, ledger.ErrAccountExists) || mongo.IsDuplicateKeyError(err) {
			return nil, ledger.ErrAccountExists
		}
		return nil, ledger.Unavailable(err)
	}

	slog.Info("Account registered", "accountId", account.ID.Hex(), "externalAuthId", externalAuthID)
	return account, nil
}

// GetAccount resolves a user key to its account
func (s *AccountServiceImpl) GetAccount(ctx context.Context, userKey string) (*models.Account, error) {
	return resolveAccount(ctx, s.accountRepo, userKey)
}
