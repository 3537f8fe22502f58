package services

import (
	"context"
	"fmt"

	"github.com/restoq/foodsupply-backend/internal/ledger"
	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure LedgerServiceImpl implements LedgerService
var _ LedgerService = (*LedgerServiceImpl)(nil)

const defaultHistoryLimit = 10

type LedgerServiceImpl struct {
	accountRepo repositories.AccountRepository
	ledgerRepo  repositories.LedgerRepository
}

func NewLedgerService(accountRepo repositories.AccountRepository, ledgerRepo repositories.LedgerRepository) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// PurchasePoints credits points bought directly at the fixed 1:1 rate.
func (s *LedgerServiceImpl) PurchasePoints(ctx context.Context, userKey string, points int64, paymentAmount decimal.Decimal, operationRef string) (*models.LedgerResult, error) {
	if points <= 0 {
		return nil, ledger.InvalidAmount("points to purchase must be positive")
	}
	if !paymentAmount.Equal(decimal.NewFromInt(points)) {
		return nil, ledger.InvalidAmount(fmt.Sprintf("payment amount %s does not match %d points at the 1:1 rate", paymentAmount.String(), points))
	}

	account, err := resolveAccount(ctx, s.accountRepo, userKey)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledgerRepo.ApplyDelta(ctx, account.ID, points, models.KindPurchase, "Points purchase", operationRef)
	if err != nil {
		slog.Error("Point purchase failed", "error", err, "accountId", account.ID.Hex(), "points", points)
		return nil, err
	}

	slog.Info("Points purchased", "accountId", account.ID.Hex(), "points", points, "newBalance", tx.NewBalance)
	return &models.LedgerResult{NewBalance: tx.NewBalance, TransactionID: tx.ID}, nil
}

// DeductPoints spends points at checkout.
func (s *LedgerServiceImpl) DeductPoints(ctx context.Context, userKey string, amount int64, description, operationRef string) (*models.LedgerResult, error) {
	if amount <= 0 {
		return nil, ledger.InvalidAmount("amount to deduct must be positive")
	}
	if description == "" {
		description = "Points deduction"
	}

	account, err := resolveAccount(ctx, s.accountRepo, userKey)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledgerRepo.ApplyDelta(ctx, account.ID, -amount, models.KindDeduction, description, operationRef)
	if err != nil {
		slog.Warn("Point deduction rejected", "error", err, "accountId", account.ID.Hex(), "amount", amount)
		return nil, err
	}

	slog.Info("Points deducted", "accountId", account.ID.Hex(), "amount", amount, "newBalance", tx.NewBalance)
	return &models.LedgerResult{NewBalance: tx.NewBalance, TransactionID: tx.ID}, nil
}

// CreditFromPaymentEvent credits points for a payment-provider event. The
// provider transaction id doubles as the idempotency key, so redelivered
// events settle on the originally committed transaction.
func (s *LedgerServiceImpl) CreditFromPaymentEvent(ctx context.Context, userKey string, pointsAmount int64, providerTransactionID string) (*models.LedgerResult, error) {
	if pointsAmount <= 0 {
		return nil, ledger.InvalidAmount("points amount must be positive")
	}
	if providerTransactionID == "" {
		return nil, ledger.InvalidAmount("provider transaction id is required")
	}

	account, err := resolveAccount(ctx, s.accountRepo, userKey)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledgerRepo.ApplyDelta(ctx, account.ID, pointsAmount, models.KindPurchase, "Payment provider credit", providerTransactionID)
	if err != nil {
		slog.Error("Webhook credit failed", "error", err, "accountId", account.ID.Hex(), "providerTransactionId", providerTransactionID)
		return nil, err
	}

	slog.Info("Webhook credit applied", "accountId", account.ID.Hex(), "points", pointsAmount, "providerTransactionId", providerTransactionID, "newBalance", tx.NewBalance)
	return &models.LedgerResult{NewBalance: tx.NewBalance, TransactionID: tx.ID}, nil
}

// GetBalance returns the current balance for a user key
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, userKey string) (int64, error) {
	account, err := resolveAccount(ctx, s.accountRepo, userKey)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// GetTransactionHistory returns up to limit transactions, newest first.
// A non-positive limit falls back to the default.
func (s *LedgerServiceImpl) GetTransactionHistory(ctx context.Context, userKey string, limit int64) ([]*models.Transaction, error) {
	account, err := resolveAccount(ctx, s.accountRepo, userKey)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	transactions, err := s.ledgerRepo.FindTransactionsByAccountID(ctx, account.ID, limit)
	if err != nil {
		return nil, ledger.Unavailable(err)
	}
	return transactions, nil
}
