// Package memory provides map-backed repository implementations used by
// tests and local development, with the same contracts as the MongoDB
// implementations (including mongo.ErrNoDocuments for missed lookups).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/restoq/foodsupply-backend/internal/ledger"
	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time checks against the repository interfaces
var (
	_ repositories.AccountRepository   = (*Repository)(nil)
	_ repositories.LedgerRepository    = (*Repository)(nil)
	_ repositories.AdminUserRepository = (*AdminRepository)(nil)
)

// Repository is an in-memory store for accounts and transactions. A
// single mutex serializes ApplyDelta, standing in for the per-account
// transaction the MongoDB implementation gets from the server.
type Repository struct {
	mu           sync.RWMutex
	accounts     map[primitive.ObjectID]*models.Account
	byAuthID     map[string]primitive.ObjectID
	transactions map[primitive.ObjectID][]*models.Transaction
	byRef        map[string]*models.Transaction
}

// New creates an empty in-memory repository
func New() *Repository {
	return &Repository{
		accounts:     make(map[primitive.ObjectID]*models.Account),
		byAuthID:     make(map[string]primitive.ObjectID),
		transactions: make(map[primitive.ObjectID][]*models.Transaction),
		byRef:        make(map[string]*models.Transaction),
	}
}

func refKey(accountID primitive.ObjectID, externalRef string) string {
	return accountID.Hex() + ":" + externalRef
}

// Create inserts a new account
func (r *Repository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byAuthID[account.ExternalAuthID]; exists {
		return ledger.ErrAccountExists
	}
	account.ID = primitive.NewObjectID()
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt

	stored := *account
	r.accounts[account.ID] = &stored
	r.byAuthID[account.ExternalAuthID] = account.ID
	return nil
}

// FindByID finds an account by ID
func (r *Repository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	found := *account
	return &found, nil
}

// FindByExternalAuthID finds an account by its external auth identifier
func (r *Repository) FindByExternalAuthID(_ context.Context, externalAuthID string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAuthID[externalAuthID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	found := *r.accounts[id]
	return &found, nil
}

// ApplyDelta adjusts the balance and appends the transaction under one
// lock, so the balance check and the write are a single critical section.
func (r *Repository) ApplyDelta(_ context.Context, accountID primitive.ObjectID, delta int64, kind models.DeltaKind, description, externalRef string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if externalRef != "" {
		if existing, ok := r.byRef[refKey(accountID, externalRef)]; ok {
			found := *existing
			return &found, nil
		}
	}

	account, ok := r.accounts[accountID]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	if delta < 0 && account.Balance+delta < 0 {
		return nil, &ledger.InsufficientBalanceError{Balance: account.Balance, Required: -delta}
	}

	now := time.Now().UTC()
	previous := account.Balance
	account.Balance += delta
	account.UpdatedAt = now

	tx := &models.Transaction{
		ID:              models.NewTransactionID(accountID, externalRef),
		AccountID:       accountID,
		Delta:           delta,
		PreviousBalance: previous,
		NewBalance:      account.Balance,
		Kind:            kind,
		Description:     description,
		ExternalRef:     externalRef,
		OccurredAt:      now,
		Status:          models.StatusCompleted,
	}
	r.transactions[accountID] = append(r.transactions[accountID], tx)
	if externalRef != "" {
		r.byRef[refKey(accountID, externalRef)] = tx
	}

	result := *tx
	return &result, nil
}

// FindTransactionByExternalRef finds the transaction recorded for a given
// idempotency reference on an account
func (r *Repository) FindTransactionByExternalRef(_ context.Context, accountID primitive.ObjectID, externalRef string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.byRef[refKey(accountID, externalRef)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	found := *tx
	return &found, nil
}

// FindTransactionsByAccountID returns up to limit transactions for an
// account, newest first with the same tie-break as the MongoDB
// implementation (occurredAt desc, then id desc).
func (r *Repository) FindTransactionsByAccountID(_ context.Context, accountID primitive.ObjectID, limit int64) ([]*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.transactions[accountID]
	transactions := make([]*models.Transaction, 0, len(stored))
	for _, tx := range stored {
		copied := *tx
		transactions = append(transactions, &copied)
	}

	sort.Slice(transactions, func(i, j int) bool {
		if !transactions[i].OccurredAt.Equal(transactions[j].OccurredAt) {
			return transactions[i].OccurredAt.After(transactions[j].OccurredAt)
		}
		return transactions[i].ID > transactions[j].ID
	})

	if limit > 0 && int64(len(transactions)) > limit {
		transactions = transactions[:limit]
	}
	return transactions, nil
}

// AdminRepository is an in-memory store for dashboard staff accounts.
type AdminRepository struct {
	mu     sync.RWMutex
	admins map[string]*models.AdminUser
}

// NewAdminRepository creates an empty in-memory admin user repository
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{admins: make(map[string]*models.AdminUser)}
}

// Create inserts a new admin user
func (r *AdminRepository) Create(_ context.Context, adminUser *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.admins[adminUser.Email]; exists {
		return ledger.ErrAccountExists
	}
	adminUser.ID = primitive.NewObjectID()
	adminUser.CreatedAt = time.Now().UTC()
	adminUser.UpdatedAt = adminUser.CreatedAt

	stored := *adminUser
	r.admins[adminUser.Email] = &stored
	return nil
}

// FindByEmail finds an admin user by email
func (r *AdminRepository) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adminUser, ok := r.admins[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	found := *adminUser
	return &found, nil
}
