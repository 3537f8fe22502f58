package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/restoq/foodsupply-backend/internal/ledger"
	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newAccount(t *testing.T, repo *memory.Repository, authID string) *models.Account {
	t.Helper()
	account := &models.Account{ExternalAuthID: authID}
	require.NoError(t, repo.Create(context.Background(), account))
	return account
}

func TestApplyDelta_UnknownAccount(t *testing.T) {
	repo := memory.New()

	_, err := repo.ApplyDelta(context.Background(), primitive.NewObjectID(), 10, models.KindPurchase, "", "")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestApplyDelta_GuardsNegativeBalance(t *testing.T) {
	repo := memory.New()
	account := newAccount(t, repo, "u-1")
	ctx := context.Background()

	_, err := repo.ApplyDelta(ctx, account.ID, -1, models.KindDeduction, "", "")
	var insufficient *ledger.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(0), insufficient.Balance)

	stored, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Balance)

	history, err := repo.FindTransactionsByAccountID(ctx, account.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestApplyDelta_ExternalRefDeduplicates(t *testing.T) {
	repo := memory.New()
	account := newAccount(t, repo, "u-1")
	ctx := context.Background()

	first, err := repo.ApplyDelta(ctx, account.ID, 500, models.KindPurchase, "credit", "ref-1")
	require.NoError(t, err)

	second, err := repo.ApplyDelta(ctx, account.ID, 500, models.KindPurchase, "credit", "ref-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.NewBalance, second.NewBalance)

	stored, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), stored.Balance)
}

func TestApplyDelta_RefsAreScopedPerAccount(t *testing.T) {
	repo := memory.New()
	a := newAccount(t, repo, "u-a")
	b := newAccount(t, repo, "u-b")
	ctx := context.Background()

	// The same provider reference on different accounts is two operations
	txA, err := repo.ApplyDelta(ctx, a.ID, 100, models.KindPurchase, "", "ref-1")
	require.NoError(t, err)
	txB, err := repo.ApplyDelta(ctx, b.ID, 100, models.KindPurchase, "", "ref-1")
	require.NoError(t, err)
	assert.NotEqual(t, txA.ID, txB.ID)
}

func TestApplyDelta_ConcurrentConservation(t *testing.T) {
	repo := memory.New()
	account := newAccount(t, repo, "u-1")
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ApplyDelta(ctx, account.ID, 5, models.KindPurchase, "", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*5), stored.Balance)

	history, err := repo.FindTransactionsByAccountID(ctx, account.ID, workers)
	require.NoError(t, err)
	assert.Len(t, history, workers)
	for _, tx := range history {
		assert.Equal(t, tx.NewBalance, tx.PreviousBalance+tx.Delta)
	}
}

func TestFindTransactionsByAccountID_StableOrder(t *testing.T) {
	repo := memory.New()
	account := newAccount(t, repo, "u-1")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.ApplyDelta(ctx, account.ID, 1, models.KindPurchase, "", "")
		require.NoError(t, err)
	}

	first, err := repo.FindTransactionsByAccountID(ctx, account.ID, 5)
	require.NoError(t, err)
	second, err := repo.FindTransactionsByAccountID(ctx, account.ID, 5)
	require.NoError(t, err)

	require.Len(t, first, 5)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestFindByExternalAuthID_NotFound(t *testing.T) {
	repo := memory.New()

	_, err := repo.FindByExternalAuthID(context.Background(), "missing")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}
