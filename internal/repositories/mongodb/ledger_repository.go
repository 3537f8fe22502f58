package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/restoq/foodsupply-backend/internal/ledger"
	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure LedgerRepository implements the interface
var _ repositories.LedgerRepository = (*LedgerRepository)(nil)

// LedgerRepository handles MongoDB operations for the points ledger. It is
// the only component that writes account balances or transaction records.
type LedgerRepository struct {
	client       *mongo.Client
	accounts     *mongo.Collection
	transactions *mongo.Collection
}

// NewLedgerRepository creates a new LedgerRepository. The client is needed
// in addition to the database because ApplyDelta runs a session transaction.
func NewLedgerRepository(client *mongo.Client, db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{
		client:       client,
		accounts:     db.Collection("accounts"),
		transactions: db.Collection("transactions"),
	}
}

// ApplyDelta atomically adjusts the account balance and appends the
// transaction record inside one multi-document transaction. The balance
// update uses a guarded FindOneAndUpdate: for deductions the filter
// requires balance >= |delta|, so the check always runs against the
// balance at the moment of commit and a losing concurrent deduction
// matches nothing instead of going negative.
func (r *LedgerRepository) ApplyDelta(ctx context.Context, accountID primitive.ObjectID, delta int64, kind models.DeltaKind, description, externalRef string) (*models.Transaction, error) {
	if externalRef != "" {
		existing, err := r.FindTransactionByExternalRef(ctx, accountID, externalRef)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.Unavailable(err)
		}
	}

	session, err := r.client.StartSession()
	if err != nil {
		return nil, ledger.Unavailable(err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now().UTC()

		filter := bson.M{"_id": accountID}
		if delta < 0 {
			filter["balance"] = bson.M{"$gte": -delta}
		}
		update := bson.M{
			"$inc": bson.M{"balance": delta},
			"$set": bson.M{"updatedAt": now},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var account models.Account
		if err := r.accounts.FindOneAndUpdate(sc, filter, update, opts).Decode(&account); err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, err
			}
			// Guard rejected: either the account is missing or the
			// deduction exceeds the current balance.
			var current models.Account
			lookupErr := r.accounts.FindOne(sc, bson.M{"_id": accountID}).Decode(&current)
			if errors.Is(lookupErr, mongo.ErrNoDocuments) {
				return nil, ledger.ErrAccountNotFound
			}
			if lookupErr != nil {
				return nil, lookupErr
			}
			return nil, &ledger.InsufficientBalanceError{Balance: current.Balance, Required: -delta}
		}

		tx := &models.Transaction{
			ID:              models.NewTransactionID(accountID, externalRef),
			AccountID:       accountID,
			Delta:           delta,
			PreviousBalance: account.Balance - delta,
			NewBalance:      account.Balance,
			Kind:            kind,
			Description:     description,
			ExternalRef:     externalRef,
			OccurredAt:      now,
			Status:          models.StatusCompleted,
		}
		if _, err := r.transactions.InsertOne(sc, tx); err != nil {
			return nil, err
		}
		return tx, nil
	})
	if err != nil {
		var insufficient *ledger.InsufficientBalanceError
		switch {
		case errors.As(err, &insufficient), errors.Is(err, ledger.ErrAccountNotFound):
			return nil, err
		case mongo.IsDuplicateKeyError(err):
			// Lost the insert race against a concurrent delivery of the
			// same external reference; the committed record is the outcome.
			existing, findErr := r.FindTransactionByExternalRef(ctx, accountID, externalRef)
			if findErr != nil {
				return nil, ledger.Unavailable(findErr)
			}
			return existing, nil
		default:
			return nil, ledger.Unavailable(err)
		}
	}

	return result.(*models.Transaction), nil
}

// FindTransactionByExternalRef finds the transaction recorded for a given
// idempotency reference on an account
func (r *LedgerRepository) FindTransactionByExternalRef(ctx context.Context, accountID primitive.ObjectID, externalRef string) (*models.Transaction, error) {
	var tx models.Transaction
	filter := bson.M{"accountId": accountID, "externalRef": externalRef}
	err := r.transactions.FindOne(ctx, filter).Decode(&tx)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &tx, nil
}

// FindTransactionsByAccountID returns up to limit transactions for an
// account, newest first. Ties on occurredAt break on _id descending so
// repeated calls against unchanged data return the same order.
func (r *LedgerRepository) FindTransactionsByAccountID(ctx context.Context, accountID primitive.ObjectID, limit int64) ([]*models.Transaction, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "occurredAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.transactions.Find(ctx, bson.M{"accountId": accountID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var transactions []*models.Transaction
	if err = cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}

	// Return empty slice instead of nil if no documents found
	if transactions == nil {
		transactions = []*models.Transaction{}
	}
	return transactions, nil
}
