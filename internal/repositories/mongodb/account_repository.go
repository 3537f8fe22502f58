package mongodb

import (
	"context"
	"time"

	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/restoq/foodsupply-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure AccountRepository implements the interface
var _ repositories.AccountRepository = (*AccountRepository)(nil)

// AccountRepository handles MongoDB operations for Account
type AccountRepository struct {
	collection *mongo.Collection
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		collection: db.Collection("accounts"),
	}
}

// Create inserts a new account. The unique index on externalAuthId makes
// this fail with a duplicate-key error on a registration collision.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	account.ID = primitive.NewObjectID()
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	_, err := r.collection.InsertOne(ctx, account)
	return err
}

// FindByID finds an account by ID
func (r *AccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &account, nil
}

// FindByExternalAuthID finds an account by its external auth identifier
func (r *AccountRepository) FindByExternalAuthID(ctx context.Context, externalAuthID string) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"externalAuthId": externalAuthID}).Decode(&account)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &account, nil
}
