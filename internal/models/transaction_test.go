package models_test

import (
	"testing"

	"github.com/restoq/foodsupply-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewTransactionID_DeterministicForExternalRef(t *testing.T) {
	accountID := primitive.NewObjectID()

	first := models.NewTransactionID(accountID, "prov-tx-1")
	second := models.NewTransactionID(accountID, "prov-tx-1")
	assert.Equal(t, first, second)

	// Different ref or different account gives a different id
	assert.NotEqual(t, first, models.NewTransactionID(accountID, "prov-tx-2"))
	assert.NotEqual(t, first, models.NewTransactionID(primitive.NewObjectID(), "prov-tx-1"))
}

func TestNewTransactionID_RandomWithoutRef(t *testing.T) {
	accountID := primitive.NewObjectID()

	first := models.NewTransactionID(accountID, "")
	second := models.NewTransactionID(accountID, "")
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
