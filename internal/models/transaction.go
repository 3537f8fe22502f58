package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeltaKind classifies a ledger mutation.
type DeltaKind string

const (
	KindPurchase  DeltaKind = "purchase"
	KindDeduction DeltaKind = "deduction"
)

// TransactionStatus is the state of a ledger transaction. The ledger only
// ever emits completed transactions; there is no pending state.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
)

// Transaction is one immutable entry in an account's ledger history.
// PreviousBalance and NewBalance snapshot the account balance around this
// exact mutation; PreviousBalance + Delta == NewBalance always holds.
type Transaction struct {
	ID              string             `bson:"_id" json:"transactionId"`
	AccountID       primitive.ObjectID `bson:"accountId" json:"accountId"`
	Delta           int64              `bson:"delta" json:"delta"`
	PreviousBalance int64              `bson:"previousBalance" json:"previousBalance"`
	NewBalance      int64              `bson:"newBalance" json:"newBalance"`
	Kind            DeltaKind          `bson:"kind" json:"kind"`
	Description     string             `bson:"description" json:"description"`
	ExternalRef     string             `bson:"externalRef,omitempty" json:"externalRef,omitempty"`
	OccurredAt      time.Time          `bson:"occurredAt" json:"occurredAt"`
	Status          TransactionStatus  `bson:"status" json:"status"`
}

// transactionNamespace seeds deterministic transaction ids. It must never
// change: the webhook path depends on a redelivered event mapping to the
// same id as the original delivery.
var transactionNamespace = uuid.MustParse("7c9a6f52-1b44-4c1e-9f0d-3a8e5d2b6c01")

// NewTransactionID returns the id for a transaction on the given account.
// When an external reference is supplied the id is derived from it, so a
// duplicate delivery collides on the primary key instead of inserting a
// second record. Without a reference the id is a random UUID.
func NewTransactionID(accountID primitive.ObjectID, externalRef string) string {
	if externalRef == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(transactionNamespace, []byte(accountID.Hex()+":"+externalRef)).String()
}
