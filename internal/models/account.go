package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account holds a member's point balance. Balance is mutated exclusively
// through the ledger's ApplyDelta operation and never goes below zero.
type Account struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ExternalAuthID string             `bson:"externalAuthId" json:"externalAuthId"`
	Balance        int64              `bson:"balance" json:"balance"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
