// internal/domain/models/financeentry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FinanceEntry is a single ledger line. Amounts are integer cents to
// keep aggregation exact.
type FinanceEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID   primitive.ObjectID `bson:"company_id" json:"company_id"`
	CreatorID   primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	Kind        string             `bson:"kind" json:"kind"` // income | expense
	AmountCents int64              `bson:"amount_cents" json:"amount_cents"`
	Currency    string             `bson:"currency" json:"currency"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Note        string             `bson:"note,omitempty" json:"note,omitempty"`
	OccurredAt  time.Time          `bson:"occurred_at" json:"occurred_at"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Finance entry kinds.
const (
	FinanceIncome  = "income"
	FinanceExpense = "expense"
)
