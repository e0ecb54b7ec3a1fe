// internal/domain/models/contract.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contract is an NDA presented to a member for signature. Body is
// sanitized HTML; the signature is a typed name plus timestamp.
type Contract struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID     primitive.ObjectID `bson:"company_id" json:"company_id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	Body          string             `bson:"body" json:"body"`
	Signed        bool               `bson:"signed" json:"signed"`
	SignatureName string             `bson:"signature_name,omitempty" json:"signature_name,omitempty"`
	SignedAt      *time.Time         `bson:"signed_at,omitempty" json:"signed_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
