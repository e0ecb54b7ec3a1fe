// internal/domain/models/company.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company is the team entity owned by exactly one manager.
// owner_id and invite_code carry unique indexes (see system/indexes),
// which makes the coordinator's pre-checks a fast path rather than the
// actual enforcement.
type Company struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	NameCI     string             `bson:"name_ci" json:"-"`
	OwnerID    primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	OwnerEmail string             `bson:"owner_email" json:"owner_email"`
	InviteCode string             `bson:"invite_code" json:"invite_code"`
	Tier       string             `bson:"tier" json:"tier"` // free | pro | business
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// Subscription tiers.
const (
	TierFree     = "free"
	TierPro      = "pro"
	TierBusiness = "business"
)

// SlotLimit returns the membership slot limit for a tier. Unknown
// tiers fall back to the free limit.
func SlotLimit(tier string) int {
	switch tier {
	case TierPro:
		return 5
	case TierBusiness:
		return 10
	default:
		return 1
	}
}
