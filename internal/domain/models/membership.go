// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership links a user to a company. Owners do not get a
// membership document; their approved/owner state is synthesized by
// the coordinator.
type Membership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID primitive.ObjectID `bson:"company_id" json:"company_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status    string             `bson:"status" json:"status"` // pending | approved
	Role      string             `bson:"role" json:"role"`
	JoinedAt  time.Time          `bson:"joined_at" json:"joined_at"`
}

// Membership statuses.
const (
	MembershipPending  = "pending"
	MembershipApproved = "approved"
)

// RoleOwner is the synthesized role for the company owner. It is never
// stored in the memberships collection.
const RoleOwner = "owner"

// RosterEntry joins a membership with the referenced user's profile.
// Memberships whose user cannot be resolved are dropped from rosters.
type RosterEntry struct {
	Membership Membership `json:"membership"`
	Profile    User       `json:"profile"`
}
