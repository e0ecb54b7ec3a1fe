// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents managers and creators.
//
// NOTE:
//   - Company association is discovered through the memberships
//     collection (or the synthesized owner case). CompanyID below is
//     the legacy single-field reference kept in sync for older
//     clients; never treat it as fresher than a membership record.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"full_name" json:"full_name"`
	FullNameCI   string              `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string              `bson:"email" json:"email"`
	EmailCI      string              `bson:"email_ci" json:"-"`
	PasswordHash string              `bson:"password_hash,omitempty" json:"-"` // empty for Google-only accounts
	Role         string              `bson:"role" json:"role"`                 // manager | creator
	Status       string              `bson:"status,omitempty" json:"status,omitempty"`
	CompanyID    *primitive.ObjectID `bson:"company_id,omitempty" json:"company_id,omitempty"` // legacy reference

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Platform roles.
const (
	RoleManager = "manager"
	RoleCreator = "creator"
)
