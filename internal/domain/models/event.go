// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a company-scoped calendar entry.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID   primitive.ObjectID `bson:"company_id" json:"company_id"`
	CreatorID   primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	StartsAt    time.Time          `bson:"starts_at" json:"starts_at"`
	EndsAt      time.Time          `bson:"ends_at" json:"ends_at"`
	AllDay      bool               `bson:"all_day" json:"all_day"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
