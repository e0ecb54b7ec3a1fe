// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task is a content-pipeline item. Description is sanitized HTML.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CompanyID   primitive.ObjectID  `bson:"company_id" json:"company_id"`
	CreatorID   primitive.ObjectID  `bson:"creator_id" json:"creator_id"`
	AssigneeID  *primitive.ObjectID `bson:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Stage       string              `bson:"stage" json:"stage"`
	DueAt       *time.Time          `bson:"due_at,omitempty" json:"due_at,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

// Pipeline stages, in order.
const (
	StageIdea      = "idea"
	StageScript    = "script"
	StageFilming   = "filming"
	StageEditing   = "editing"
	StagePublished = "published"
)

// ValidStage reports whether s is a known pipeline stage.
func ValidStage(s string) bool {
	switch s {
	case StageIdea, StageScript, StageFilming, StageEditing, StagePublished:
		return true
	}
	return false
}
