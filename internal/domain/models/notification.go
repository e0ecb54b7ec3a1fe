// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a fan-out message delivered to a single recipient.
// Dispatch is best-effort: a failed insert is logged by the notifier
// and never propagated to the operation that triggered it.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	SenderID    *primitive.ObjectID `bson:"sender_id,omitempty" json:"sender_id,omitempty"`
	Kind        string              `bson:"kind" json:"kind"`
	Title       string              `bson:"title" json:"title"`
	Message     string              `bson:"message" json:"message"`
	Link        string              `bson:"link,omitempty" json:"link,omitempty"`
	Read        bool                `bson:"read" json:"read"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}

// Notification kinds used by the coordinator and task assignment.
const (
	NotifyJoinRequest    = "join_request"
	NotifyMemberApproved = "member_approved"
	NotifyTaskAssigned   = "task_assigned"
	NotifyContractReady  = "contract_ready"
)
