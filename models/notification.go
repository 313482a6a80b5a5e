package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType tags what a notification is about.
type NotificationType string

const (
	NotifyAssignment  NotificationType = "assignment"
	NotifyStatus      NotificationType = "status"
	NotifyTrustChange NotificationType = "trust_change"
	NotifyMessage     NotificationType = "message"
)

// Notification is an append-only record delivered to one user. Only the
// Read flag is ever mutated after creation.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"userId" json:"userId"`
	IssueID   *primitive.ObjectID `bson:"issueId,omitempty" json:"issueId,omitempty"`
	Type      NotificationType    `bson:"type" json:"type"`
	Message   string              `bson:"message" json:"message"`
	Read      bool                `bson:"read" json:"read"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
