package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one chat entry on an issue, between the reporter and the
// assigned responder.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID     primitive.ObjectID `bson:"issueId" json:"issueId"`
	SenderID    primitive.ObjectID `bson:"senderId" json:"senderId"`
	Body        string             `bson:"body" json:"body"`
	FromHandler bool               `bson:"fromHandler" json:"fromHandler"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
