package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Potholes          IssueCategory = "Potholes"
	RoadCracks        IssueCategory = "Road Cracks"
	Manholes          IssueCategory = "Manholes"
	SewerBlockage     IssueCategory = "Sewer Blockage"
	StagnantWater     IssueCategory = "Stagnant Water"
	WaterLeakage      IssueCategory = "Water Leakage"
	DamagedSignboards IssueCategory = "Damaged Signboards"
	GarbageOverflow   IssueCategory = "Garbage Overflow"
	Trash             IssueCategory = "Trash"
	StreetLights      IssueCategory = "Street Lights"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusNew        IssueStatus = "new"
	StatusInProgress IssueStatus = "in_progress"
	StatusResolved   IssueStatus = "resolved"
	StatusSpam       IssueStatus = "spam"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s IssueStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusSpam
}

// IsOpen reports whether an issue in this status counts toward a responder's workload.
func (s IssueStatus) IsOpen() bool {
	return s == StatusNew || s == StatusInProgress
}

// IssuePriority enum
type IssuePriority string

const (
	PriorityLow    IssuePriority = "low"
	PriorityMedium IssuePriority = "medium"
	PriorityHigh   IssuePriority = "high"
)

// Issue represents a civic issue reported by a user
type Issue struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ReporterID          primitive.ObjectID  `bson:"reporterId" json:"reporterId"`
	Category            IssueCategory       `bson:"category" json:"category"`
	Description         string              `bson:"description" json:"description"`
	Status              IssueStatus         `bson:"status" json:"status"`
	Priority            IssuePriority       `bson:"priority" json:"priority"`
	SeverityScore       float64             `bson:"severityScore" json:"severityScore"`
	Latitude            float64             `bson:"latitude" json:"latitude"`
	Longitude           float64             `bson:"longitude" json:"longitude"`
	MediaURLs           []string            `bson:"mediaUrls" json:"mediaUrls"`
	AssignedDepartment  string              `bson:"assignedDepartment,omitempty" json:"assignedDepartment,omitempty"`
	AssignedResponderID *primitive.ObjectID `bson:"assignedResponderId,omitempty" json:"assignedResponderId,omitempty"`
	IsAnonymous         bool                `bson:"isAnonymous" json:"isAnonymous"`
	IsVerified          bool                `bson:"isVerified" json:"isVerified"`
	UpvoteCount         int64               `bson:"upvoteCount" json:"upvoteCount"`
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
}
