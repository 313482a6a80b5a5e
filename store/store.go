package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
)

// ErrNotFound is returned when a referenced issue or user does not exist.
var ErrNotFound = errors.New("not found")

// IssueFilter narrows QueryIssues. Zero values mean "no constraint".
type IssueFilter struct {
	Category    string
	Status      string
	Department  string
	ReporterID  *primitive.ObjectID
	ResponderID *primitive.ObjectID
	Since       *time.Time
	HasMedia    bool
	SortBy      string // "createdAt" (default) or "upvoteCount"
	SortAsc     bool
	Limit       int64
	Offset      int64
}

// Store is the persistence boundary the core talks to. Implementations must
// honor the transaction context produced by WithTransaction so that compound
// operations (status change + trust adjustment + notification) commit or roll
// back as one unit.
type Store interface {
	GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	SaveIssue(ctx context.Context, issue *models.Issue) error
	UpdateIssue(ctx context.Context, issue *models.Issue) error
	QueryIssues(ctx context.Context, filter IssueFilter) ([]models.Issue, error)

	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	ListActiveResponders(ctx context.Context, department string) ([]models.User, error)
	CountOpenIssuesForResponder(ctx context.Context, id primitive.ObjectID) (int64, error)

	SaveNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID) error

	GetUpvote(ctx context.Context, issueID, userID primitive.ObjectID) (*models.Upvote, error)
	InsertUpvote(ctx context.Context, upvote *models.Upvote) error
	DeleteUpvote(ctx context.Context, issueID, userID primitive.ObjectID) error

	SaveMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, issueID primitive.ObjectID) ([]models.Message, error)

	// WithTransaction runs fn inside one atomic unit. The context passed to fn
	// must be used for every store call that belongs to the unit.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
