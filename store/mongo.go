package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicpulse-be/models"
)

// MongoStore backs the Store interface with MongoDB collections.
type MongoStore struct {
	client        *mongo.Client
	issues        *mongo.Collection
	users         *mongo.Collection
	upvotes       *mongo.Collection
	notifications *mongo.Collection
	messages      *mongo.Collection
}

// NewMongoStore wires the collections and ensures the unique upvote index.
func NewMongoStore(client *mongo.Client, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		client:        client,
		issues:        db.Collection("issues"),
		users:         db.Collection("users"),
		upvotes:       db.Collection("upvotes"),
		notifications: db.Collection("notifications"),
		messages:      db.Collection("messages"),
	}
	if err := models.EnsureUpvoteIndex(s.upvotes); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.issues.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *MongoStore) SaveIssue(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	_, err := s.issues.InsertOne(ctx, issue)
	return err
}

func (s *MongoStore) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	res, err := s.issues.ReplaceOne(ctx, bson.M{"_id": issue.ID}, issue)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) QueryIssues(ctx context.Context, filter IssueFilter) ([]models.Issue, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Department != "" {
		query["assignedDepartment"] = filter.Department
	}
	if filter.ReporterID != nil {
		query["reporterId"] = *filter.ReporterID
	}
	if filter.ResponderID != nil {
		query["assignedResponderId"] = *filter.ResponderID
	}
	if filter.Since != nil {
		query["createdAt"] = bson.M{"$gte": *filter.Since}
	}
	if filter.HasMedia {
		query["mediaUrls.0"] = bson.M{"$exists": true}
	}

	sortField := "createdAt"
	if filter.SortBy == "upvoteCount" {
		sortField = "upvoteCount"
	}
	order := -1
	if filter.SortAsc {
		order = 1
	}

	findOptions := options.Find().SetSort(bson.D{{Key: sortField, Value: order}})
	if filter.Limit > 0 {
		findOptions.SetLimit(filter.Limit)
	}
	if filter.Offset > 0 {
		findOptions.SetSkip(filter.Offset)
	}

	cursor, err := s.issues.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *MongoStore) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) SaveUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := s.users.InsertOne(ctx, user)
	return err
}

func (s *MongoStore) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) ListActiveResponders(ctx context.Context, department string) ([]models.User, error) {
	query := bson.M{"role": models.RoleResponder, "isActive": true}
	if department != "" {
		query["department"] = department
	}

	cursor, err := s.users.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responders []models.User
	if err := cursor.All(ctx, &responders); err != nil {
		return nil, err
	}
	return responders, nil
}

func (s *MongoStore) CountOpenIssuesForResponder(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return s.issues.CountDocuments(ctx, bson.M{
		"assignedResponderId": id,
		"status":              bson.M{"$in": []models.IssueStatus{models.StatusNew, models.StatusInProgress}},
	})
}

func (s *MongoStore) SaveNotification(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := s.notifications.InsertOne(ctx, n)
	return err
}

func (s *MongoStore) ListNotifications(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.notifications.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *MongoStore) MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.notifications.UpdateMany(ctx,
		bson.M{"userId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	return err
}

func (s *MongoStore) GetUpvote(ctx context.Context, issueID, userID primitive.ObjectID) (*models.Upvote, error) {
	var upvote models.Upvote
	err := s.upvotes.FindOne(ctx, bson.M{"issue": issueID, "user": userID}).Decode(&upvote)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &upvote, nil
}

func (s *MongoStore) InsertUpvote(ctx context.Context, upvote *models.Upvote) error {
	if upvote.ID.IsZero() {
		upvote.ID = primitive.NewObjectID()
	}
	_, err := s.upvotes.InsertOne(ctx, upvote)
	return err
}

func (s *MongoStore) DeleteUpvote(ctx context.Context, issueID, userID primitive.ObjectID) error {
	res, err := s.upvotes.DeleteOne(ctx, bson.M{"issue": issueID, "user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) SaveMessage(ctx context.Context, m *models.Message) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	_, err := s.messages.InsertOne(ctx, m)
	return err
}

func (s *MongoStore) ListMessages(ctx context.Context, issueID primitive.ObjectID) ([]models.Message, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := s.messages.Find(ctx, bson.M{"issueId": issueID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// WithTransaction runs fn inside a MongoDB session transaction. Store calls
// made with the callback's context join the transaction.
func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
