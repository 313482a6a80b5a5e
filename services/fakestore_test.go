package services

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
	"civicpulse-be/store"
)

// fakeStore is an in-memory Store for service tests. WithTransaction
// snapshots the state before running fn and restores it when fn fails, so
// atomicity tests can assert nothing half-applied leaked out. The err fields
// inject failures into individual writes.
type fakeStore struct {
	issues        map[primitive.ObjectID]*models.Issue
	users         map[primitive.ObjectID]*models.User
	upvotes       map[[2]primitive.ObjectID]*models.Upvote
	notifications []*models.Notification
	messages      []*models.Message

	saveNotificationErr error
	updateUserErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		issues:  make(map[primitive.ObjectID]*models.Issue),
		users:   make(map[primitive.ObjectID]*models.User),
		upvotes: make(map[[2]primitive.ObjectID]*models.Upvote),
	}
}

func (f *fakeStore) GetIssue(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *issue
	return &copied, nil
}

func (f *fakeStore) SaveIssue(_ context.Context, issue *models.Issue) error {
	copied := *issue
	f.issues[issue.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateIssue(_ context.Context, issue *models.Issue) error {
	if _, ok := f.issues[issue.ID]; !ok {
		return store.ErrNotFound
	}
	copied := *issue
	f.issues[issue.ID] = &copied
	return nil
}

func (f *fakeStore) QueryIssues(_ context.Context, filter store.IssueFilter) ([]models.Issue, error) {
	var result []models.Issue
	for _, issue := range f.issues {
		if filter.Category != "" && string(issue.Category) != filter.Category {
			continue
		}
		if filter.Status != "" && string(issue.Status) != filter.Status {
			continue
		}
		if filter.Department != "" && issue.AssignedDepartment != filter.Department {
			continue
		}
		if filter.ReporterID != nil && issue.ReporterID != *filter.ReporterID {
			continue
		}
		if filter.Since != nil && issue.CreatedAt.Before(*filter.Since) {
			continue
		}
		result = append(result, *issue)
	}
	sort.Slice(result, func(i, j int) bool {
		if filter.SortAsc {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[j].CreatedAt.Before(result[i].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= int64(len(result)) {
			result = nil
		} else {
			result = result[filter.Offset:]
		}
	}
	if filter.Limit > 0 && int64(len(result)) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (f *fakeStore) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) SaveUser(_ context.Context, user *models.User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateUser(_ context.Context, user *models.User) error {
	if f.updateUserErr != nil {
		return f.updateUserErr
	}
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeStore) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	for _, user := range f.users {
		if user.Phone == phone {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListActiveResponders(_ context.Context, department string) ([]models.User, error) {
	var ids []primitive.ObjectID
	for id, user := range f.users {
		if user.Role != models.RoleResponder || !user.IsActive {
			continue
		}
		if department != "" && user.Department != department {
			continue
		}
		ids = append(ids, id)
	}
	// Stable order so ties resolve deterministically in tests.
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })

	result := make([]models.User, 0, len(ids))
	for _, id := range ids {
		result = append(result, *f.users[id])
	}
	return result, nil
}

func (f *fakeStore) CountOpenIssuesForResponder(_ context.Context, id primitive.ObjectID) (int64, error) {
	var count int64
	for _, issue := range f.issues {
		if issue.AssignedResponderID != nil && *issue.AssignedResponderID == id && issue.Status.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) SaveNotification(_ context.Context, n *models.Notification) error {
	if f.saveNotificationErr != nil {
		return f.saveNotificationErr
	}
	copied := *n
	copied.ID = primitive.NewObjectID()
	f.notifications = append(f.notifications, &copied)
	return nil
}

func (f *fakeStore) ListNotifications(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	var result []models.Notification
	for i := len(f.notifications) - 1; i >= 0; i-- {
		if f.notifications[i].UserID == userID {
			result = append(result, *f.notifications[i])
			if limit > 0 && int64(len(result)) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (f *fakeStore) MarkNotificationRead(_ context.Context, id, userID primitive.ObjectID) error {
	for _, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) MarkAllNotificationsRead(_ context.Context, userID primitive.ObjectID) error {
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeStore) GetUpvote(_ context.Context, issueID, userID primitive.ObjectID) (*models.Upvote, error) {
	upvote, ok := f.upvotes[[2]primitive.ObjectID{issueID, userID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *upvote
	return &copied, nil
}

func (f *fakeStore) InsertUpvote(_ context.Context, upvote *models.Upvote) error {
	copied := *upvote
	f.upvotes[[2]primitive.ObjectID{upvote.Issue, upvote.User}] = &copied
	return nil
}

func (f *fakeStore) DeleteUpvote(_ context.Context, issueID, userID primitive.ObjectID) error {
	key := [2]primitive.ObjectID{issueID, userID}
	if _, ok := f.upvotes[key]; !ok {
		return store.ErrNotFound
	}
	delete(f.upvotes, key)
	return nil
}

func (f *fakeStore) SaveMessage(_ context.Context, m *models.Message) error {
	copied := *m
	copied.ID = primitive.NewObjectID()
	f.messages = append(f.messages, &copied)
	return nil
}

func (f *fakeStore) ListMessages(_ context.Context, issueID primitive.ObjectID) ([]models.Message, error) {
	var result []models.Message
	for _, m := range f.messages {
		if m.IssueID == issueID {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (f *fakeStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := f.snapshot()
	if err := fn(ctx); err != nil {
		f.restore(snapshot)
		return err
	}
	return nil
}

func (f *fakeStore) snapshot() *fakeStore {
	s := newFakeStore()
	for id, issue := range f.issues {
		copied := *issue
		s.issues[id] = &copied
	}
	for id, user := range f.users {
		copied := *user
		s.users[id] = &copied
	}
	for key, upvote := range f.upvotes {
		copied := *upvote
		s.upvotes[key] = &copied
	}
	for _, n := range f.notifications {
		copied := *n
		s.notifications = append(s.notifications, &copied)
	}
	for _, m := range f.messages {
		copied := *m
		s.messages = append(s.messages, &copied)
	}
	return s
}

func (f *fakeStore) restore(s *fakeStore) {
	f.issues = s.issues
	f.users = s.users
	f.upvotes = s.upvotes
	f.notifications = s.notifications
	f.messages = s.messages
}

// notificationsFor filters the recorded notifications by user and type.
func (f *fakeStore) notificationsFor(userID primitive.ObjectID, kind models.NotificationType) []*models.Notification {
	var result []*models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && n.Type == kind {
			result = append(result, n)
		}
	}
	return result
}

// addResponder seeds an active responder in a department.
func (f *fakeStore) addResponder(department string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.users[id] = &models.User{
		ID:         id,
		FullName:   "Responder " + id.Hex()[:6],
		Role:       models.RoleResponder,
		Department: department,
		TrustScore: models.DefaultTrustScore,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	return id
}

// addCitizen seeds a citizen reporter with the given trust score.
func (f *fakeStore) addCitizen(trust float64) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.users[id] = &models.User{
		ID:         id,
		FullName:   "Citizen " + id.Hex()[:6],
		Role:       models.RoleCitizen,
		TrustScore: trust,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	return id
}
