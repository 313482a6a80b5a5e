package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
	"civicpulse-be/realtime"
	"civicpulse-be/store"
)

// verifyConfidence is the minimum classifier confidence that marks an issue
// verified when the detected label corroborates the reported category.
const verifyConfidence = 0.5

// Lifecycle drives every issue state change: creation with dedup, scoring
// and assignment, status transitions with their trust and notification side
// effects, and upvote toggling.
type Lifecycle struct {
	store      store.Store
	similarity *SimilarityEngine
	signals    *TextSignalExtractor
	balancer   *AssignmentBalancer
	trust      *TrustLedger
	registry   *realtime.Registry
	classifier ImageClassifier
}

// NewLifecycle wires the manager. classifier may be nil; verification is then
// skipped and issues stay unverified.
func NewLifecycle(s store.Store, similarity *SimilarityEngine, signals *TextSignalExtractor,
	balancer *AssignmentBalancer, trust *TrustLedger, registry *realtime.Registry,
	classifier ImageClassifier) *Lifecycle {
	return &Lifecycle{
		store:      s,
		similarity: similarity,
		signals:    signals,
		balancer:   balancer,
		trust:      trust,
		registry:   registry,
		classifier: classifier,
	}
}

type CreateIssueInput struct {
	ReporterID  primitive.ObjectID
	Category    models.IssueCategory
	Description string
	Latitude    float64
	Longitude   float64
	MediaURLs   []string
	IsAnonymous bool
}

// CreateIssueResult carries the persisted issue plus advisory duplicate
// candidates found by the location/category check. Advisory matches never
// block creation; only media matches do, via DuplicateRejectedError.
type CreateIssueResult struct {
	Issue               *models.Issue    `json:"issue"`
	DuplicateCandidates []DuplicateMatch `json:"duplicateCandidates,omitempty"`
}

// CreateIssue validates, enriches, assigns and persists a new issue.
//
// Media-filename duplicates against issues from the last 30 days are a hard
// reject (DuplicateRejectedError); location/category duplicates are returned
// as advisory candidates alongside the created issue. The asymmetry is
// deliberate and preserved as documented behavior.
func (m *Lifecycle) CreateIssue(ctx context.Context, input CreateIssueInput) (*CreateIssueResult, error) {
	if _, err := m.store.GetUser(ctx, input.ReporterID); err != nil {
		return nil, err
	}

	since := time.Now().Add(-MediaDuplicateWindow)
	recent, err := m.store.QueryIssues(ctx, store.IssueFilter{Since: &since})
	if err != nil {
		return nil, err
	}

	if len(input.MediaURLs) > 0 {
		if dups := m.similarity.FindMediaDuplicates(input.MediaURLs, recent); len(dups) > 0 {
			rejection := &DuplicateRejectedError{}
			for _, d := range dups {
				rejection.IssueIDs = append(rejection.IssueIDs, d.IssueID)
				rejection.Reasons = append(rejection.Reasons, d.Reason)
			}
			return nil, rejection
		}
	}

	candidate := models.Issue{
		Category:    input.Category,
		Description: input.Description,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	}
	advisory := m.similarity.FindDuplicates(candidate, recent, MediaDuplicateRadiusKm)

	signal := m.signals.Score(input.Description)

	verified := false
	if m.classifier != nil && len(input.MediaURLs) > 0 {
		detections, err := m.classifier.Detect(ctx, input.MediaURLs[0])
		if err != nil {
			log.Printf("lifecycle: image classifier unavailable: %v", err)
		}
		for _, d := range detections {
			if d.Confidence >= verifyConfidence && labelMatchesCategory(d.Label, input.Category) {
				verified = true
				break
			}
		}
	}

	responder, err := m.balancer.Assign(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	issue := &models.Issue{
		ID:                 primitive.NewObjectID(),
		ReporterID:         input.ReporterID,
		Category:           input.Category,
		Description:        input.Description,
		Status:             models.StatusNew,
		Priority:           signal.Priority,
		SeverityScore:      signal.Severity,
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
		MediaURLs:          input.MediaURLs,
		AssignedDepartment: DepartmentForCategory(input.Category),
		IsAnonymous:        input.IsAnonymous,
		IsVerified:         verified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if responder != nil {
		responderID := responder.ID
		issue.AssignedResponderID = &responderID
	}

	err = m.store.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := m.store.SaveIssue(txCtx, issue); err != nil {
			return err
		}
		if responder == nil {
			return nil
		}
		return m.store.SaveNotification(txCtx, &models.Notification{
			UserID:    responder.ID,
			IssueID:   &issue.ID,
			Type:      models.NotifyAssignment,
			Message:   fmt.Sprintf("New %s issue assigned to you (priority %s)", issue.Category, issue.Priority),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if responder != nil {
		m.registry.SendToUser(responder.ID.Hex(), map[string]interface{}{
			"type":     "issue_assigned",
			"issueId":  issue.ID.Hex(),
			"category": issue.Category,
			"priority": issue.Priority,
		})
	}

	return &CreateIssueResult{Issue: issue, DuplicateCandidates: advisory}, nil
}

// TransitionStatus moves an issue along the state machine
// new → in_progress → resolved, with spam reachable from either open state.
// Only the assigned responder may transition an issue; the transition mutates
// the reporter's trust score, so the check guards that side effect too. The
// status change, trust adjustment and notification record commit as one
// unit; the live push afterwards is best-effort.
func (m *Lifecycle) TransitionStatus(ctx context.Context, issueID, actorID primitive.ObjectID, target models.IssueStatus) (*models.Issue, error) {
	switch target {
	case models.StatusInProgress, models.StatusResolved, models.StatusSpam:
	default:
		return nil, ErrInvalidTransition
	}

	var updated *models.Issue
	err := m.store.WithTransaction(ctx, func(txCtx context.Context) error {
		issue, err := m.store.GetIssue(txCtx, issueID)
		if err != nil {
			return err
		}
		if issue.AssignedResponderID == nil || *issue.AssignedResponderID != actorID {
			return ErrForbidden
		}
		if !validTransition(issue.Status, target) {
			return ErrInvalidTransition
		}

		oldStatus := issue.Status
		issue.Status = target
		issue.UpdatedAt = time.Now()
		if err := m.store.UpdateIssue(txCtx, issue); err != nil {
			return err
		}

		if _, err := m.trust.AdjustOnTransition(txCtx, issue.ReporterID, oldStatus, target); err != nil {
			return err
		}

		if err := m.store.SaveNotification(txCtx, &models.Notification{
			UserID:    issue.ReporterID,
			IssueID:   &issue.ID,
			Type:      models.NotifyStatus,
			Message:   fmt.Sprintf("Your %s report is now %s", issue.Category, target),
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}

		updated = issue
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.registry.SendToUser(updated.ReporterID.Hex(), map[string]interface{}{
		"type":    "status_changed",
		"issueId": updated.ID.Hex(),
		"status":  updated.Status,
	})
	return updated, nil
}

func validTransition(from, to models.IssueStatus) bool {
	if from.IsTerminal() || from == to {
		return false
	}
	switch to {
	case models.StatusInProgress:
		return from == models.StatusNew
	case models.StatusResolved, models.StatusSpam:
		return from.IsOpen()
	default:
		return false
	}
}

// Upvote toggle outcomes.
const (
	UpvoteAdded   = "added"
	UpvoteRemoved = "removed"
)

type UpvoteResult struct {
	Action   string `json:"action"`
	NewCount int64  `json:"newCount"`
}

// ToggleUpvote adds the user's upvote on first call and removes it on the
// next. The read-modify-write runs inside one transaction so concurrent
// toggles by the same user serialize instead of double counting.
func (m *Lifecycle) ToggleUpvote(ctx context.Context, issueID, userID primitive.ObjectID) (*UpvoteResult, error) {
	var result UpvoteResult
	err := m.store.WithTransaction(ctx, func(txCtx context.Context) error {
		issue, err := m.store.GetIssue(txCtx, issueID)
		if err != nil {
			return err
		}

		_, err = m.store.GetUpvote(txCtx, issueID, userID)
		switch {
		case err == nil:
			if err := m.store.DeleteUpvote(txCtx, issueID, userID); err != nil {
				return err
			}
			issue.UpvoteCount--
			if issue.UpvoteCount < 0 {
				issue.UpvoteCount = 0
			}
			result.Action = UpvoteRemoved
		case errors.Is(err, store.ErrNotFound):
			if err := m.store.InsertUpvote(txCtx, &models.Upvote{
				Issue:     issueID,
				User:      userID,
				CreatedAt: time.Now(),
			}); err != nil {
				return err
			}
			issue.UpvoteCount++
			result.Action = UpvoteAdded
		default:
			return err
		}

		issue.UpdatedAt = time.Now()
		if err := m.store.UpdateIssue(txCtx, issue); err != nil {
			return err
		}
		result.NewCount = issue.UpvoteCount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type ListIssuesOptions struct {
	Category   string
	Status     string
	Department string
	ReporterID *primitive.ObjectID
	Since      *time.Time
	Latitude   *float64
	Longitude  *float64
	RadiusKm   float64
	SortBy     string
	SortAsc    bool
	Limit      int64
	Offset     int64
}

// ListIssues applies the store-side filters and, when coordinates are given,
// narrows the result to issues within the radius (default 5 km). With
// coordinates present, pagination runs after the radius filter; paging the
// store first would drop in-radius issues that fell outside the fetched page.
func (m *Lifecycle) ListIssues(ctx context.Context, opts ListIssuesOptions) ([]models.Issue, error) {
	filter := store.IssueFilter{
		Category:   opts.Category,
		Status:     opts.Status,
		Department: opts.Department,
		ReporterID: opts.ReporterID,
		Since:      opts.Since,
		SortBy:     opts.SortBy,
		SortAsc:    opts.SortAsc,
	}
	hasGeo := opts.Latitude != nil && opts.Longitude != nil
	if !hasGeo {
		filter.Limit = opts.Limit
		filter.Offset = opts.Offset
	}

	issues, err := m.store.QueryIssues(ctx, filter)
	if err != nil {
		return nil, err
	}
	if !hasGeo {
		return issues, nil
	}

	radius := opts.RadiusKm
	if radius <= 0 {
		radius = ProximityRadiusKm
	}
	nearby := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if m.similarity.Haversine(*opts.Latitude, *opts.Longitude, issue.Latitude, issue.Longitude) <= radius {
			nearby = append(nearby, issue)
		}
	}

	if opts.Offset > 0 {
		if opts.Offset >= int64(len(nearby)) {
			nearby = nil
		} else {
			nearby = nearby[opts.Offset:]
		}
	}
	if opts.Limit > 0 && int64(len(nearby)) > opts.Limit {
		nearby = nearby[:opts.Limit]
	}
	return nearby, nil
}

// GetIssue fetches one issue by id.
func (m *Lifecycle) GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	return m.store.GetIssue(ctx, id)
}

// Assign exposes the balancer's selection for a category without creating an
// issue. A nil responder means no one is available.
func (m *Lifecycle) Assign(ctx context.Context, category models.IssueCategory) (*models.User, error) {
	return m.balancer.Assign(ctx, category)
}
