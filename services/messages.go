package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
	"civicpulse-be/realtime"
	"civicpulse-be/store"
)

// MessageService handles the per-issue chat between a reporter and the
// assigned responder.
type MessageService struct {
	store    store.Store
	registry *realtime.Registry
}

func NewMessageService(s store.Store, registry *realtime.Registry) *MessageService {
	return &MessageService{store: s, registry: registry}
}

// Send persists a chat message and notifies the other party. Only the
// reporter and the assigned responder may write.
func (s *MessageService) Send(ctx context.Context, issueID, senderID primitive.ObjectID, body string) (*models.Message, error) {
	issue, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	fromHandler := issue.AssignedResponderID != nil && *issue.AssignedResponderID == senderID
	if !fromHandler && issue.ReporterID != senderID {
		return nil, ErrForbidden
	}

	recipient := issue.ReporterID
	if !fromHandler {
		if issue.AssignedResponderID == nil {
			recipient = primitive.NilObjectID
		} else {
			recipient = *issue.AssignedResponderID
		}
	}

	message := &models.Message{
		IssueID:     issueID,
		SenderID:    senderID,
		Body:        body,
		FromHandler: fromHandler,
		CreatedAt:   time.Now(),
	}

	err = s.store.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.store.SaveMessage(txCtx, message); err != nil {
			return err
		}
		if recipient.IsZero() {
			return nil
		}
		return s.store.SaveNotification(txCtx, &models.Notification{
			UserID:    recipient,
			IssueID:   &issueID,
			Type:      models.NotifyMessage,
			Message:   fmt.Sprintf("New message on your %s report: %s", issue.Category, truncate(body, 50)),
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	if !recipient.IsZero() {
		s.registry.SendToUser(recipient.Hex(), map[string]interface{}{
			"type":    "new_message",
			"issueId": issueID.Hex(),
			"body":    body,
			"sender":  senderID.Hex(),
		})
	}
	return message, nil
}

// History returns the issue's chat, oldest first. Readable only by the
// reporter and the assigned responder.
func (s *MessageService) History(ctx context.Context, issueID, requesterID primitive.ObjectID) ([]models.Message, error) {
	issue, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	isHandler := issue.AssignedResponderID != nil && *issue.AssignedResponderID == requesterID
	if !isHandler && issue.ReporterID != requesterID {
		return nil, ErrForbidden
	}
	return s.store.ListMessages(ctx, issueID)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
