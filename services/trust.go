package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/models"
	"civicpulse-be/store"
)

const (
	// TrustMin and TrustMax bound every reporter's trust score.
	TrustMin = 0.0
	TrustMax = 100.0

	spamPenalty   = 10.0
	resolveReward = 10.0
)

// TrustLedger maintains the bounded reputation score per reporter, adjusted
// by specific status transitions.
type TrustLedger struct {
	store store.Store
}

func NewTrustLedger(s store.Store) *TrustLedger {
	return &TrustLedger{store: s}
}

// AdjustOnTransition applies the trust rule for a status transition and, when
// a rule fires, records one notification explaining the change to the
// reporter. Callers run it inside the transaction of the transition so the
// adjustment and its notification commit with the status change or not at
// all. Returns the reporter's score after the call.
func (l *TrustLedger) AdjustOnTransition(ctx context.Context, reporterID primitive.ObjectID, oldStatus, newStatus models.IssueStatus) (float64, error) {
	delta := 0.0
	switch {
	case newStatus == models.StatusSpam && oldStatus != models.StatusSpam:
		delta = -spamPenalty
	case newStatus == models.StatusResolved && oldStatus.IsOpen():
		delta = resolveReward
	}

	reporter, err := l.store.GetUser(ctx, reporterID)
	if err != nil {
		return 0, err
	}
	if delta == 0 {
		return reporter.TrustScore, nil
	}

	score := reporter.TrustScore + delta
	if score < TrustMin {
		score = TrustMin
	}
	if score > TrustMax {
		score = TrustMax
	}
	reporter.TrustScore = score
	reporter.UpdatedAt = time.Now()

	if err := l.store.UpdateUser(ctx, reporter); err != nil {
		return 0, err
	}

	message := fmt.Sprintf("Your trust score increased by %.0f to %.0f", delta, score)
	if delta < 0 {
		message = fmt.Sprintf("Your trust score decreased by %.0f to %.0f (report marked as spam)", -delta, score)
	}
	err = l.store.SaveNotification(ctx, &models.Notification{
		UserID:    reporterID,
		Type:      models.NotifyTrustChange,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}
