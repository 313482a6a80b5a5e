package services

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidTransition rejects unknown or terminal-state target statuses
	// before any side effect runs.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrForbidden is returned when a user acts on an issue they neither
	// reported nor handle.
	ErrForbidden = errors.New("not allowed")
)

// DuplicateRejectedError blocks issue creation when submitted media matches
// media on a recent existing issue. It carries the matched issue ids and a
// human-readable reason per match.
type DuplicateRejectedError struct {
	IssueIDs []primitive.ObjectID
	Reasons  []string
}

func (e *DuplicateRejectedError) Error() string {
	return fmt.Sprintf("duplicate issue rejected: %s", strings.Join(e.Reasons, "; "))
}
