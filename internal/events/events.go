// Package events publishes manifest lifecycle events so downstream consumers
// (billing, notifications, compliance archives) can react without polling the
// store. Events are transport-agnostic; publishers fan them out.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Actions emitted by the submission service.
const (
	ActionManifestSubmitted        = "manifest.submitted"
	ActionManifestSubmissionFailed = "manifest.submission_failed"
	ActionManifestDecisionRecorded = "manifest.decision_recorded"
)

// Event captures one manifest lifecycle change.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	ManifestID uuid.UUID `json:"manifest_id"`
	OwnerID    string    `json:"owner_id"`
	Action     string    `json:"action"`
	TripNumber string    `json:"trip_number,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}
