package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	dErrors "borderlink/pkg/domain-errors"
)

// ManifestType selects the regulatory dialect: ACE for U.S. crossings, ACI for
// Canadian crossings. The two values are the whole universe; code switching on
// a ManifestType must not have a default arm that invents behavior.
type ManifestType string

const (
	TypeACE ManifestType = "ACE"
	TypeACI ManifestType = "ACI"
)

func (t ManifestType) Valid() bool {
	return t == TypeACE || t == TypeACI
}

// Status tracks a manifest through its lifecycle.
//
// Transitions are forward-only: draft → submitted → {approved, rejected}.
// Terminal statuses are set from an external gateway confirmation; the service
// never computes them locally.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// CanTransitionTo reports whether the forward-only lifecycle allows moving to
// the target status.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSubmitted
	case StatusSubmitted:
		return target == StatusApproved || target == StatusRejected
	default:
		return false
	}
}

// Manifest is the aggregate root for a customs trip declaration.
//
// Invariants:
//   - ManifestType is ACE or ACI
//   - Status follows the forward-only lifecycle above
//   - ID is assigned by the store on create and immutable thereafter
//   - Mutable only while Status is draft
type Manifest struct {
	ID               uuid.UUID       `json:"id"`
	OwnerID          string          `json:"owner_id"`
	ManifestType     ManifestType    `json:"manifest_type"`
	TripNumber       string          `json:"trip_number"`
	PortOfEntry      string          `json:"port_of_entry"`
	EstimatedArrival time.Time       `json:"estimated_arrival"`
	Status           Status          `json:"status"`
	GatewayResponse  json.RawMessage `json:"gateway_response,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CanSubmit checks the draft → submitted transition. Use with ApplySubmission
// so callers can validate before the store/gateway leg starts.
func (m *Manifest) CanSubmit() error {
	if !m.Status.CanTransitionTo(StatusSubmitted) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "manifest %s cannot be submitted from status %s", m.ID, m.Status)
	}
	return nil
}

// ApplySubmission transitions the manifest to submitted and records the raw
// gateway acknowledgement. Call CanSubmit first.
func (m *Manifest) ApplySubmission(ack json.RawMessage, now time.Time) {
	m.Status = StatusSubmitted
	m.GatewayResponse = ack
	m.UpdatedAt = now
}

// NewManifest constructs a draft manifest, validating invariants.
func NewManifest(ownerID string, manifestType ManifestType, tripNumber, portOfEntry string, estimatedArrival time.Time, now time.Time) (*Manifest, error) {
	if !manifestType.Valid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown manifest type %q", manifestType)
	}
	return &Manifest{
		OwnerID:          ownerID,
		ManifestType:     manifestType,
		TripNumber:       tripNumber,
		PortOfEntry:      portOfEntry,
		EstimatedArrival: estimatedArrival,
		Status:           StatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}
