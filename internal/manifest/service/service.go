// Package service orchestrates the submission pipeline: validate, format,
// persist, send, update status. The steps are strictly sequential because the
// gateway leg depends on the store-assigned manifest ID.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"borderlink/internal/events"
	"borderlink/internal/manifest/models"
	"borderlink/internal/manifest/validate"
	"borderlink/internal/manifest/wire"
	"borderlink/internal/platform/metrics"
	dErrors "borderlink/pkg/domain-errors"
	"borderlink/pkg/platform/sentinel"
	"borderlink/pkg/requestcontext"
)

// ManifestStore persists manifests and enforces the forward-only lifecycle.
type ManifestStore interface {
	Create(ctx context.Context, m *models.Manifest) error
	Get(ctx context.Context, id uuid.UUID) (*models.Manifest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Manifest, error)
	UpdateDraft(ctx context.Context, m *models.Manifest) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, gatewayResponse json.RawMessage) error
}

// Gateway sends a formatted payload to the customs gateway.
type Gateway interface {
	Send(ctx context.Context, m *wire.Manifest) (json.RawMessage, error)
}

// EventPublisher fans out manifest lifecycle events.
type EventPublisher interface {
	Emit(ctx context.Context, e events.Event) error
}

// Service drives manifest submission and lifecycle updates.
type Service struct {
	store     ManifestStore
	gateway   Gateway
	formatter *wire.Formatter
	logger    *slog.Logger
	metrics   *metrics.Metrics
	events    EventPublisher
}

// Option configures a Service.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithEvents(publisher EventPublisher) Option {
	return func(s *Service) { s.events = publisher }
}

// New constructs a Service.
func New(store ManifestStore, gateway Gateway, formatter *wire.Formatter, opts ...Option) *Service {
	s := &Service{
		store:     store,
		gateway:   gateway,
		formatter: formatter,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs the full pipeline for a draft bundle. Validation violations
// never reach the network; external failures leave the caller's draft intact
// so the user can retry from review without re-entering data.
func (s *Service) Submit(ctx context.Context, b *models.Bundle) (*models.Manifest, error) {
	valid, violations := validate.Check(b)
	if violations != nil {
		s.incValidationFailures()
		s.logger.WarnContext(ctx, "manifest failed validation",
			"manifest_id", b.Manifest.ID,
			"violations", len(violations),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(violations, dErrors.CodeValidation, violations.Error())
	}

	m := b.Manifest
	if err := m.CanSubmit(); err != nil {
		return nil, err
	}

	// Store first: the gateway payload correlates back to the store-assigned
	// ID, so the create must resolve before the send is issued. A draft that
	// already carries an ID is a retry of a stored record after a gateway
	// failure; it is re-sent, not re-created.
	if m.ID == uuid.Nil {
		if err := s.store.Create(ctx, m); err != nil {
			s.logger.ErrorContext(ctx, "failed to create manifest",
				"trip_number", m.TripNumber,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store manifest")
		}
	} else {
		stored, err := s.store.Get(ctx, m.ID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "manifest not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load manifest")
		}
		if stored.OwnerID != m.OwnerID {
			return nil, dErrors.New(dErrors.CodeNotFound, "manifest not found")
		}
		if stored.Status != models.StatusDraft {
			return nil, dErrors.Newf(dErrors.CodeConflict, "manifest is already %s", stored.Status)
		}
		// Persist the edits so the stored row matches what the gateway sees.
		if err := s.store.UpdateDraft(ctx, m); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update manifest draft")
		}
	}

	payload, err := s.formatter.Format(valid)
	if err != nil {
		// Unreachable when the validator gate holds; fatal to the attempt,
		// not to the process.
		s.logger.ErrorContext(ctx, "failed to format manifest",
			"manifest_id", m.ID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to format manifest")
	}

	ack, err := s.gateway.Send(ctx, payload)
	if err != nil {
		s.incGatewayErrors()
		s.logger.ErrorContext(ctx, "gateway send failed",
			"manifest_id", m.ID,
			"trip_number", m.TripNumber,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.emit(ctx, events.Event{
			ManifestID: m.ID,
			OwnerID:    m.OwnerID,
			Action:     events.ActionManifestSubmissionFailed,
			TripNumber: m.TripNumber,
			Detail:     err.Error(),
		})
		return nil, err
	}

	if err := s.store.UpdateStatus(ctx, m.ID, models.StatusSubmitted, ack); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark manifest submitted",
			"manifest_id", m.ID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update manifest status")
	}
	m.ApplySubmission(ack, requestcontext.Now(ctx))

	s.incManifestsSubmitted()
	s.emit(ctx, events.Event{
		ManifestID: m.ID,
		OwnerID:    m.OwnerID,
		Action:     events.ActionManifestSubmitted,
		TripNumber: m.TripNumber,
	})
	s.logger.InfoContext(ctx, "manifest submitted",
		"manifest_id", m.ID,
		"trip_number", m.TripNumber,
		"manifest_type", m.ManifestType,
		"request_id", requestcontext.RequestID(ctx),
	)
	return m, nil
}

// RecordDecision applies the external gateway confirmation (approved or
// rejected). The core never computes terminal states itself.
func (s *Service) RecordDecision(ctx context.Context, id uuid.UUID, status models.Status, response json.RawMessage) (*models.Manifest, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "status %q is not a gateway decision", status)
	}

	if err := s.store.UpdateStatus(ctx, id, status, response); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "manifest not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.Newf(dErrors.CodeConflict, "manifest cannot move to %s", status)
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record decision")
		}
	}

	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load manifest")
	}
	s.emit(ctx, events.Event{
		ManifestID: m.ID,
		OwnerID:    m.OwnerID,
		Action:     events.ActionManifestDecisionRecorded,
		TripNumber: m.TripNumber,
		Detail:     string(status),
	})
	return m, nil
}

// Get returns a stored manifest scoped to its owner.
func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.Manifest, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "manifest not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load manifest")
	}
	if m.OwnerID != ownerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "manifest not found")
	}
	return m, nil
}

// List returns the owner's manifests, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]*models.Manifest, error) {
	list, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list manifests")
	}
	return list, nil
}

func (s *Service) emit(ctx context.Context, e events.Event) {
	if s.events == nil {
		return
	}
	e.Timestamp = requestcontext.Now(ctx)
	if err := s.events.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to emit lifecycle event",
			"action", e.Action,
			"manifest_id", e.ManifestID,
			"error", err,
		)
	}
}

func (s *Service) incManifestsSubmitted() {
	if s.metrics != nil {
		s.metrics.ManifestsSubmitted.Inc()
	}
}

func (s *Service) incValidationFailures() {
	if s.metrics != nil {
		s.metrics.ValidationFailures.Inc()
	}
}

func (s *Service) incGatewayErrors() {
	if s.metrics != nil {
		s.metrics.GatewayErrors.Inc()
	}
}
