// Package workflow drives the Upload → Form → Review → Submitting loop for a
// single user session. The session owns the only mutable draft; one busy flag
// gates all input while intake or submission is in flight, so a draft can
// never be submitted twice concurrently.
package workflow

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"borderlink/internal/intake"
	"borderlink/internal/manifest/models"
	dErrors "borderlink/pkg/domain-errors"
)

// State is the workflow position. Transitions:
//
//	Upload → Form        intake completed
//	Form → Review        user confirmed edited values (no network)
//	Review → Form        user-initiated edit, keeps the draft
//	Review → Submitting  explicit confirmation step
//	Submitting → Upload  store + gateway both succeeded, full reset
//	Submitting → Review  any failure, draft preserved for retry
type State string

const (
	StateUpload     State = "upload"
	StateForm       State = "form"
	StateReview     State = "review"
	StateSubmitting State = "submitting"
)

// IntakeClient parses an uploaded document into a canonical draft bundle.
type IntakeClient interface {
	Upload(ctx context.Context, doc intake.Document) (*models.Bundle, error)
}

// Submitter runs the validate/format/store/send pipeline.
type Submitter interface {
	Submit(ctx context.Context, b *models.Bundle) (*models.Manifest, error)
}

// Session is one user's workflow instance. All methods are safe for
// concurrent use; overlapping mutating calls are rejected, not queued.
type Session struct {
	ownerID     string
	intake      IntakeClient
	submitter   Submitter
	checkpoints DraftStore
	logger      *slog.Logger

	mu      sync.Mutex
	state   State
	busy    bool
	draft   *models.Bundle
	lastErr string
}

// View is a read-only snapshot of the session for the transport layer.
type View struct {
	State     State          `json:"state"`
	Busy      bool           `json:"busy"`
	Draft     *models.Bundle `json:"draft,omitempty"`
	LastError string         `json:"last_error,omitempty"`
}

// NewSession builds a fresh session in the Upload state.
func NewSession(ownerID string, intakeClient IntakeClient, submitter Submitter, checkpoints DraftStore, logger *slog.Logger) *Session {
	return &Session{
		ownerID:     ownerID,
		intake:      intakeClient,
		submitter:   submitter,
		checkpoints: checkpoints,
		logger:      logger,
		state:       StateUpload,
	}
}

// Snapshot returns the current session view. The draft is a deep copy: callers
// serialize it outside the session lock, so they must never share the live one.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{State: s.state, Busy: s.busy, Draft: cloneBundle(s.draft), LastError: s.lastErr}
}

// BeginIntake uploads a document and, on success, moves Upload → Form with
// the parsed draft. Intake failure keeps the session in Upload.
func (s *Session) BeginIntake(ctx context.Context, doc intake.Document) (*models.Bundle, error) {
	if err := s.acquire(StateUpload, "a document is already being processed"); err != nil {
		return nil, err
	}

	draft, err := s.intake.Upload(ctx, doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.lastErr = err.Error()
		return nil, err
	}
	draft.Manifest.OwnerID = s.ownerID
	s.draft = draft
	s.state = StateForm
	s.lastErr = ""
	s.checkpoint(ctx)
	return cloneBundle(draft), nil
}

// ConfirmForm accepts the user-edited draft and moves Form → Review. No
// network call happens here.
func (s *Session) ConfirmForm(ctx context.Context, edited *models.Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return dErrors.New(dErrors.CodeConflict, "session is busy")
	}
	if s.state != StateForm {
		return dErrors.Newf(dErrors.CodeConflict, "cannot confirm form from state %s", s.state)
	}
	if edited == nil || edited.Manifest == nil {
		return dErrors.New(dErrors.CodeBadRequest, "draft manifest is required")
	}
	edited.Manifest.OwnerID = s.ownerID
	edited.Manifest.Status = models.StatusDraft
	s.draft = edited
	s.state = StateReview
	s.checkpoint(ctx)
	return nil
}

// Edit moves Review → Form without discarding anything.
func (s *Session) Edit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return dErrors.New(dErrors.CodeConflict, "session is busy")
	}
	if s.state != StateReview {
		return dErrors.Newf(dErrors.CodeConflict, "cannot edit from state %s", s.state)
	}
	s.state = StateForm
	return nil
}

// ConfirmSubmit is the distinct confirmation step that moves Review →
// Submitting and runs the pipeline. Success resets the session to Upload;
// any failure returns it to Review with the draft preserved.
func (s *Session) ConfirmSubmit(ctx context.Context) (*models.Manifest, error) {
	if err := s.acquire(StateReview, "a submission is already in flight"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state = StateSubmitting
	// The pipeline works on a copy so concurrent snapshots never observe its
	// in-flight writes.
	working := cloneBundle(s.draft)
	s.mu.Unlock()

	m, err := s.submitter.Submit(ctx, working)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		// Back to review: the user retries or edits, nothing is discarded.
		// The store may have assigned an ID before the failure; carry it into
		// the draft and checkpoint so a retry (even after a restart) updates
		// the same record instead of creating a second one.
		if working != nil && working.Manifest != nil && working.Manifest.ID != uuid.Nil && s.draft != nil && s.draft.Manifest != nil {
			s.draft.Manifest.ID = working.Manifest.ID
		}
		s.state = StateReview
		s.lastErr = err.Error()
		s.checkpoint(ctx)
		s.logger.WarnContext(ctx, "submission attempt failed",
			"owner_id", s.ownerID,
			"error", err,
		)
		return nil, err
	}

	s.state = StateUpload
	s.draft = nil
	s.lastErr = ""
	s.discardCheckpoint(ctx)
	return m, nil
}

// Resume restores a checkpointed draft after a restart, placing the session
// in Review so the user confirms what was recovered.
func (s *Session) Resume(ctx context.Context) error {
	if s.checkpoints == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUpload || s.draft != nil {
		return nil
	}
	draft, err := s.checkpoints.Load(ctx, s.ownerID)
	if err != nil || draft == nil {
		return err
	}
	s.draft = draft
	s.state = StateReview
	return nil
}

// cloneBundle deep-copies a draft. Bundles already round-trip through JSON for
// checkpointing, so the codec is the copy mechanism too.
func cloneBundle(b *models.Bundle) *models.Bundle {
	if b == nil {
		return nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return nil
	}
	var out models.Bundle
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return &out
}

// acquire validates the state and claims the busy flag in one critical
// section, so two overlapping calls cannot both proceed.
func (s *Session) acquire(from State, busyMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return dErrors.New(dErrors.CodeConflict, busyMsg)
	}
	if s.state != from {
		return dErrors.Newf(dErrors.CodeConflict, "operation requires state %s, session is in %s", from, s.state)
	}
	s.busy = true
	return nil
}

// checkpoint persists the draft best-effort; losing a checkpoint degrades
// restart recovery, never the live session. Callers hold s.mu.
func (s *Session) checkpoint(ctx context.Context) {
	if s.checkpoints == nil || s.draft == nil {
		return
	}
	if err := s.checkpoints.Save(ctx, s.ownerID, s.draft); err != nil {
		s.logger.WarnContext(ctx, "failed to checkpoint draft",
			"owner_id", s.ownerID,
			"error", err,
		)
	}
}

func (s *Session) discardCheckpoint(ctx context.Context) {
	if s.checkpoints == nil {
		return
	}
	if err := s.checkpoints.Delete(ctx, s.ownerID); err != nil {
		s.logger.WarnContext(ctx, "failed to discard draft checkpoint",
			"owner_id", s.ownerID,
			"error", err,
		)
	}
}
