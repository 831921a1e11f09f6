// Package handler exposes the manifest workflow and lifecycle over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"borderlink/internal/intake"
	"borderlink/internal/manifest/models"
	"borderlink/internal/manifest/service"
	"borderlink/internal/workflow"
	dErrors "borderlink/pkg/domain-errors"
	"borderlink/pkg/platform/httputil"
	"borderlink/pkg/requestcontext"
)

// 10 MB cap on uploaded documents.
const maxUploadBytes = 10 << 20

// Handler serves manifest endpoints. Workflow endpoints act on the
// authenticated owner's session; lifecycle endpoints read the store.
type Handler struct {
	sessions   *workflow.Manager
	manifests  *service.Service
	logger     *slog.Logger
	webhookKey string
}

func New(sessions *workflow.Manager, manifests *service.Service, logger *slog.Logger, webhookKey string) *Handler {
	return &Handler{
		sessions:   sessions,
		manifests:  manifests,
		logger:     logger,
		webhookKey: webhookKey,
	}
}

// Intake accepts a multipart document upload plus the header fields the user
// entered, and starts the owner's workflow.
func (h *Handler) Intake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed multipart request"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "document file is required"))
		return
	}
	defer file.Close()

	manifestType := models.ManifestType(r.FormValue("manifest_type"))
	if manifestType != models.TypeACE && manifestType != models.TypeACI {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "manifest_type must be %s or %s", models.TypeACE, models.TypeACI))
		return
	}
	crossing := r.FormValue("border_crossing")
	if crossing == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "border_crossing is required"))
		return
	}
	crossingTime, err := time.Parse(time.RFC3339, r.FormValue("crossing_time"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "crossing_time must be RFC 3339"))
		return
	}

	session := h.sessions.Session(ctx, requestcontext.UserID(ctx))
	draft, err := session.BeginIntake(ctx, intake.Document{
		File:           file,
		Filename:       header.Filename,
		ManifestType:   manifestType,
		BorderCrossing: crossing,
		CrossingTime:   crossingTime,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, draft)
}

// ConfirmDraft accepts the user-edited draft bundle and advances the session
// to review.
func (h *Handler) ConfirmDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var edited models.Bundle
	if err := json.NewDecoder(r.Body).Decode(&edited); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed draft payload"))
		return
	}

	session := h.sessions.Session(ctx, requestcontext.UserID(ctx))
	if err := session.ConfirmForm(ctx, &edited); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session.Snapshot())
}

// Edit returns the session from review to the editable form.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := h.sessions.Session(ctx, requestcontext.UserID(ctx))
	if err := session.Edit(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session.Snapshot())
}

// Submit is the explicit confirmation step: it runs the full submission
// pipeline for the reviewed draft.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := h.sessions.Session(ctx, requestcontext.UserID(ctx))
	m, err := session.ConfirmSubmit(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

// Session returns the owner's current workflow snapshot.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := h.sessions.Session(ctx, requestcontext.UserID(ctx))
	httputil.WriteJSON(w, http.StatusOK, session.Snapshot())
}

// List returns the owner's manifests, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.manifests.List(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// Get returns one of the owner's manifests by ID.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "manifest id must be a UUID"))
		return
	}
	m, err := h.manifests.Get(ctx, requestcontext.UserID(ctx), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

type decisionRequest struct {
	Status   models.Status   `json:"status"`
	Response json.RawMessage `json:"response,omitempty"`
}

// Decision is the gateway callback that records an approved or rejected
// outcome. It authenticates with the shared webhook key, not a user token.
func (h *Handler) Decision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.webhookKey == "" || r.Header.Get("X-Webhook-Key") != h.webhookKey {
		h.logger.WarnContext(ctx, "decision webhook rejected",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid webhook key"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "manifest id must be a UUID"))
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed decision payload"))
		return
	}

	m, err := h.manifests.RecordDecision(ctx, id, req.Status, req.Response)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}
