package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"borderlink/internal/platform/metrics"
	"borderlink/internal/platform/middleware"
	dErrors "borderlink/pkg/domain-errors"
	"borderlink/pkg/platform/httputil"
)

// HealthFunc reports readiness of a backing dependency.
type HealthFunc func(ctx context.Context) error

// NewRouter assembles the full HTTP surface: operational endpoints without
// auth, the decision webhook with its own key, and user routes behind JWT.
func NewRouter(h *Handler, validator middleware.JWTValidator, m *metrics.Metrics, logger *slog.Logger, health HealthFunc) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "dependency unhealthy"))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Gateway callback, authenticated by webhook key inside the handler.
	r.Post("/manifests/{id}/decision", h.Decision)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))

		r.Post("/manifests/intake", h.Intake)
		r.Post("/manifests/draft", h.ConfirmDraft)
		r.Post("/manifests/edit", h.Edit)
		r.Post("/manifests/submit", h.Submit)
		r.Get("/manifests/session", h.Session)

		r.Get("/manifests", h.List)
		r.Get("/manifests/{id}", h.Get)
	})

	return r
}
