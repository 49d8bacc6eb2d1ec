package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"unify/internal/domain"
	"unify/pkg/platform/httputil"
	"unify/pkg/requestcontext"
)

// Service defines the interface for snapshot reads.
type Service interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Handler serves the data-quality snapshot to the dashboard.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a snapshot handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the snapshot endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/snapshot", h.HandleSnapshot)
}

// HandleSnapshot handles GET /snapshot requests.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.service.Snapshot(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "snapshot read failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, snap)
}
