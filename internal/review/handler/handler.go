package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"unify/internal/domain"
	dErrors "unify/pkg/domain-errors"
	"unify/pkg/platform/httputil"
	"unify/pkg/requestcontext"
)

// Service defines the interface for review operations.
type Service interface {
	Queue(ctx context.Context, limit, offset int) ([]domain.ReviewQueueItem, int, error)
	Resolve(ctx context.Context, decisionID uuid.UUID, action domain.ReviewAction, targetID *uuid.UUID, performedBy string) (*domain.ReviewResolution, error)
}

// Handler wires review-queue endpoints to the review service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a review handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts review endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/review/queue", h.HandleQueue)
	r.Post("/review/{decisionID}/action", h.HandleAction)
}

// HandleQueue handles GET /review/queue requests.
func (h *Handler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	items, total, err := h.service.Queue(ctx, limit, offset)
	if err != nil {
		h.logger.ErrorContext(ctx, "review queue read failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromQueue(items, total, limit, offset))
}

// HandleAction handles POST /review/{decisionID}/action requests.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	decisionID, err := uuid.Parse(chi.URLParam(r, "decisionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid decision id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[ActionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ctx = requestcontext.WithReviewer(ctx, req.PerformedBy)
	res, err := h.service.Resolve(ctx, decisionID, req.ParsedAction(), req.ParsedTarget(), req.PerformedBy)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "review action failed",
				"request_id", requestID,
				"decision_id", decisionID,
				"action", req.Action,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromResolution(res))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
