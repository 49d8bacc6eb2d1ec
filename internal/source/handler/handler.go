package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"unify/internal/domain"
	dErrors "unify/pkg/domain-errors"
	"unify/pkg/platform/httputil"
	"unify/pkg/requestcontext"
)

// Service defines the interface for source registry operations.
type Service interface {
	Get(ctx context.Context, sourceSystem string) (domain.SourceConfidence, error)
	List(ctx context.Context) ([]domain.SourceConfidence, error)
	Upsert(ctx context.Context, sourceSystem string, score float64, description string) (domain.SourceConfidence, error)
	Delete(ctx context.Context, sourceSystem string) error
}

// Handler wires source-confidence admin endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a source handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts source registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/sources", h.HandleList)
	r.Get("/sources/{sourceSystem}", h.HandleGet)
	r.Put("/sources/{sourceSystem}", h.HandleUpsert)
	r.Delete("/sources/{sourceSystem}", h.HandleDelete)
}

// UpsertRequest is the HTTP request body for PUT /sources/{sourceSystem}.
type UpsertRequest struct {
	Score       float64 `json:"score"`
	Description string  `json:"description,omitempty"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpsertRequest) Validate() error {
	if r.Score < 0 || r.Score > 1 {
		return dErrors.Newf(dErrors.CodeValidation, "confidence score %v out of range [0,1]", r.Score)
	}
	return nil
}

// SourceResponse is the JSON representation of a source-confidence entry.
type SourceResponse struct {
	SourceSystem string    `json:"source_system"`
	Score        float64   `json:"score"`
	Description  string    `json:"description,omitempty"`
	Core         bool      `json:"core"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func fromSource(sc domain.SourceConfidence) SourceResponse {
	return SourceResponse{
		SourceSystem: sc.SourceSystem,
		Score:        sc.Score,
		Description:  sc.Description,
		Core:         domain.IsCoreSource(sc.SourceSystem),
		UpdatedAt:    sc.UpdatedAt,
	}
}

// HandleList handles GET /sources requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	sources, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "source list failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]SourceResponse, 0, len(sources))
	for _, sc := range sources {
		out = append(out, fromSource(sc))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /sources/{sourceSystem} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sc, err := h.service.Get(r.Context(), chi.URLParam(r, "sourceSystem"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSource(sc))
}

// HandleUpsert handles PUT /sources/{sourceSystem} requests.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpsertRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sc, err := h.service.Upsert(ctx, chi.URLParam(r, "sourceSystem"), req.Score, req.Description)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSource(sc))
}

// HandleDelete handles DELETE /sources/{sourceSystem} requests. Core sources
// are protected and cannot be removed.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "sourceSystem")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
