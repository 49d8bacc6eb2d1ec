package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"unify/internal/domain"
	"unify/internal/resolution"
	dErrors "unify/pkg/domain-errors"
	"unify/pkg/platform/httputil"
	"unify/pkg/requestcontext"
)

// Service defines the interface for resolution operations.
type Service interface {
	Ingest(ctx context.Context, rec domain.StagedRecord) (*resolution.Result, error)
	Person(ctx context.Context, id uuid.UUID) (domain.CanonicalPerson, error)
}

// Handler wires ingest and person-lookup endpoints to the resolution service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a resolution handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts resolution endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/ingest", h.HandleIngest)
	r.Get("/persons/{personID}", h.HandleGetPerson)
}

// HandleIngest handles POST /ingest requests.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IngestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Ingest(ctx, req.ToStagedRecord(requestcontext.Now(ctx)))
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "ingest failed",
				"request_id", requestID,
				"source_system", req.SourceSystem,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleGetPerson handles GET /persons/{personID} requests. A tombstoned ID
// resolves to its current canonical person.
func (h *Handler) HandleGetPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	personID, err := uuid.Parse(chi.URLParam(r, "personID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid person id"))
		return
	}

	person, err := h.service.Person(ctx, personID)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "person lookup failed",
				"request_id", requestID,
				"person_id", personID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromPerson(person))
}
