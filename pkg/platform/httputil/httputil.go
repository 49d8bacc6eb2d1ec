// Package httputil centralizes JSON encoding and domain error translation so
// every handler returns the same response envelope.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "unify/pkg/domain-errors"
)

// errorResponse is the JSON envelope for failed requests.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON encodes v with the given status. Encoding failures are ignored
// because the status line has already been committed.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to an HTTP status and JSON envelope.
// Internal errors omit the description so storage details never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.Description = de.Message
		}
	}
	WriteJSON(w, ToHTTPStatus(code), resp)
}

// ToHTTPStatus maps error codes to HTTP status codes.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeProtected:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Validatable lets request types run field validation right after decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes a JSON request body into T and runs its Validate
// method when implemented, writing the error response and logging on failure.
// The second return is false when the response has already been written.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := new(T)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request decode failed",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed request body"))
		return nil, false
	}
	if v, ok := any(req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			if logger != nil {
				logger.WarnContext(ctx, "request validation failed",
					"request_id", requestID,
					"error", err,
				)
			}
			WriteError(w, err)
			return nil, false
		}
	}
	return req, true
}
