package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "unify/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("validation error includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "name is required"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "validation_error" {
			t.Fatalf("expected error code validation_error, got %q", body["error"])
		}
		if body["error_description"] != "name is required" {
			t.Fatalf("expected error_description for validation errors, got %q", body["error_description"])
		}
	})

	t.Run("uncoded error defaults to internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, context.DeadlineExceeded)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeValidation: http.StatusBadRequest,
		dErrors.CodeConflict:   http.StatusConflict,
		dErrors.CodeNotFound:   http.StatusNotFound,
		dErrors.CodeProtected:  http.StatusForbidden,
		dErrors.CodeInternal:   http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := ToHTTPStatus(code); got != want {
			t.Errorf("code %s: expected %d, got %d", code, want, got)
		}
	}
}

type stubRequest struct {
	Name string `json:"name"`
}

func (r *stubRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("valid body decodes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Jane"}`))

		req, ok := DecodeAndPrepare[stubRequest](w, r, nil, r.Context(), "test-request")
		if !ok {
			t.Fatalf("expected decode to succeed, response: %s", w.Body.String())
		}
		if req.Name != "Jane" {
			t.Fatalf("expected name Jane, got %q", req.Name)
		}
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))

		_, ok := DecodeAndPrepare[stubRequest](w, r, nil, r.Context(), "test-request")
		if ok {
			t.Fatal("expected decode to fail")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("validation failure writes error", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))

		_, ok := DecodeAndPrepare[stubRequest](w, r, nil, r.Context(), "test-request")
		if ok {
			t.Fatal("expected validation to fail")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "validation_error" {
			t.Fatalf("expected error code validation_error, got %q", body["error"])
		}
	})
}
