package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"unify/internal/resolution"
	"unify/internal/source"
	"unify/internal/storage"
	"unify/pkg/testutil"
)

func newResolutionRouter(t *testing.T) http.Handler {
	t.Helper()

	store := storage.NewInMemoryStore()
	require.NoError(t, source.Seed(context.Background(), store))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := resolution.NewService(store, resolution.Config{
		Policy: resolution.Policy{
			SimilarityThreshold:    0.5,
			TrustedSourceThreshold: 0.7,
		},
		MaxCandidates: 10,
	}, logger, nil, nil)

	h := New(svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestIngestCreatesAndLinksViaHandler(t *testing.T) {
	router := newResolutionRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/ingest", map[string]string{
		"source_system": "web_intake",
		"name":          "Jane Smith",
		"email":         "Jane.Smith@Example.com",
	})
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	first := testutil.UnmarshalResponse[IngestResponse](t, rr)
	require.Equal(t, "new_entity", first.Outcome)
	require.NotNil(t, first.PersonID)

	// Same email, agreeing name from a second source links automatically.
	req = testutil.NewJSONRequest(t, http.MethodPost, "/ingest", map[string]string{
		"source_system": "clinichq",
		"name":          "J. Smith",
		"email":         "jane.smith@example.com",
	})
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	second := testutil.UnmarshalResponse[IngestResponse](t, rr)
	require.Equal(t, "auto_link", second.Outcome)
	require.NotNil(t, second.PersonID)
	require.Equal(t, *first.PersonID, *second.PersonID)
	require.True(t, second.Evidence.EmailMatch)

	// The created person is retrievable with its normalized identifier.
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/persons/"+*first.PersonID, nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	person := testutil.UnmarshalResponse[PersonResponse](t, rr)
	require.Equal(t, "Jane Smith", person.DisplayName)
	require.Len(t, person.Identifiers, 1)
	require.Equal(t, "jane.smith@example.com", person.Identifiers[0].Value)
}

func TestIngestRejectsMissingFields(t *testing.T) {
	router := newResolutionRouter(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"source_system": "web_intake", "email": "a@b.com"}},
		{"missing source", map[string]string{"name": "Jane Smith", "email": "a@b.com"}},
		{"no usable identifier", map[string]string{"source_system": "web_intake", "name": "Jane Smith"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/ingest", tc.body))
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		})
	}
}

func TestIngestRejectsUnknownSource(t *testing.T) {
	router := newResolutionRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/ingest", map[string]string{
		"source_system": "mystery_feed",
		"name":          "Jane Smith",
		"email":         "jane@example.com",
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
}

func TestGetPersonErrors(t *testing.T) {
	router := newResolutionRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/persons/not-a-uuid", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/persons/"+uuid.NewString(), nil))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}
