package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"unify/internal/domain"
	"unify/internal/review"
	"unify/internal/storage"
	"unify/pkg/testutil"
)

type reviewFixture struct {
	router http.Handler
	store  *storage.InMemoryStore
}

func newReviewRouter(t *testing.T) *reviewFixture {
	t.Helper()

	store := storage.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(review.NewService(store, logger, nil), logger)
	r := chi.NewRouter()
	h.Register(r)
	return &reviewFixture{router: r, store: store}
}

func (f *reviewFixture) appendPending(t *testing.T, name, email string) domain.DecisionRecord {
	t.Helper()
	rec := domain.DecisionRecord{
		ID:           uuid.New(),
		SourceSystem: domain.SourceAirtable,
		StagedName:   name,
		StagedEmail:  email,
		Outcome:      domain.OutcomePendingReview,
		DataQuality:  domain.QualityValid,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.store.AppendDecision(context.Background(), rec))
	return rec
}

func TestQueueReturnsPendingDecisions(t *testing.T) {
	f := newReviewRouter(t)
	rec := f.appendPending(t, "Janet Smyth", "janet@example.com")

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet, "/review/queue", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	queue := testutil.UnmarshalResponse[QueueResponse](t, rr)
	require.Equal(t, 1, queue.Total)
	require.Len(t, queue.Items, 1)
	require.Equal(t, rec.ID.String(), queue.Items[0].Decision.ID)
	require.Equal(t, "Janet Smyth", queue.Items[0].Decision.StagedName)
}

func TestPromoteActionViaHandler(t *testing.T) {
	f := newReviewRouter(t)
	rec := f.appendPending(t, "Janet Smyth", "janet@example.com")

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t,
		http.MethodPost, "/review/"+rec.ID.String()+"/action", map[string]string{
			"action":       "promote",
			"performed_by": "reviewer@unify",
		}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	res := testutil.UnmarshalResponse[ResolutionResponse](t, rr)
	require.Equal(t, "promote", res.Action)
	require.Equal(t, "reviewer@unify", res.PerformedBy)

	// The decision left the queue.
	rr = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet, "/review/queue", nil))
	queue := testutil.UnmarshalResponse[QueueResponse](t, rr)
	require.Zero(t, queue.Total)
}

func TestActionValidation(t *testing.T) {
	f := newReviewRouter(t)
	rec := f.appendPending(t, "Janet Smyth", "janet@example.com")

	cases := []struct {
		name string
		body map[string]string
	}{
		{"unknown action", map[string]string{"action": "discard", "performed_by": "reviewer@unify"}},
		{"missing performed_by", map[string]string{"action": "promote"}},
		{"bad target", map[string]string{"action": "merge", "performed_by": "reviewer@unify", "target_person_id": "nope"}},
		{"merge without target", map[string]string{"action": "merge", "performed_by": "reviewer@unify"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t,
				http.MethodPost, "/review/"+rec.ID.String()+"/action", tc.body))
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		})
	}
}

func TestRepeatedActionIsIdempotent(t *testing.T) {
	f := newReviewRouter(t)
	rec := f.appendPending(t, "Janet Smyth", "janet@example.com")
	body := map[string]string{"action": "garbage", "performed_by": "reviewer@unify"}

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t,
		http.MethodPost, "/review/"+rec.ID.String()+"/action", body))
	testutil.AssertStatus(t, rr, http.StatusOK)

	// Retrying the same action succeeds without applying it twice.
	rr = testutil.DoRequest(f.router, testutil.NewJSONRequest(t,
		http.MethodPost, "/review/"+rec.ID.String()+"/action", body))
	testutil.AssertStatus(t, rr, http.StatusOK)

	// A different action on the resolved decision conflicts.
	rr = testutil.DoRequest(f.router, testutil.NewJSONRequest(t,
		http.MethodPost, "/review/"+rec.ID.String()+"/action", map[string]string{
			"action":       "promote",
			"performed_by": "reviewer@unify",
		}))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
}

func TestActionOnUnknownDecision(t *testing.T) {
	f := newReviewRouter(t)

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t,
		http.MethodPost, "/review/"+uuid.NewString()+"/action", map[string]string{
			"action":       "promote",
			"performed_by": "reviewer@unify",
		}))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}
