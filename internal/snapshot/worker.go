package snapshot

import (
	"context"
	"time"
)

// Worker recomputes the snapshot on a fixed interval so the cache stays warm
// and backlog escalations surface without waiting for a dashboard visit.
type Worker struct {
	service  *Service
	interval time.Duration
}

func NewWorker(service *Service, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Worker{service: service, interval: interval}
}

// Run recomputes until the context is cancelled. Failures are logged and the
// next tick retries; a broken snapshot must never take ingestion down.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snap, err := w.service.Refresh(ctx)
			if err != nil {
				w.service.logger.Error("snapshot refresh failed", "error", err)
				continue
			}
			w.service.logger.Info("snapshot refreshed",
				"total_persons", snap.TotalPersons,
				"pending_reviews", snap.PendingReviews,
				"problems", len(snap.Problems),
			)
		}
	}
}
