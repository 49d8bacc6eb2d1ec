package audit

import (
	"context"
	"log/slog"
	"time"
)

// Sink delivers a single event to an external consumer.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Recorder buffers events from domain logic and fans them out to sinks on a
// background goroutine. Emit never blocks; when the buffer is full the event
// is dropped and counted, because ingestion latency matters more than a
// best-effort feed.
type Recorder struct {
	inbox  chan Event
	sinks  []Sink
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger, buffer int, sinks ...Sink) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{
		inbox:  make(chan Event, buffer),
		sinks:  sinks,
		logger: logger,
	}
}

// Emit enqueues an event for delivery. Safe to call on a nil recorder so
// callers can run without an audit stream wired.
func (r *Recorder) Emit(event Event) {
	if r == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case r.inbox <- event:
	default:
		r.logger.Warn("audit event dropped", "decision_id", event.DecisionID, "kind", event.Kind)
	}
}

// Run consumes the inbox until the context is cancelled. Sink failures are
// logged and skipped; one slow sink must not stall the others.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-r.inbox:
			for _, sink := range r.sinks {
				if err := sink.Publish(ctx, event); err != nil {
					r.logger.Error("audit publish failed", "decision_id", event.DecisionID, "error", err)
				}
			}
		}
	}
}
