// Package audit streams resolution decisions to external consumers. The
// decision log in storage is the system of record; this stream is a
// best-effort feed for downstream dashboards and never blocks ingestion.
package audit

import (
	"time"

	"github.com/google/uuid"

	"unify/internal/domain"
)

// Event is emitted for every resolution decision and review action. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp    time.Time          `json:"timestamp"`
	Kind         string             `json:"kind"`
	DecisionID   uuid.UUID          `json:"decision_id"`
	SourceSystem string             `json:"source_system,omitempty"`
	Outcome      domain.Outcome     `json:"outcome,omitempty"`
	Action       string             `json:"action,omitempty"`
	PersonID     *uuid.UUID         `json:"person_id,omitempty"`
	Similarity   float64            `json:"similarity,omitempty"`
	Confidence   float64            `json:"confidence,omitempty"`
	DataQuality  domain.DataQuality `json:"data_quality,omitempty"`
	PerformedBy  string             `json:"performed_by,omitempty"`
}

const (
	KindDecision = "decision"
	KindReview   = "review"
)
