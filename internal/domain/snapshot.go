package domain

import "time"

// ProblemSeverity grades a detected data-quality problem.
type ProblemSeverity string

const (
	SeverityWarning  ProblemSeverity = "warning"
	SeverityCritical ProblemSeverity = "critical"
)

// Problem is a detected data-quality issue surfaced on the dashboard.
type Problem struct {
	Code     string          `json:"code"`
	Severity ProblemSeverity `json:"severity"`
	Message  string          `json:"message"`
	Count    int             `json:"count"`
}

// Snapshot is the aggregate dashboard payload. Derived and recomputable from
// the graph and decision log, never incremented in place.
type Snapshot struct {
	GeneratedAt      time.Time           `json:"generated_at"`
	TotalPersons     int                 `json:"total_persons"`
	CanonicalPersons int                 `json:"canonical_persons"`
	ByQuality        map[DataQuality]int `json:"by_quality"`
	CreatedLast24h   int                 `json:"created_last_24h"`
	DecisionsLast24h int                 `json:"decisions_last_24h"`
	PendingReviews   int                 `json:"pending_reviews"`
	AutoLinkTotal    int                 `json:"auto_link_total"`
	NewEntityTotal   int                 `json:"new_entity_total"`
	AutoLinkRatio    float64             `json:"auto_link_ratio"`
	Problems         []Problem           `json:"problems"`
}
