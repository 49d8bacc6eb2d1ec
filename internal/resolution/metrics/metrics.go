package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the resolution module.
type Metrics struct {
	// Resolution outcomes by outcome and source system
	Outcomes *prometheus.CounterVec

	// Full ingest latency including lookup and the graph mutation
	IngestLatency prometheus.Histogram

	// Candidate set size per lookup
	CandidateCount prometheus.Histogram
}

// New creates a new Metrics instance with all resolution module metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "unify_resolution_outcomes_total",
			Help: "Total resolution outcomes by outcome and source system",
		}, []string{"outcome", "source_system"}),

		IngestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unify_resolution_ingest_duration_seconds",
			Help:    "Duration of full record ingestion including the graph mutation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		CandidateCount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unify_resolution_candidates_per_lookup",
			Help:    "Number of scored candidates returned per lookup",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		}),
	}
}

// IncrementOutcome records a resolution outcome.
func (m *Metrics) IncrementOutcome(outcome, sourceSystem string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome, sourceSystem).Inc()
	}
}

// ObserveIngestLatency records the total ingest duration.
func (m *Metrics) ObserveIngestLatency(d time.Duration) {
	if m != nil {
		m.IngestLatency.Observe(d.Seconds())
	}
}

// ObserveCandidateCount records the size of a scored candidate set.
func (m *Metrics) ObserveCandidateCount(n int) {
	if m != nil {
		m.CandidateCount.Observe(float64(n))
	}
}
