// Package storage defines the persistence interfaces for the identity graph,
// the decision log, and the source registry, with in-memory and Postgres
// implementations. Interfaces keep domain logic testable and let the memory
// store back unit tests without rewiring business code.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"unify/internal/domain"
)

// Graph is the canonical identity graph plus the decision mutations that
// touch it. The find methods exclude tombstoned and garbage persons. The
// WithDecision mutations commit the graph change and the decision record as
// one atomic unit.
type Graph interface {
	FindByEmail(ctx context.Context, email string) ([]domain.CanonicalPerson, error)
	FindByPhone(ctx context.Context, phone string) ([]domain.CanonicalPerson, error)
	FindByNameTokens(ctx context.Context, firstToken, lastToken string) ([]domain.CanonicalPerson, error)
	GetPerson(ctx context.Context, id uuid.UUID) (domain.CanonicalPerson, error)

	// ResolveRoot follows merge edges from id to the current canonical
	// person, compressing the path as it goes.
	ResolveRoot(ctx context.Context, id uuid.UUID) (domain.CanonicalPerson, error)

	CreatePersonWithDecision(ctx context.Context, person domain.CanonicalPerson, rec domain.DecisionRecord) error
	LinkIdentifiersWithDecision(ctx context.Context, personID uuid.UUID, idents []domain.Identifier, rec domain.DecisionRecord) error
	AppendDecision(ctx context.Context, rec domain.DecisionRecord) error
}

// ReviewLog reads pending decisions and applies human corrections. The
// mutation methods commit the graph change and the resolution row atomically.
type ReviewLog interface {
	GetDecision(ctx context.Context, id uuid.UUID) (domain.DecisionRecord, error)
	GetResolution(ctx context.Context, decisionID uuid.UUID) (domain.ReviewResolution, error)
	ListPending(ctx context.Context, limit, offset int) ([]domain.DecisionRecord, error)
	CountPending(ctx context.Context) (int, error)

	Promote(ctx context.Context, personID uuid.UUID, res domain.ReviewResolution) error
	MarkGarbage(ctx context.Context, personID uuid.UUID, res domain.ReviewResolution) error

	// CreatePersonWithResolution materializes a person out of a pending
	// decision's staged fields and records the resolution atomically.
	CreatePersonWithResolution(ctx context.Context, person domain.CanonicalPerson, res domain.ReviewResolution) error

	// LinkIdentifiersWithResolution attaches staged identifiers to an existing
	// person as a reviewer-approved link.
	LinkIdentifiersWithResolution(ctx context.Context, personID uuid.UUID, idents []domain.Identifier, res domain.ReviewResolution) error

	// Merge tombstones the edge's source person, re-points its identifiers
	// at the target, and records the edge and resolution together. Fails
	// with a conflict when the target is itself a tombstone.
	Merge(ctx context.Context, edge domain.MergeEdge, res domain.ReviewResolution) error
}

// SnapshotReader provides the read-only aggregates behind the data-quality
// dashboard. Implementations must not mutate anything.
type SnapshotReader interface {
	CountPersons(ctx context.Context) (total, canonical int, err error)
	CountByQuality(ctx context.Context) (map[domain.DataQuality]int, error)
	CountPersonsCreatedSince(ctx context.Context, since time.Time) (int, error)
	CountDecisionsByOutcome(ctx context.Context) (map[domain.Outcome]int, error)
	CountDecisionsSince(ctx context.Context, since time.Time) (int, error)
}

// Sources is the source-confidence registry. Core-source delete protection is
// enforced by the service layer, not here.
type Sources interface {
	GetSource(ctx context.Context, sourceSystem string) (domain.SourceConfidence, error)
	ListSources(ctx context.Context) ([]domain.SourceConfidence, error)
	UpsertSource(ctx context.Context, sc domain.SourceConfidence) error
	DeleteSource(ctx context.Context, sourceSystem string) error
}

// Store is the full persistence surface the server wires once.
type Store interface {
	Graph
	ReviewLog
	SnapshotReader
	Sources
}
