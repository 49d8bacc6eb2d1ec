package domain

import (
	"time"

	"github.com/google/uuid"
)

// DataQuality classifies a canonical person record. A closed enum so the
// engine's classification logic is exhaustively checked.
type DataQuality string

const (
	QualityValid        DataQuality = "valid"
	QualityGarbage      DataQuality = "garbage"
	QualityOrgAsPerson  DataQuality = "org_as_person"
	QualityNonCanonical DataQuality = "non_canonical"
)

// Known reports whether q is one of the defined quality tags.
func (q DataQuality) Known() bool {
	switch q {
	case QualityValid, QualityGarbage, QualityOrgAsPerson, QualityNonCanonical:
		return true
	}
	return false
}

// IdentifierKind enumerates the identifier channels used for exact matching.
type IdentifierKind string

const (
	IdentifierEmail IdentifierKind = "email"
	IdentifierPhone IdentifierKind = "phone"
)

// Identifier is a normalized contact point attached to a person, tagged with
// the source system that contributed it.
type Identifier struct {
	Kind   IdentifierKind
	Value  string
	Source string
}

// CanonicalPerson is the single authoritative identity a set of source
// submissions resolves to. A person with IsCanonical=false is a tombstone
// merged into another person; it is retained for audit but never returned as
// a match target.
type CanonicalPerson struct {
	ID          uuid.UUID
	DisplayName string
	Identifiers []Identifier
	DataQuality DataQuality
	IsCanonical bool
	Provenance  string
	CreatedAt   time.Time
}

// HasIdentifier reports whether the person already carries the given
// normalized identifier value.
func (p *CanonicalPerson) HasIdentifier(kind IdentifierKind, value string) bool {
	for _, id := range p.Identifiers {
		if id.Kind == kind && id.Value == value {
			return true
		}
	}
	return false
}

// Matchable reports whether the person may be offered as a match target.
// Tombstones and garbage records are excluded from all matching surfaces.
func (p *CanonicalPerson) Matchable() bool {
	return p.IsCanonical && p.DataQuality != QualityGarbage
}

// MergeEdge records a person merged into another. Edges form a forest; the
// target must be canonical at merge time so chains never point at tombstones.
type MergeEdge struct {
	SourcePersonID uuid.UUID
	TargetPersonID uuid.UUID
	Reason         string
	PerformedBy    string
	CreatedAt      time.Time
}
