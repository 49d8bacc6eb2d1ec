package resolution

import (
	"unify/internal/domain"
	"unify/internal/match"
)

// Policy holds the tunable thresholds of the linking rules. Values come from
// configuration; the defaults are deliberately conservative so a bad link
// needs both an identifier hit and an agreeing name.
type Policy struct {
	// SimilarityThreshold is the name similarity above which an identifier
	// hit links automatically.
	SimilarityThreshold float64

	// TrustedSourceThreshold is the source score at or above which a
	// diverging name is believed over the identifier hit.
	TrustedSourceThreshold float64
}

// Decide applies the linking rule chain to the best-ranked candidate.
// This is pure domain logic - no I/O, no side effects.
// Rule priority:
//  1. No exact identifier hit - always a new entity. Name blocking alone
//     never links; a blocking miss costs a duplicate, never a bad link.
//  2. Identifier hit with an agreeing name - safe automatic link.
//  3. Identifier hit with a diverging name from a trusted source - believe
//     the name, create a new entity (shared household email, re-used phone).
//  4. Otherwise - a human decides.
func Decide(p Policy, best *match.Candidate, sourceScore float64) domain.Outcome {
	if best == nil || !best.IdentifierMatch() {
		return domain.OutcomeNewEntity
	}
	if best.Similarity > p.SimilarityThreshold {
		return domain.OutcomeAutoLink
	}
	if sourceScore >= p.TrustedSourceThreshold {
		return domain.OutcomeNewEntity
	}
	return domain.OutcomePendingReview
}

// Confidence blends match strength with source trust. A phone hit outranks an
// email hit (emails are shared across households far more often), and a
// name-only candidate starts from its similarity. The source factor scales
// the whole score: a perfect match from a messy importer still deserves
// scrutiny on the dashboard.
func Confidence(best *match.Candidate, sourceScore float64) float64 {
	if best == nil {
		return 0
	}
	var base float64
	switch {
	case best.PhoneMatch:
		base = 1.0
	case best.EmailMatch:
		base = 0.98
	default:
		base = 0.3 + 0.5*best.Similarity
	}
	return base * (0.5 + 0.5*sourceScore)
}
