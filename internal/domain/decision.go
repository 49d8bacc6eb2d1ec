package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome enumerates the possible resolution decisions for a staged record.
type Outcome string

const (
	OutcomeAutoLink      Outcome = "auto_link"
	OutcomeNewEntity     Outcome = "new_entity"
	OutcomePendingReview Outcome = "pending_review"
)

// ReviewAction enumerates the human corrections applied to pending reviews.
type ReviewAction string

const (
	ActionPromote ReviewAction = "promote"
	ActionGarbage ReviewAction = "garbage"
	ActionMerge   ReviewAction = "merge"
)

// MatchEvidence explains why a decision landed where it did. Stored alongside
// the decision so reviewers and dashboards can see the signals.
type MatchEvidence struct {
	EmailMatch     bool     `json:"email_match"`
	PhoneMatch     bool     `json:"phone_match"`
	NameSimilarity float64  `json:"name_similarity"`
	MatchedOn      []string `json:"matched_on,omitempty"`
	Tier           int      `json:"tier"`
}

// Tier buckets a confidence score into the match tiers the dashboard reports.
func Tier(confidence float64) int {
	switch {
	case confidence >= 0.95:
		return 0
	case confidence >= 0.80:
		return 1
	case confidence >= 0.50:
		return 2
	default:
		return 3
	}
}

// DecisionRecord is the immutable audit row produced for every ingested
// record. Never updated; a later human action is captured as its own
// resolution row.
type DecisionRecord struct {
	ID              uuid.UUID
	SourceSystem    string
	StagedName      string
	StagedEmail     string
	StagedPhone     string
	Outcome         Outcome
	MatchedPersonID *uuid.UUID
	BestCandidateID *uuid.UUID
	Similarity      float64
	Confidence      float64
	Evidence        MatchEvidence
	DataQuality     DataQuality
	CreatedAt       time.Time
}

// ReviewResolution records a human action taken on a pending_review decision.
// A decision with a resolution no longer appears in the review queue.
type ReviewResolution struct {
	DecisionID     uuid.UUID
	Action         ReviewAction
	TargetPersonID *uuid.UUID
	PerformedBy    string
	CreatedAt      time.Time
}

// ReviewQueueItem pairs a pending decision with the best-candidate context a
// reviewer needs to judge it.
type ReviewQueueItem struct {
	Decision      DecisionRecord
	BestCandidate *CanonicalPerson
}
