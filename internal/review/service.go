// Package review implements the corrective workflow for pending decisions.
// Reviewers promote, garbage-mark, or merge flagged records; each action
// resolves exactly one decision and mutates the graph atomically with its
// resolution row.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"unify/internal/audit"
	"unify/internal/domain"
	"unify/internal/storage"
	dErrors "unify/pkg/domain-errors"
	"unify/pkg/requestcontext"
)

const defaultPageSize = 50

// Service applies human review actions to the decision log and identity graph.
type Service struct {
	store  storage.Store
	logger *slog.Logger
	audit  *audit.Recorder
}

func NewService(store storage.Store, logger *slog.Logger, rec *audit.Recorder) *Service {
	return &Service{store: store, logger: logger, audit: rec}
}

// Queue returns a page of pending decisions with best-candidate context,
// plus the total pending count for pagination.
func (s *Service) Queue(ctx context.Context, limit, offset int) ([]domain.ReviewQueueItem, int, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	pending, err := s.store.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending: %w", err)
	}
	total, err := s.store.CountPending(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count pending: %w", err)
	}

	items := make([]domain.ReviewQueueItem, 0, len(pending))
	for _, rec := range pending {
		item := domain.ReviewQueueItem{Decision: rec}
		if rec.BestCandidateID != nil {
			p, err := s.store.GetPerson(ctx, *rec.BestCandidateID)
			if err == nil {
				item.BestCandidate = &p
			} else if !dErrors.IsCode(err, dErrors.CodeNotFound) {
				return nil, 0, fmt.Errorf("load best candidate: %w", err)
			}
		}
		items = append(items, item)
	}
	return items, total, nil
}

// Resolve applies a review action to the decision's person, materializing one
// from the staged record when the decision was left pending. Re-invoking the
// same action on an already-resolved decision is a no-op success; a different
// action fails with a conflict.
func (s *Service) Resolve(ctx context.Context, decisionID uuid.UUID, action domain.ReviewAction, targetID *uuid.UUID, performedBy string) (*domain.ReviewResolution, error) {
	decision, err := s.store.GetDecision(ctx, decisionID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.store.GetResolution(ctx, decisionID); err == nil {
		if sameResolution(existing, action, targetID) {
			return &existing, nil
		}
		return nil, dErrors.Newf(dErrors.CodeConflict, "decision %s already resolved with %s", decisionID, existing.Action)
	} else if !dErrors.IsCode(err, dErrors.CodeNotFound) {
		return nil, fmt.Errorf("load resolution: %w", err)
	}

	res := domain.ReviewResolution{
		DecisionID:     decisionID,
		Action:         action,
		TargetPersonID: targetID,
		PerformedBy:    performedBy,
		CreatedAt:      requestcontext.Now(ctx),
	}

	switch action {
	case domain.ActionPromote:
		err = s.applyQuality(ctx, decision, domain.QualityValid, res)
	case domain.ActionGarbage:
		err = s.applyQuality(ctx, decision, domain.QualityGarbage, res)
	case domain.ActionMerge:
		err = s.applyMerge(ctx, decision, targetID, res)
	default:
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown review action %q", action)
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review action applied",
		"request_id", requestcontext.RequestID(ctx),
		"decision_id", decisionID,
		"action", action,
		"performed_by", performedBy,
	)
	s.audit.Emit(audit.Event{
		Kind:        audit.KindReview,
		DecisionID:  decisionID,
		Action:      string(action),
		PersonID:    targetID,
		PerformedBy: performedBy,
	})
	return &res, nil
}

// applyQuality handles promote and garbage. When the decision already points
// at a person, its quality tag is rewritten in place; for a pending decision
// the person is materialized with that tag so nothing is lost for audit.
func (s *Service) applyQuality(ctx context.Context, decision domain.DecisionRecord, quality domain.DataQuality, res domain.ReviewResolution) error {
	if decision.MatchedPersonID != nil {
		if quality == domain.QualityGarbage {
			return s.store.MarkGarbage(ctx, *decision.MatchedPersonID, res)
		}
		return s.store.Promote(ctx, *decision.MatchedPersonID, res)
	}
	person := personFromDecision(decision, quality, res.CreatedAt)
	return s.store.CreatePersonWithResolution(ctx, person, res)
}

// applyMerge tombstones the decision's person into the target, or, for a
// pending decision with no person, attaches the staged identifiers to the
// target as a reviewer-approved link.
func (s *Service) applyMerge(ctx context.Context, decision domain.DecisionRecord, targetID *uuid.UUID, res domain.ReviewResolution) error {
	if targetID == nil {
		return dErrors.New(dErrors.CodeValidation, "merge requires a target_person_id")
	}
	target, err := s.store.GetPerson(ctx, *targetID)
	if err != nil {
		return err
	}
	if !target.IsCanonical {
		return dErrors.Newf(dErrors.CodeConflict, "merge target %s is a tombstone; resolve to its root first", target.ID)
	}

	if decision.MatchedPersonID == nil {
		idents := stagedIdentifiers(decision)
		return s.store.LinkIdentifiersWithResolution(ctx, target.ID, idents, res)
	}

	if *decision.MatchedPersonID == target.ID {
		return dErrors.New(dErrors.CodeValidation, "cannot merge a person into itself")
	}
	edge := domain.MergeEdge{
		SourcePersonID: *decision.MatchedPersonID,
		TargetPersonID: target.ID,
		Reason:         fmt.Sprintf("review merge of decision %s", decision.ID),
		PerformedBy:    res.PerformedBy,
		CreatedAt:      res.CreatedAt,
	}
	return s.store.Merge(ctx, edge, res)
}

func sameResolution(existing domain.ReviewResolution, action domain.ReviewAction, targetID *uuid.UUID) bool {
	if existing.Action != action {
		return false
	}
	if action != domain.ActionMerge {
		return true
	}
	return existing.TargetPersonID != nil && targetID != nil && *existing.TargetPersonID == *targetID
}

func personFromDecision(decision domain.DecisionRecord, quality domain.DataQuality, now time.Time) domain.CanonicalPerson {
	return domain.CanonicalPerson{
		ID:          uuid.New(),
		DisplayName: decision.StagedName,
		Identifiers: stagedIdentifiers(decision),
		DataQuality: quality,
		IsCanonical: true,
		Provenance:  decision.SourceSystem,
		CreatedAt:   now,
	}
}

// stagedIdentifiers rebuilds the identifier set from a decision's staged
// fields, which were normalized at ingest time.
func stagedIdentifiers(decision domain.DecisionRecord) []domain.Identifier {
	idents := make([]domain.Identifier, 0, 2)
	if decision.StagedEmail != "" {
		idents = append(idents, domain.Identifier{Kind: domain.IdentifierEmail, Value: decision.StagedEmail, Source: decision.SourceSystem})
	}
	if decision.StagedPhone != "" {
		idents = append(idents, domain.Identifier{Kind: domain.IdentifierPhone, Value: decision.StagedPhone, Source: decision.SourceSystem})
	}
	return idents
}
