// Package resolution runs the ingest pipeline: validate and normalize a
// staged record, find candidates in the identity graph, apply the linking
// rules, and commit the resulting graph mutation together with its decision
// record as one atomic unit.
package resolution

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"unify/internal/audit"
	"unify/internal/domain"
	"unify/internal/match"
	"unify/internal/resolution/metrics"
	"unify/internal/storage"
	dErrors "unify/pkg/domain-errors"
	"unify/pkg/requestcontext"
)

// Config carries the policy knobs the service reads at decision time.
type Config struct {
	Policy              Policy
	MaxCandidates       int
	AutoRegisterSources bool
	DefaultSourceScore  float64
}

// Service orchestrates record ingestion against the identity graph.
type Service struct {
	store   storage.Store
	lookup  *match.Lookup
	cfg     Config
	locks   keyedLocks
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Recorder
}

func NewService(store storage.Store, cfg Config, logger *slog.Logger, m *metrics.Metrics, rec *audit.Recorder) *Service {
	return &Service{
		store:   store,
		lookup:  match.NewLookup(store, cfg.MaxCandidates),
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		audit:   rec,
	}
}

// Result is what the ingest endpoint returns for one staged record.
type Result struct {
	DecisionID  uuid.UUID
	Outcome     domain.Outcome
	PersonID    *uuid.UUID
	Similarity  float64
	Confidence  float64
	DataQuality domain.DataQuality
	Evidence    domain.MatchEvidence
}

// Ingest resolves one staged record. Every accepted record produces exactly
// one decision row; malformed records are rejected before any mutation.
// Ingestion for overlapping identifier groups is serialized so concurrent
// submissions of the same person converge on one canonical entity.
func (s *Service) Ingest(ctx context.Context, rec domain.StagedRecord) (*Result, error) {
	start := time.Now()

	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	email := match.NormalizeEmail(rec.Email)
	phone := match.NormalizePhone(rec.Phone)
	if email == "" && phone == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one usable contact identifier (email or phone) is required")
	}

	sourceScore, err := s.sourceScore(ctx, rec.SourceSystem)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock("email:"+email, "phone:"+phone)
	defer unlock()

	candidates, err := s.lookup.Candidates(ctx, name, email, phone)
	if err != nil {
		return nil, fmt.Errorf("candidate lookup: %w", err)
	}
	s.metrics.ObserveCandidateCount(len(candidates))

	var best *match.Candidate
	if len(candidates) > 0 {
		best = &candidates[0]
	}

	outcome := Decide(s.cfg.Policy, best, sourceScore)
	confidence := round3(Confidence(best, sourceScore))
	quality := ClassifyName(name)
	now := requestcontext.Now(ctx)

	decision := domain.DecisionRecord{
		ID:           uuid.New(),
		SourceSystem: rec.SourceSystem,
		StagedName:   name,
		StagedEmail:  email,
		StagedPhone:  phone,
		Outcome:      outcome,
		Confidence:   confidence,
		Evidence:     domain.MatchEvidence{Tier: domain.Tier(confidence)},
		DataQuality:  quality,
		CreatedAt:    now,
	}
	if best != nil {
		candidateID := best.Person.ID
		decision.BestCandidateID = &candidateID
		decision.Similarity = round3(best.Similarity)
		decision.Evidence = domain.MatchEvidence{
			EmailMatch:     best.EmailMatch,
			PhoneMatch:     best.PhoneMatch,
			NameSimilarity: round3(best.Similarity),
			MatchedOn:      matchedOn(best),
			Tier:           domain.Tier(confidence),
		}
	}

	personID, err := s.commit(ctx, &decision, best, name, email, phone, quality, rec.SourceSystem, now)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementOutcome(string(outcome), rec.SourceSystem)
	s.metrics.ObserveIngestLatency(time.Since(start))
	s.logger.InfoContext(ctx, "record resolved",
		"request_id", requestcontext.RequestID(ctx),
		"decision_id", decision.ID,
		"source_system", rec.SourceSystem,
		"outcome", outcome,
		"similarity", decision.Similarity,
		"confidence", confidence,
		"data_quality", quality,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.audit.Emit(audit.Event{
		Kind:         audit.KindDecision,
		DecisionID:   decision.ID,
		SourceSystem: rec.SourceSystem,
		Outcome:      outcome,
		PersonID:     personID,
		Similarity:   decision.Similarity,
		Confidence:   confidence,
		DataQuality:  quality,
	})

	return &Result{
		DecisionID:  decision.ID,
		Outcome:     outcome,
		PersonID:    personID,
		Similarity:  decision.Similarity,
		Confidence:  confidence,
		DataQuality: quality,
		Evidence:    decision.Evidence,
	}, nil
}

// commit applies the graph mutation matching the outcome. Pending reviews
// only append the decision; the graph is untouched until a human acts.
func (s *Service) commit(ctx context.Context, decision *domain.DecisionRecord, best *match.Candidate, name, email, phone string, quality domain.DataQuality, sourceSystem string, now time.Time) (*uuid.UUID, error) {
	switch decision.Outcome {
	case domain.OutcomeAutoLink:
		linkedID := best.Person.ID
		decision.MatchedPersonID = &linkedID
		idents := buildIdentifiers(sourceSystem, email, phone)
		if err := s.store.LinkIdentifiersWithDecision(ctx, linkedID, idents, *decision); err != nil {
			return nil, fmt.Errorf("link identifiers: %w", err)
		}
		return &linkedID, nil

	case domain.OutcomeNewEntity:
		person := domain.CanonicalPerson{
			ID:          uuid.New(),
			DisplayName: name,
			Identifiers: buildIdentifiers(sourceSystem, email, phone),
			DataQuality: quality,
			IsCanonical: true,
			Provenance:  sourceSystem,
			CreatedAt:   now,
		}
		decision.MatchedPersonID = &person.ID
		if err := s.store.CreatePersonWithDecision(ctx, person, *decision); err != nil {
			return nil, fmt.Errorf("create person: %w", err)
		}
		return &person.ID, nil

	default:
		if err := s.store.AppendDecision(ctx, *decision); err != nil {
			return nil, fmt.Errorf("append decision: %w", err)
		}
		return nil, nil
	}
}

// Person resolves an ID to its current canonical person, following merge
// edges when the ID belongs to a tombstone.
func (s *Service) Person(ctx context.Context, id uuid.UUID) (domain.CanonicalPerson, error) {
	return s.store.ResolveRoot(ctx, id)
}

// sourceScore loads the trust weight for a source system. Unknown sources
// are rejected unless auto-registration is on, in which case they are created
// at the default score and flagged for later curation.
func (s *Service) sourceScore(ctx context.Context, sourceSystem string) (float64, error) {
	if sourceSystem == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "source_system is required")
	}
	sc, err := s.store.GetSource(ctx, sourceSystem)
	if err == nil {
		return sc.Score, nil
	}
	if !dErrors.IsCode(err, dErrors.CodeNotFound) {
		return 0, fmt.Errorf("load source confidence: %w", err)
	}
	if !s.cfg.AutoRegisterSources {
		return 0, dErrors.Newf(dErrors.CodeValidation, "unknown source system %q", sourceSystem)
	}
	sc = domain.SourceConfidence{
		SourceSystem: sourceSystem,
		Score:        s.cfg.DefaultSourceScore,
		Description:  "auto-registered at ingest",
		UpdatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.UpsertSource(ctx, sc); err != nil {
		return 0, fmt.Errorf("auto-register source: %w", err)
	}
	s.logger.InfoContext(ctx, "source auto-registered", "source_system", sourceSystem, "score", sc.Score)
	return sc.Score, nil
}

func buildIdentifiers(sourceSystem, email, phone string) []domain.Identifier {
	idents := make([]domain.Identifier, 0, 2)
	if email != "" {
		idents = append(idents, domain.Identifier{Kind: domain.IdentifierEmail, Value: email, Source: sourceSystem})
	}
	if phone != "" {
		idents = append(idents, domain.Identifier{Kind: domain.IdentifierPhone, Value: phone, Source: sourceSystem})
	}
	return idents
}

func matchedOn(best *match.Candidate) []string {
	var on []string
	if best.EmailMatch {
		on = append(on, "email")
	}
	if best.PhoneMatch {
		on = append(on, "phone")
	}
	if len(on) == 0 {
		on = append(on, "name")
	}
	return on
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
