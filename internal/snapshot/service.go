// Package snapshot computes the data-quality aggregates behind the dashboard.
// Strictly read-only over the graph and decision log, so it is safe to call
// on every dashboard page load; a short-lived cache absorbs the fan-out.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"unify/internal/domain"
	"unify/internal/storage"
	"unify/pkg/requestcontext"
)

// Reader is the read-only slice of the store the snapshotter consumes.
type Reader interface {
	storage.SnapshotReader
	CountPending(ctx context.Context) (int, error)
}

// Config tunes problem detection.
type Config struct {
	// PendingCriticalThreshold is the review backlog size at which the
	// dashboard escalates from warning to critical.
	PendingCriticalThreshold int
}

// Service aggregates graph and decision-log counts into a dashboard snapshot.
type Service struct {
	reader Reader
	cache  *Cache
	cfg    Config
	logger *slog.Logger
}

func NewService(reader Reader, cache *Cache, cfg Config, logger *slog.Logger) *Service {
	if cfg.PendingCriticalThreshold <= 0 {
		cfg.PendingCriticalThreshold = 500
	}
	return &Service{reader: reader, cache: cache, cfg: cfg, logger: logger}
}

// Snapshot returns the current aggregates, serving from cache when fresh.
func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}

	return s.Refresh(ctx)
}

// Refresh recomputes and re-caches, bypassing any cached copy.
func (s *Service) Refresh(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.compute(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	s.cache.Set(ctx, snap)
	return snap, nil
}

// compute fans the count queries out in parallel; they are independent reads
// and the dashboard wants all of them.
func (s *Service) compute(ctx context.Context) (domain.Snapshot, error) {
	now := requestcontext.Now(ctx)
	since := now.Add(-24 * time.Hour)

	var (
		total, canonical int
		byQuality        map[domain.DataQuality]int
		byOutcome        map[domain.Outcome]int
		created24h       int
		decisions24h     int
		pending          int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, canonical, err = s.reader.CountPersons(gctx)
		return err
	})
	g.Go(func() (err error) {
		byQuality, err = s.reader.CountByQuality(gctx)
		return err
	})
	g.Go(func() (err error) {
		byOutcome, err = s.reader.CountDecisionsByOutcome(gctx)
		return err
	})
	g.Go(func() (err error) {
		created24h, err = s.reader.CountPersonsCreatedSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		decisions24h, err = s.reader.CountDecisionsSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		pending, err = s.reader.CountPending(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("compute snapshot: %w", err)
	}

	autoLink := byOutcome[domain.OutcomeAutoLink]
	newEntity := byOutcome[domain.OutcomeNewEntity]
	snap := domain.Snapshot{
		GeneratedAt:      now,
		TotalPersons:     total,
		CanonicalPersons: canonical,
		ByQuality:        byQuality,
		CreatedLast24h:   created24h,
		DecisionsLast24h: decisions24h,
		PendingReviews:   pending,
		AutoLinkTotal:    autoLink,
		NewEntityTotal:   newEntity,
	}
	if autoLink+newEntity > 0 {
		snap.AutoLinkRatio = float64(autoLink) / float64(autoLink+newEntity)
	}
	snap.Problems = s.detectProblems(snap)
	return snap, nil
}

func (s *Service) detectProblems(snap domain.Snapshot) []domain.Problem {
	problems := []domain.Problem{}

	if n := snap.ByQuality[domain.QualityOrgAsPerson]; n > 0 {
		problems = append(problems, domain.Problem{
			Code:     "orgs_as_people",
			Severity: domain.SeverityWarning,
			Message:  "organizations are stored as person records",
			Count:    n,
		})
	}
	if n := snap.ByQuality[domain.QualityGarbage]; n > 0 {
		problems = append(problems, domain.Problem{
			Code:     "garbage_names",
			Severity: domain.SeverityWarning,
			Message:  "person records with unusable names",
			Count:    n,
		})
	}
	if snap.PendingReviews > 0 {
		severity := domain.SeverityWarning
		if snap.PendingReviews > s.cfg.PendingCriticalThreshold {
			severity = domain.SeverityCritical
		}
		problems = append(problems, domain.Problem{
			Code:     "review_backlog",
			Severity: severity,
			Message:  "decisions are waiting for human review",
			Count:    snap.PendingReviews,
		})
	}
	return problems
}
