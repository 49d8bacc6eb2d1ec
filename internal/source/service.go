// Package source manages the per-source trust registry read by the
// confidence scorer on every decision.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"unify/internal/domain"
	"unify/internal/storage"
	dErrors "unify/pkg/domain-errors"
	"unify/pkg/requestcontext"
)

// Service exposes administrable source-confidence configuration. Core sources
// can be re-scored but never deleted.
type Service struct {
	store  storage.Sources
	logger *slog.Logger
}

// NewService constructs a source registry service.
func NewService(store storage.Sources, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Get returns the confidence entry for one source system.
func (s *Service) Get(ctx context.Context, sourceSystem string) (domain.SourceConfidence, error) {
	return s.store.GetSource(ctx, sourceSystem)
}

// List returns all configured sources ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.SourceConfidence, error) {
	sources, err := s.store.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].SourceSystem < sources[j].SourceSystem
	})
	return sources, nil
}

// Upsert creates or re-scores a source. Scores outside [0,1] are rejected
// before any mutation.
func (s *Service) Upsert(ctx context.Context, sourceSystem string, score float64, description string) (domain.SourceConfidence, error) {
	sourceSystem = strings.TrimSpace(sourceSystem)
	if sourceSystem == "" {
		return domain.SourceConfidence{}, dErrors.New(dErrors.CodeValidation, "source_system is required")
	}
	if score < 0 || score > 1 {
		return domain.SourceConfidence{}, dErrors.Newf(dErrors.CodeValidation, "confidence score %v out of range [0,1]", score)
	}

	sc := domain.SourceConfidence{
		SourceSystem: sourceSystem,
		Score:        score,
		Description:  description,
		UpdatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.UpsertSource(ctx, sc); err != nil {
		return domain.SourceConfidence{}, fmt.Errorf("upsert source %q: %w", sourceSystem, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "source confidence updated",
			"source_system", sourceSystem,
			"score", score,
		)
	}
	return sc, nil
}

// Delete removes a non-core source. Deleting a core source fails with a
// protected-resource error.
func (s *Service) Delete(ctx context.Context, sourceSystem string) error {
	if domain.IsCoreSource(sourceSystem) {
		return dErrors.Newf(dErrors.CodeProtected, "source %q is a core source and cannot be deleted", sourceSystem)
	}
	if err := s.store.DeleteSource(ctx, sourceSystem); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "source deleted", "source_system", sourceSystem)
	}
	return nil
}

// Seed ensures the four core sources exist. Existing entries are left alone
// so administrator re-scores survive restarts.
func Seed(ctx context.Context, store storage.Sources) error {
	defaults := []domain.SourceConfidence{
		{SourceSystem: domain.SourceWebIntake, Score: 0.9, Description: "Public web intake form"},
		{SourceSystem: domain.SourceAtlasUI, Score: 0.95, Description: "Staff-entered records from the Atlas dashboard"},
		{SourceSystem: domain.SourceAirtable, Score: 0.3, Description: "Legacy Airtable import"},
		{SourceSystem: domain.SourceClinicHQ, Score: 0.4, Description: "ClinicHQ appointment owners"},
	}
	now := requestcontext.Now(ctx)
	for _, sc := range defaults {
		_, err := store.GetSource(ctx, sc.SourceSystem)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("seed source %q: %w", sc.SourceSystem, err)
		}
		sc.UpdatedAt = now
		if err := store.UpsertSource(ctx, sc); err != nil {
			return fmt.Errorf("seed source %q: %w", sc.SourceSystem, err)
		}
	}
	return nil
}
