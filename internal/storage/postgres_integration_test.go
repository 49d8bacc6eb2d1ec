//go:build integration

package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"unify/internal/domain"
	"unify/internal/storage"
	"unify/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *storage.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(storage.EnsureSchema(s.ctx, s.postgres.DB))
	s.store = storage.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	// Truncate in dependency order.
	err := s.postgres.TruncateTables(s.ctx,
		"resolutions", "merge_edges", "decisions", "identifiers", "persons", "sources")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) createPerson(name, email string) domain.CanonicalPerson {
	p := domain.CanonicalPerson{
		ID:          uuid.New(),
		DisplayName: name,
		DataQuality: domain.QualityValid,
		IsCanonical: true,
		Provenance:  domain.SourceWebIntake,
		CreatedAt:   time.Now().UTC(),
	}
	if email != "" {
		p.Identifiers = []domain.Identifier{
			{Kind: domain.IdentifierEmail, Value: email, Source: domain.SourceWebIntake},
		}
	}
	rec := domain.DecisionRecord{
		ID:              uuid.New(),
		SourceSystem:    domain.SourceWebIntake,
		StagedName:      name,
		StagedEmail:     email,
		Outcome:         domain.OutcomeNewEntity,
		MatchedPersonID: &p.ID,
		DataQuality:     domain.QualityValid,
		CreatedAt:       time.Now().UTC(),
	}
	s.Require().NoError(s.store.CreatePersonWithDecision(s.ctx, p, rec))
	return p
}

func (s *PostgresStoreSuite) TestCreatePersonAndFindByEmail() {
	p := s.createPerson("Jane Smith", "jane@example.com")

	found, err := s.store.FindByEmail(s.ctx, "jane@example.com")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(p.ID, found[0].ID)
	s.Equal("Jane Smith", found[0].DisplayName)
	s.Require().Len(found[0].Identifiers, 1)
	s.Equal("jane@example.com", found[0].Identifiers[0].Value)
}

func (s *PostgresStoreSuite) TestFindByNameTokensUsesBlockingIndex() {
	p := s.createPerson("Jane Smith", "jane@example.com")
	s.createPerson("Robert Chen", "rchen@example.com")

	found, err := s.store.FindByNameTokens(s.ctx, "jane", "smith")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(p.ID, found[0].ID)
}

func (s *PostgresStoreSuite) TestLinkIdentifiersAttachesAndLogsDecision() {
	p := s.createPerson("Jane Smith", "jane@example.com")

	rec := domain.DecisionRecord{
		ID:              uuid.New(),
		SourceSystem:    domain.SourceClinicHQ,
		StagedName:      "J. Smith",
		StagedPhone:     "5035551234",
		Outcome:         domain.OutcomeAutoLink,
		MatchedPersonID: &p.ID,
		Similarity:      0.8,
		Confidence:      0.95,
		DataQuality:     domain.QualityValid,
		CreatedAt:       time.Now().UTC(),
	}
	idents := []domain.Identifier{
		{Kind: domain.IdentifierPhone, Value: "5035551234", Source: domain.SourceClinicHQ},
	}
	s.Require().NoError(s.store.LinkIdentifiersWithDecision(s.ctx, p.ID, idents, rec))

	found, err := s.store.FindByPhone(s.ctx, "5035551234")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(p.ID, found[0].ID)

	got, err := s.store.GetDecision(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(domain.OutcomeAutoLink, got.Outcome)
	s.Require().NotNil(got.MatchedPersonID)
	s.Equal(p.ID, *got.MatchedPersonID)
}

func (s *PostgresStoreSuite) TestMergeTombstonesAndRepointsIdentifiers() {
	source := s.createPerson("Jane Smith", "jane@example.com")
	target := s.createPerson("Jane A. Smith", "jane.smith@example.com")

	res := domain.ReviewResolution{
		DecisionID:     uuid.New(),
		Action:         domain.ActionMerge,
		TargetPersonID: &target.ID,
		PerformedBy:    "reviewer@unify",
		CreatedAt:      time.Now().UTC(),
	}
	s.Require().NoError(s.store.AppendDecision(s.ctx, domain.DecisionRecord{
		ID:           res.DecisionID,
		SourceSystem: domain.SourceAirtable,
		StagedName:   "Jane Smith",
		Outcome:      domain.OutcomePendingReview,
		DataQuality:  domain.QualityValid,
		CreatedAt:    time.Now().UTC(),
	}))

	edge := domain.MergeEdge{
		SourcePersonID: source.ID,
		TargetPersonID: target.ID,
		Reason:         "duplicate person",
		PerformedBy:    "reviewer@unify",
		CreatedAt:      time.Now().UTC(),
	}
	s.Require().NoError(s.store.Merge(s.ctx, edge, res))

	// The tombstone resolves to its merge target.
	root, err := s.store.ResolveRoot(s.ctx, source.ID)
	s.Require().NoError(err)
	s.Equal(target.ID, root.ID)

	tombstone, err := s.store.GetPerson(s.ctx, source.ID)
	s.Require().NoError(err)
	s.False(tombstone.IsCanonical)
	s.Equal(domain.QualityNonCanonical, tombstone.DataQuality)

	// The source's email now finds the target and only the target.
	found, err := s.store.FindByEmail(s.ctx, "jane@example.com")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(target.ID, found[0].ID)

	// Retrying the same merge is a no-op success.
	s.Require().NoError(s.store.Merge(s.ctx, edge, res))

	// Merging anything into the tombstone is rejected.
	other := s.createPerson("Janet Smyth", "janet@example.com")
	badEdge := domain.MergeEdge{
		SourcePersonID: other.ID,
		TargetPersonID: source.ID,
		PerformedBy:    "reviewer@unify",
		CreatedAt:      time.Now().UTC(),
	}
	err = s.store.Merge(s.ctx, badEdge, domain.ReviewResolution{
		DecisionID:  uuid.New(),
		Action:      domain.ActionMerge,
		PerformedBy: "reviewer@unify",
		CreatedAt:   time.Now().UTC(),
	})
	s.Require().ErrorIs(err, storage.ErrNotCanonical)
}

func (s *PostgresStoreSuite) TestPendingReviewLifecycle() {
	rec := domain.DecisionRecord{
		ID:           uuid.New(),
		SourceSystem: domain.SourceAirtable,
		StagedName:   "Janet Smyth",
		StagedEmail:  "janet@example.com",
		Outcome:      domain.OutcomePendingReview,
		DataQuality:  domain.QualityValid,
		CreatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.store.AppendDecision(s.ctx, rec))

	pending, err := s.store.ListPending(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(rec.ID, pending[0].ID)

	count, err := s.store.CountPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)

	person := domain.CanonicalPerson{
		ID:          uuid.New(),
		DisplayName: "Janet Smyth",
		Identifiers: []domain.Identifier{
			{Kind: domain.IdentifierEmail, Value: "janet@example.com", Source: domain.SourceAirtable},
		},
		DataQuality: domain.QualityValid,
		IsCanonical: true,
		Provenance:  domain.SourceAirtable,
		CreatedAt:   time.Now().UTC(),
	}
	res := domain.ReviewResolution{
		DecisionID:  rec.ID,
		Action:      domain.ActionPromote,
		PerformedBy: "reviewer@unify",
		CreatedAt:   time.Now().UTC(),
	}
	s.Require().NoError(s.store.CreatePersonWithResolution(s.ctx, person, res))

	// Resolved decisions leave the queue.
	count, err = s.store.CountPending(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)

	got, err := s.store.GetResolution(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(domain.ActionPromote, got.Action)
	s.Equal("reviewer@unify", got.PerformedBy)
}

func (s *PostgresStoreSuite) TestSnapshotCounts() {
	s.createPerson("Jane Smith", "jane@example.com")
	s.createPerson("Robert Chen", "rchen@example.com")
	s.Require().NoError(s.store.AppendDecision(s.ctx, domain.DecisionRecord{
		ID:           uuid.New(),
		SourceSystem: domain.SourceAirtable,
		StagedName:   "Janet Smyth",
		Outcome:      domain.OutcomePendingReview,
		DataQuality:  domain.QualityValid,
		CreatedAt:    time.Now().UTC(),
	}))

	total, canonical, err := s.store.CountPersons(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Equal(2, canonical)

	byOutcome, err := s.store.CountDecisionsByOutcome(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, byOutcome[domain.OutcomeNewEntity])
	s.Equal(1, byOutcome[domain.OutcomePendingReview])

	recent, err := s.store.CountDecisionsSince(s.ctx, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	s.Equal(3, recent)
}

func (s *PostgresStoreSuite) TestSourceRegistryRoundTrip() {
	sc := domain.SourceConfidence{
		SourceSystem: "shelter_import",
		Score:        0.55,
		Description:  "quarterly shelter CSV drop",
		UpdatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.store.UpsertSource(s.ctx, sc))

	got, err := s.store.GetSource(s.ctx, "shelter_import")
	s.Require().NoError(err)
	s.InDelta(0.55, got.Score, 1e-9)

	sc.Score = 0.7
	s.Require().NoError(s.store.UpsertSource(s.ctx, sc))
	got, err = s.store.GetSource(s.ctx, "shelter_import")
	s.Require().NoError(err)
	s.InDelta(0.7, got.Score, 1e-9)

	s.Require().NoError(s.store.DeleteSource(s.ctx, "shelter_import"))
	_, err = s.store.GetSource(s.ctx, "shelter_import")
	s.Require().ErrorIs(err, storage.ErrNotFound)
}
