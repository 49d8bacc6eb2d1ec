package resolution

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"unify/internal/domain"
	"unify/internal/source"
	"unify/internal/storage"
	dErrors "unify/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	store   *storage.InMemoryStore
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = storage.NewInMemoryStore()
	s.ctx = context.Background()
	s.Require().NoError(source.Seed(s.ctx, s.store))
	s.service = s.newService(Config{
		Policy:             defaultPolicy(),
		MaxCandidates:      5,
		DefaultSourceScore: 0.5,
	})
}

func (s *ServiceSuite) newService(cfg Config) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(s.store, cfg, logger, nil, nil)
}

func (s *ServiceSuite) ingest(sourceSystem, name, email, phone string) *Result {
	res, err := s.service.Ingest(s.ctx, domain.StagedRecord{
		SourceSystem: sourceSystem,
		Name:         name,
		Email:        email,
		Phone:        phone,
	})
	s.Require().NoError(err)
	return res
}

func (s *ServiceSuite) TestFirstRecordCreatesEntity() {
	res := s.ingest(domain.SourceWebIntake, "Jane Smith", "jane@example.com", "(503) 555-1234")

	s.Equal(domain.OutcomeNewEntity, res.Outcome)
	s.Require().NotNil(res.PersonID)
	s.Equal(domain.QualityValid, res.DataQuality)

	p, err := s.store.GetPerson(s.ctx, *res.PersonID)
	s.Require().NoError(err)
	s.Equal("Jane Smith", p.DisplayName)
	s.True(p.HasIdentifier(domain.IdentifierEmail, "jane@example.com"))
	s.True(p.HasIdentifier(domain.IdentifierPhone, "5035551234"))
	s.True(p.IsCanonical)
}

func (s *ServiceSuite) TestSharedEmailAgreeingNameAutoLinks() {
	first := s.ingest(domain.SourceWebIntake, "Jane Smith", "jane@example.com", "")

	res := s.ingest(domain.SourceClinicHQ, "J. Smith", "jane@example.com", "503-555-1234")

	s.Equal(domain.OutcomeAutoLink, res.Outcome)
	s.Require().NotNil(res.PersonID)
	s.Equal(*first.PersonID, *res.PersonID)
	s.True(res.Evidence.EmailMatch)
	s.Greater(res.Similarity, 0.5)

	// The clinic's phone number is now attached to Jane.
	found, err := s.store.FindByPhone(s.ctx, "5035551234")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(*first.PersonID, found[0].ID)
}

func (s *ServiceSuite) TestTrustedSourceDivergingNameCreatesEntity() {
	first := s.ingest(domain.SourceWebIntake, "Jane Smith", "jane@example.com", "")

	// Shared household email, different person, from a high-trust source.
	res := s.ingest(domain.SourceAtlasUI, "Robert Chen", "jane@example.com", "")

	s.Equal(domain.OutcomeNewEntity, res.Outcome)
	s.Require().NotNil(res.PersonID)
	s.NotEqual(*first.PersonID, *res.PersonID)
}

func (s *ServiceSuite) TestLowTrustDivergingNameQueuesForReview() {
	first := s.ingest(domain.SourceWebIntake, "Jane Smith", "jane@example.com", "")
	total, _, err := s.store.CountPersons(s.ctx)
	s.Require().NoError(err)

	res := s.ingest(domain.SourceAirtable, "Janet Smyth", "jane@example.com", "")

	s.Equal(domain.OutcomePendingReview, res.Outcome)
	s.Nil(res.PersonID)

	// The graph is untouched until a human acts.
	after, _, err := s.store.CountPersons(s.ctx)
	s.Require().NoError(err)
	s.Equal(total, after)

	pending, err := s.store.ListPending(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Require().NotNil(pending[0].BestCandidateID)
	s.Equal(*first.PersonID, *pending[0].BestCandidateID)
}

func (s *ServiceSuite) TestNoIdentifierOverlapNeverLinks() {
	s.ingest(domain.SourceWebIntake, "Jane Smith", "jane@example.com", "")

	// Identical name, disjoint identifiers. Name blocking surfaces Jane as
	// context, but only an identifier hit can link.
	res := s.ingest(domain.SourceWebIntake, "Jane Smith", "jane.smith@work.example", "")

	s.Equal(domain.OutcomeNewEntity, res.Outcome)
	s.Contains(res.Evidence.MatchedOn, "name")
	s.Equal(1.0, res.Evidence.NameSimilarity)
}

func (s *ServiceSuite) TestRejectsMalformedRecords() {
	_, err := s.service.Ingest(s.ctx, domain.StagedRecord{
		SourceSystem: domain.SourceWebIntake,
		Name:         "   ",
		Email:        "jane@example.com",
	})
	s.Require().True(dErrors.IsCode(err, dErrors.CodeValidation))

	// No usable identifier: bad email shape, short phone.
	_, err = s.service.Ingest(s.ctx, domain.StagedRecord{
		SourceSystem: domain.SourceWebIntake,
		Name:         "Jane Smith",
		Email:        "not-an-email",
		Phone:        "555",
	})
	s.Require().True(dErrors.IsCode(err, dErrors.CodeValidation))

	_, err = s.service.Ingest(s.ctx, domain.StagedRecord{
		SourceSystem: "petfinder",
		Name:         "Jane Smith",
		Email:        "jane@example.com",
	})
	s.Require().True(dErrors.IsCode(err, dErrors.CodeValidation))

	// Rejected records leave no trace.
	byOutcome, err := s.store.CountDecisionsByOutcome(s.ctx)
	s.Require().NoError(err)
	s.Empty(byOutcome)
}

func (s *ServiceSuite) TestAutoRegistersUnknownSourceWhenEnabled() {
	s.service = s.newService(Config{
		Policy:              defaultPolicy(),
		MaxCandidates:       5,
		AutoRegisterSources: true,
		DefaultSourceScore:  0.5,
	})

	res := s.ingest("petfinder", "Jane Smith", "jane@example.com", "")
	s.Equal(domain.OutcomeNewEntity, res.Outcome)

	sc, err := s.store.GetSource(s.ctx, "petfinder")
	s.Require().NoError(err)
	s.Equal(0.5, sc.Score)
}

func (s *ServiceSuite) TestGarbageRecordsAreTaggedAndUnmatchable() {
	res := s.ingest(domain.SourceClinicHQ, "Unknown", "front-desk@clinic.example", "")
	s.Equal(domain.OutcomeNewEntity, res.Outcome)
	s.Equal(domain.QualityGarbage, res.DataQuality)

	// The garbage record never becomes a match target, even on an exact
	// identifier hit.
	res = s.ingest(domain.SourceWebIntake, "Jane Smith", "front-desk@clinic.example", "")
	s.Equal(domain.OutcomeNewEntity, res.Outcome)
}

func (s *ServiceSuite) TestOrgRecordsStayMatchable() {
	first := s.ingest(domain.SourceWebIntake, "Maple Grove Apartments LLC", "office@maplegrove.example", "")
	s.Equal(domain.QualityOrgAsPerson, first.DataQuality)

	res := s.ingest(domain.SourceAirtable, "Maple Grove Apartments LLC", "office@maplegrove.example", "")
	s.Equal(domain.OutcomeAutoLink, res.Outcome)
	s.Equal(*first.PersonID, *res.PersonID)
}

func (s *ServiceSuite) TestConcurrentSameIdentifierConverges() {
	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Ingest(s.ctx, domain.StagedRecord{
				SourceSystem: domain.SourceWebIntake,
				Name:         "Jane Smith",
				Email:        "jane@example.com",
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	total, canonical, err := s.store.CountPersons(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal(1, canonical)

	byOutcome, err := s.store.CountDecisionsByOutcome(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, byOutcome[domain.OutcomeNewEntity])
	s.Equal(workers-1, byOutcome[domain.OutcomeAutoLink])
}
