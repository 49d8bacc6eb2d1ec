package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"unify/internal/domain"
	"unify/internal/match"
)

// InMemoryStore keeps the whole graph and decision log behind one mutex so
// cross-entity mutations are trivially atomic. It intentionally favors
// clarity over performance; it backs unit tests and single-node dev runs.
type InMemoryStore struct {
	mu          sync.RWMutex
	persons     map[uuid.UUID]*domain.CanonicalPerson
	emails      map[string][]uuid.UUID
	phones      map[string][]uuid.UUID
	merges      map[uuid.UUID]*domain.MergeEdge
	decisions   map[uuid.UUID]*domain.DecisionRecord
	order       []uuid.UUID
	resolutions map[uuid.UUID]*domain.ReviewResolution
	sources     map[string]domain.SourceConfidence
}

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		persons:     make(map[uuid.UUID]*domain.CanonicalPerson),
		emails:      make(map[string][]uuid.UUID),
		phones:      make(map[string][]uuid.UUID),
		merges:      make(map[uuid.UUID]*domain.MergeEdge),
		decisions:   make(map[uuid.UUID]*domain.DecisionRecord),
		resolutions: make(map[uuid.UUID]*domain.ReviewResolution),
		sources:     make(map[string]domain.SourceConfidence),
	}
}

// ----------------------------------------------------------------------------
// Graph
// ----------------------------------------------------------------------------

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) ([]domain.CanonicalPerson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matchableByIDs(s.emails[email]), nil
}

func (s *InMemoryStore) FindByPhone(_ context.Context, phone string) ([]domain.CanonicalPerson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matchableByIDs(s.phones[phone]), nil
}

func (s *InMemoryStore) FindByNameTokens(_ context.Context, firstToken, lastToken string) ([]domain.CanonicalPerson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Full scan; fine for the in-memory store's workloads.
	var out []domain.CanonicalPerson
	for _, p := range s.persons {
		if !p.Matchable() {
			continue
		}
		tokens := match.NameTokens(p.DisplayName)
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] == firstToken && tokens[len(tokens)-1] == lastToken {
			out = append(out, clonePerson(p))
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetPerson(_ context.Context, id uuid.UUID) (domain.CanonicalPerson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[id]
	if !ok {
		return domain.CanonicalPerson{}, ErrNotFound
	}
	return clonePerson(p), nil
}

func (s *InMemoryStore) ResolveRoot(_ context.Context, id uuid.UUID) (domain.CanonicalPerson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[id]
	if !ok {
		return domain.CanonicalPerson{}, ErrNotFound
	}

	visited := []uuid.UUID{}
	for !p.IsCanonical {
		edge, ok := s.merges[p.ID]
		if !ok {
			break
		}
		visited = append(visited, p.ID)
		next, ok := s.persons[edge.TargetPersonID]
		if !ok {
			return domain.CanonicalPerson{}, ErrNotFound
		}
		p = next
	}

	// Path compression: re-point every visited edge at the root so the next
	// resolution is O(1).
	for _, vid := range visited {
		if edge, ok := s.merges[vid]; ok && edge.TargetPersonID != p.ID {
			edge.TargetPersonID = p.ID
		}
	}

	return clonePerson(p), nil
}

func (s *InMemoryStore) CreatePersonWithDecision(_ context.Context, person domain.CanonicalPerson, rec domain.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := person
	stored.Identifiers = append([]domain.Identifier(nil), person.Identifiers...)
	s.persons[person.ID] = &stored
	for _, ident := range stored.Identifiers {
		s.indexIdentifier(person.ID, ident)
	}
	s.appendDecisionLocked(rec)
	return nil
}

func (s *InMemoryStore) LinkIdentifiersWithDecision(_ context.Context, personID uuid.UUID, idents []domain.Identifier, rec domain.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[personID]
	if !ok {
		return ErrNotFound
	}
	for _, ident := range idents {
		if ident.Value != "" && !p.HasIdentifier(ident.Kind, ident.Value) {
			p.Identifiers = append(p.Identifiers, ident)
			s.indexIdentifier(personID, ident)
		}
	}
	s.appendDecisionLocked(rec)
	return nil
}

func (s *InMemoryStore) AppendDecision(_ context.Context, rec domain.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendDecisionLocked(rec)
	return nil
}

// ----------------------------------------------------------------------------
// ReviewLog
// ----------------------------------------------------------------------------

func (s *InMemoryStore) GetDecision(_ context.Context, id uuid.UUID) (domain.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.decisions[id]
	if !ok {
		return domain.DecisionRecord{}, ErrNotFound
	}
	return *rec, nil
}

func (s *InMemoryStore) GetResolution(_ context.Context, decisionID uuid.UUID) (domain.ReviewResolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.resolutions[decisionID]
	if !ok {
		return domain.ReviewResolution{}, ErrNotFound
	}
	return *res, nil
}

func (s *InMemoryStore) ListPending(_ context.Context, limit, offset int) ([]domain.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DecisionRecord
	skipped := 0
	for _, id := range s.order {
		rec := s.decisions[id]
		if rec.Outcome != domain.OutcomePendingReview {
			continue
		}
		if _, resolved := s.resolutions[id]; resolved {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, *rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) CountPending(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for id, rec := range s.decisions {
		if rec.Outcome != domain.OutcomePendingReview {
			continue
		}
		if _, resolved := s.resolutions[id]; resolved {
			continue
		}
		count++
	}
	return count, nil
}

func (s *InMemoryStore) Promote(_ context.Context, personID uuid.UUID, res domain.ReviewResolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[personID]
	if !ok {
		return ErrNotFound
	}
	p.DataQuality = domain.QualityValid
	s.resolutions[res.DecisionID] = &res
	return nil
}

func (s *InMemoryStore) MarkGarbage(_ context.Context, personID uuid.UUID, res domain.ReviewResolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[personID]
	if !ok {
		return ErrNotFound
	}
	// Stays canonical for audit; Matchable() excludes it from lookups.
	p.DataQuality = domain.QualityGarbage
	s.resolutions[res.DecisionID] = &res
	return nil
}

func (s *InMemoryStore) CreatePersonWithResolution(_ context.Context, person domain.CanonicalPerson, res domain.ReviewResolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := person
	stored.Identifiers = append([]domain.Identifier(nil), person.Identifiers...)
	s.persons[person.ID] = &stored
	for _, ident := range stored.Identifiers {
		s.indexIdentifier(person.ID, ident)
	}
	s.resolutions[res.DecisionID] = &res
	return nil
}

func (s *InMemoryStore) LinkIdentifiersWithResolution(_ context.Context, personID uuid.UUID, idents []domain.Identifier, res domain.ReviewResolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[personID]
	if !ok {
		return ErrNotFound
	}
	for _, ident := range idents {
		if ident.Value != "" && !p.HasIdentifier(ident.Kind, ident.Value) {
			p.Identifiers = append(p.Identifiers, ident)
			s.indexIdentifier(personID, ident)
		}
	}
	s.resolutions[res.DecisionID] = &res
	return nil
}

func (s *InMemoryStore) Merge(_ context.Context, edge domain.MergeEdge, res domain.ReviewResolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.persons[edge.SourcePersonID]
	if !ok {
		return ErrNotFound
	}
	target, ok := s.persons[edge.TargetPersonID]
	if !ok {
		return ErrNotFound
	}
	if !target.IsCanonical {
		return ErrNotCanonical
	}
	if existing, merged := s.merges[source.ID]; merged {
		// Retried merge into the same target is a no-op.
		if existing.TargetPersonID == target.ID {
			s.resolutions[res.DecisionID] = &res
			return nil
		}
		return ErrNotCanonical
	}

	source.IsCanonical = false
	source.DataQuality = domain.QualityNonCanonical
	for _, ident := range source.Identifiers {
		if !target.HasIdentifier(ident.Kind, ident.Value) {
			target.Identifiers = append(target.Identifiers, ident)
			s.indexIdentifier(target.ID, ident)
		}
	}
	s.merges[source.ID] = &edge
	s.resolutions[res.DecisionID] = &res
	return nil
}

// ----------------------------------------------------------------------------
// SnapshotReader
// ----------------------------------------------------------------------------

func (s *InMemoryStore) CountPersons(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.persons)
	canonical := 0
	for _, p := range s.persons {
		if p.IsCanonical {
			canonical++
		}
	}
	return total, canonical, nil
}

func (s *InMemoryStore) CountByQuality(_ context.Context) (map[domain.DataQuality]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.DataQuality]int)
	for _, p := range s.persons {
		out[p.DataQuality]++
	}
	return out, nil
}

func (s *InMemoryStore) CountPersonsCreatedSince(_ context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.persons {
		if p.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) CountDecisionsByOutcome(_ context.Context) (map[domain.Outcome]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.Outcome]int)
	for _, rec := range s.decisions {
		out[rec.Outcome]++
	}
	return out, nil
}

func (s *InMemoryStore) CountDecisionsSince(_ context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.decisions {
		if rec.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// ----------------------------------------------------------------------------
// Sources
// ----------------------------------------------------------------------------

func (s *InMemoryStore) GetSource(_ context.Context, sourceSystem string) (domain.SourceConfidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.sources[sourceSystem]
	if !ok {
		return domain.SourceConfidence{}, ErrNotFound
	}
	return sc, nil
}

func (s *InMemoryStore) ListSources(_ context.Context) ([]domain.SourceConfidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SourceConfidence, 0, len(s.sources))
	for _, sc := range s.sources {
		out = append(out, sc)
	}
	return out, nil
}

func (s *InMemoryStore) UpsertSource(_ context.Context, sc domain.SourceConfidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[sc.SourceSystem] = sc
	return nil
}

func (s *InMemoryStore) DeleteSource(_ context.Context, sourceSystem string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[sourceSystem]; !ok {
		return ErrNotFound
	}
	delete(s.sources, sourceSystem)
	return nil
}

// ----------------------------------------------------------------------------
// helpers (callers hold the lock)
// ----------------------------------------------------------------------------

func (s *InMemoryStore) matchableByIDs(ids []uuid.UUID) []domain.CanonicalPerson {
	var out []domain.CanonicalPerson
	for _, id := range ids {
		if p, ok := s.persons[id]; ok && p.Matchable() {
			out = append(out, clonePerson(p))
		}
	}
	return out
}

func (s *InMemoryStore) indexIdentifier(personID uuid.UUID, ident domain.Identifier) {
	if ident.Value == "" {
		return
	}
	switch ident.Kind {
	case domain.IdentifierEmail:
		s.emails[ident.Value] = appendUnique(s.emails[ident.Value], personID)
	case domain.IdentifierPhone:
		s.phones[ident.Value] = appendUnique(s.phones[ident.Value], personID)
	}
}

func (s *InMemoryStore) appendDecisionLocked(rec domain.DecisionRecord) {
	stored := rec
	s.decisions[rec.ID] = &stored
	s.order = append(s.order, rec.ID)
}

func appendUnique(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func clonePerson(p *domain.CanonicalPerson) domain.CanonicalPerson {
	out := *p
	out.Identifiers = append([]domain.Identifier(nil), p.Identifiers...)
	return out
}
