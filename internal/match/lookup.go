package match

import (
	"context"
	"fmt"
	"sort"

	"unify/internal/domain"
)

// Finder is the slice of the identity graph the candidate lookup reads.
// Implementations must exclude tombstoned and garbage persons.
type Finder interface {
	FindByEmail(ctx context.Context, email string) ([]domain.CanonicalPerson, error)
	FindByPhone(ctx context.Context, phone string) ([]domain.CanonicalPerson, error)
	FindByNameTokens(ctx context.Context, firstToken, lastToken string) ([]domain.CanonicalPerson, error)
}

// Candidate is an existing person that could plausibly match a staged record,
// scored and flagged with the signals that surfaced it.
type Candidate struct {
	Person     domain.CanonicalPerson
	EmailMatch bool
	PhoneMatch bool
	Similarity float64
}

// IdentifierMatch reports whether the candidate was surfaced by an exact
// identifier hit rather than name blocking.
func (c Candidate) IdentifierMatch() bool {
	return c.EmailMatch || c.PhoneMatch
}

// Lookup retrieves and scores the bounded candidate set for a staged record.
type Lookup struct {
	finder Finder
	max    int
}

// NewLookup constructs a candidate lookup capped at maxCandidates scored
// candidates per record.
func NewLookup(finder Finder, maxCandidates int) *Lookup {
	if maxCandidates <= 0 {
		maxCandidates = 5
	}
	return &Lookup{finder: finder, max: maxCandidates}
}

// Candidates returns the ordered candidate set for the given normalized
// identifiers. Exact identifier hits come first; only when there are none
// does name-token blocking contribute. An empty result is the common case
// that leads to a new entity.
func (l *Lookup) Candidates(ctx context.Context, name, email, phone string) ([]Candidate, error) {
	byID := make(map[string]*Candidate)

	if email != "" {
		persons, err := l.finder.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("find by email: %w", err)
		}
		for _, p := range persons {
			byID[p.ID.String()] = &Candidate{Person: p, EmailMatch: true}
		}
	}

	if phone != "" {
		persons, err := l.finder.FindByPhone(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("find by phone: %w", err)
		}
		for _, p := range persons {
			if c, ok := byID[p.ID.String()]; ok {
				c.PhoneMatch = true
				continue
			}
			byID[p.ID.String()] = &Candidate{Person: p, PhoneMatch: true}
		}
	}

	// Name-token blocking only runs when no identifier hit anything. A miss
	// here costs a review at worst, never a bad link.
	if len(byID) == 0 {
		tokens := NameTokens(name)
		if len(tokens) >= 2 && len(NormalizeName(name)) >= MinNameLength {
			persons, err := l.finder.FindByNameTokens(ctx, tokens[0], tokens[len(tokens)-1])
			if err != nil {
				return nil, fmt.Errorf("find by name tokens: %w", err)
			}
			for _, p := range persons {
				byID[p.ID.String()] = &Candidate{Person: p}
			}
		}
	}

	candidates := make([]Candidate, 0, len(byID))
	for _, c := range byID {
		c.Similarity = Score(name, c.Person.DisplayName)
		candidates = append(candidates, *c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.IdentifierMatch() != b.IdentifierMatch() {
			return a.IdentifierMatch()
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		return a.Person.ID.String() < b.Person.ID.String()
	})

	if len(candidates) > l.max {
		candidates = candidates[:l.max]
	}
	return candidates, nil
}
