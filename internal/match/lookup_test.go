package match

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"unify/internal/domain"
)

type stubFinder struct {
	byEmail map[string][]domain.CanonicalPerson
	byPhone map[string][]domain.CanonicalPerson
	byName  map[string][]domain.CanonicalPerson
}

func (f *stubFinder) FindByEmail(_ context.Context, email string) ([]domain.CanonicalPerson, error) {
	return f.byEmail[email], nil
}

func (f *stubFinder) FindByPhone(_ context.Context, phone string) ([]domain.CanonicalPerson, error) {
	return f.byPhone[phone], nil
}

func (f *stubFinder) FindByNameTokens(_ context.Context, first, last string) ([]domain.CanonicalPerson, error) {
	return f.byName[first+"|"+last], nil
}

func testPerson(name string) domain.CanonicalPerson {
	return domain.CanonicalPerson{
		ID:          uuid.New(),
		DisplayName: name,
		DataQuality: domain.QualityValid,
		IsCanonical: true,
		CreatedAt:   time.Now(),
	}
}

func TestLookupCandidates(t *testing.T) {
	ctx := context.Background()

	t.Run("email hit short circuits name blocking", func(t *testing.T) {
		emailHit := testPerson("Jane Smith")
		blocked := testPerson("Jane Smithson")
		finder := &stubFinder{
			byEmail: map[string][]domain.CanonicalPerson{"jane@x.com": {emailHit}},
			byName:  map[string][]domain.CanonicalPerson{"jane|smith": {blocked}},
		}

		candidates, err := NewLookup(finder, 5).Candidates(ctx, "Jane Smith", "jane@x.com", "")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		require.Equal(t, emailHit.ID, candidates[0].Person.ID)
		require.True(t, candidates[0].EmailMatch)
		require.False(t, candidates[0].PhoneMatch)
		require.Equal(t, 1.0, candidates[0].Similarity)
	})

	t.Run("email and phone hits on the same person merge flags", func(t *testing.T) {
		p := testPerson("Jane Smith")
		finder := &stubFinder{
			byEmail: map[string][]domain.CanonicalPerson{"jane@x.com": {p}},
			byPhone: map[string][]domain.CanonicalPerson{"5035551234": {p}},
		}

		candidates, err := NewLookup(finder, 5).Candidates(ctx, "Jane Smith", "jane@x.com", "5035551234")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		require.True(t, candidates[0].EmailMatch)
		require.True(t, candidates[0].PhoneMatch)
	})

	t.Run("name blocking used when no identifier hits", func(t *testing.T) {
		blocked := testPerson("Jane Smith")
		finder := &stubFinder{
			byName: map[string][]domain.CanonicalPerson{"jane|smith": {blocked}},
		}

		candidates, err := NewLookup(finder, 5).Candidates(ctx, "Jane Smith", "jane@x.com", "")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		require.False(t, candidates[0].IdentifierMatch())
	})

	t.Run("empty result when nothing plausible", func(t *testing.T) {
		finder := &stubFinder{}
		candidates, err := NewLookup(finder, 5).Candidates(ctx, "Jane Smith", "jane@x.com", "")
		require.NoError(t, err)
		require.Empty(t, candidates)
	})

	t.Run("candidates ordered by similarity and capped", func(t *testing.T) {
		shared := []domain.CanonicalPerson{
			testPerson("Janet Smyth"),
			testPerson("Jane Smith"),
			testPerson("J. Smith"),
		}
		finder := &stubFinder{
			byEmail: map[string][]domain.CanonicalPerson{"jane@x.com": shared},
		}

		candidates, err := NewLookup(finder, 2).Candidates(ctx, "Jane Smith", "jane@x.com", "")
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		require.Equal(t, "Jane Smith", candidates[0].Person.DisplayName)
		require.Greater(t, candidates[0].Similarity, candidates[1].Similarity)
	})

	t.Run("single token names skip blocking", func(t *testing.T) {
		finder := &stubFinder{
			byName: map[string][]domain.CanonicalPerson{"jane|jane": {testPerson("Jane")}},
		}
		candidates, err := NewLookup(finder, 5).Candidates(ctx, "Jane", "", "")
		require.NoError(t, err)
		require.Empty(t, candidates)
	})
}
