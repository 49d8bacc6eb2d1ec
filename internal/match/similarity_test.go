package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	t.Run("identical names", func(t *testing.T) {
		require.Equal(t, 1.0, Score("Jane Smith", "Jane Smith"))
	})

	t.Run("order insensitive", func(t *testing.T) {
		require.Equal(t, 1.0, Score("Smith, Jane", "Jane Smith"))
	})

	t.Run("diacritic insensitive", func(t *testing.T) {
		require.Equal(t, 1.0, Score("José García", "Jose Garcia"))
	})

	t.Run("initial plus shared surname clears the link threshold", func(t *testing.T) {
		require.Greater(t, Score("J. Smith", "Jane Smith"), 0.5)
	})

	t.Run("lookalike full names stay below the link threshold", func(t *testing.T) {
		require.LessOrEqual(t, Score("Janet Smyth", "Jane Smith"), 0.5)
	})

	t.Run("unrelated names score low", func(t *testing.T) {
		require.Less(t, Score("Jane Smith", "Robert Chen"), 0.3)
	})

	t.Run("empty names score zero", func(t *testing.T) {
		require.Equal(t, 0.0, Score("", "Jane Smith"))
		require.Equal(t, 0.0, Score("Jane Smith", ""))
	})

	t.Run("symmetric", func(t *testing.T) {
		require.Equal(t, Score("J. Smith", "Jane Smith"), Score("Jane Smith", "J. Smith"))
	})
}
