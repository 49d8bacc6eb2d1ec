package resolution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"unify/internal/domain"
)

func TestClassifyName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want domain.DataQuality
	}{
		{"ordinary name", "Jane Smith", domain.QualityValid},
		{"accented name", "José García", domain.QualityValid},
		{"surname matching a placeholder token", "Nancy None", domain.QualityValid},
		{"empty", "", domain.QualityGarbage},
		{"single character", "x", domain.QualityGarbage},
		{"placeholder unknown", "Unknown", domain.QualityGarbage},
		{"placeholder n/a", "N/A", domain.QualityGarbage},
		{"placeholder test", "TEST", domain.QualityGarbage},
		{"apartment complex", "Maple Grove Apartments", domain.QualityOrgAsPerson},
		{"llc suffix", "Happy Tails Rescue LLC", domain.QualityOrgAsPerson},
		{"hoa", "Cedar Ridge HOA", domain.QualityOrgAsPerson},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClassifyName(tt.in))
		})
	}
}
