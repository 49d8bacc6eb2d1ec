package match

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Score computes name similarity in [0,1]. Token order is ignored so
// "Smith, Jane" and "Jane Smith" score 1.0. The score blends edit distance
// over the sorted token strings with exact-token overlap, which keeps
// initials ("J. Smith") above the link threshold while holding lookalike
// full names ("Janet Smyth" vs "Jane Smith") below it.
func Score(a, b string) float64 {
	ta := NameTokens(a)
	tb := NameTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	sort.Strings(ta)
	sort.Strings(tb)
	ja := strings.Join(ta, " ")
	jb := strings.Join(tb, " ")
	if ja == jb {
		return 1
	}

	return (levenshteinRatio(ja, jb) + jaccard(ta, tb)) / 2
}

func levenshteinRatio(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	ratio := 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(maxLen)
	if ratio < 0 {
		return 0
	}
	return ratio
}

// jaccard computes exact-token set overlap. Inputs are sorted and may contain
// duplicates; duplicates count once.
func jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	shared := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
