package resolution

import (
	"unify/internal/domain"
	"unify/internal/match"
)

// orgMarkers are name tokens that betray an organization submitted through a
// person-shaped form. Grown from what actually shows up in intake data.
var orgMarkers = map[string]struct{}{
	"llc":         {},
	"inc":         {},
	"corp":        {},
	"co":          {},
	"hoa":         {},
	"apartments":  {},
	"apts":        {},
	"church":      {},
	"school":      {},
	"shelter":     {},
	"rescue":      {},
	"society":     {},
	"clinic":      {},
	"veterinary":  {},
	"hospital":    {},
	"foundation":  {},
	"association": {},
	"management":  {},
	"properties":  {},
}

// placeholderNames are normalized names operators type when they have
// nothing. Compared against the full normalized name, not per token, so
// "Nancy None" stays valid.
var placeholderNames = map[string]struct{}{
	"unknown":   {},
	"none":      {},
	"no name":   {},
	"n a":       {},
	"na":        {},
	"test":      {},
	"test test": {},
	"tbd":       {},
	"unk":       {},
	"xx":        {},
	"caregiver": {},
	"owner":     {},
}

// ClassifyName tags the data quality of an incoming display name. Records are
// never rejected for quality; the tag controls matchability and dashboard
// reporting downstream.
func ClassifyName(name string) domain.DataQuality {
	normalized := match.NormalizeName(name)
	if len(normalized) < match.MinNameLength {
		return domain.QualityGarbage
	}
	if _, ok := placeholderNames[normalized]; ok {
		return domain.QualityGarbage
	}
	for _, token := range match.NameTokens(name) {
		if _, ok := orgMarkers[token]; ok {
			return domain.QualityOrgAsPerson
		}
	}
	return domain.QualityValid
}
