// Package match implements identifier normalization, name similarity, and
// candidate lookup for the resolution engine.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinNameLength is the shortest normalized name worth matching on. Shorter
// names are treated as placeholders.
const MinNameLength = 2

// minPhoneDigits is the shortest digit string accepted as an exact-match
// phone key. Partial numbers collide too easily to be a strong signal.
const minPhoneDigits = 10

// stripMarks removes combining marks so "José" and "Jose" normalize equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lowercases, folds diacritics, and collapses punctuation and
// whitespace so "Smith, Jane" and "jane smith" normalize to the same tokens.
func NormalizeName(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == ',' || r == '-' || r == '.' || r == '\'' || r == '&' || r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NameTokens returns the normalized name split into tokens.
func NameTokens(name string) []string {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// NormalizeEmail lowercases and trims an email address. Returns "" for values
// that cannot serve as an exact-match key.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return ""
	}
	return email
}

// NormalizePhone reduces a phone number to digits, dropping the leading 1
// from 11-digit NANP numbers. Returns "" when fewer than ten digits remain;
// partial numbers are not usable as identifiers.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) < minPhoneDigits {
		return ""
	}
	return digits
}
