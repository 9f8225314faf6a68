package normalization

import "strings"

// KeywordKey is the canonical identity of a keyword: trimmed, lowercased,
// diacritics stripped, inner whitespace collapsed to single spaces.
// "  Machine   Learning " and "machine learning" share one key.
func KeywordKey(input string) string {
	return strings.Join(strings.Fields(Fold(input)), " ")
}

// KeywordSlug is the URL form of a keyword key.
func KeywordSlug(input string) string {
	return SlugBase(input)
}
