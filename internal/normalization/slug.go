package normalization

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugBase = 100

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases input and strips diacritics, so "Étude" and "etude"
// normalize to the same string.
func Fold(input string) string {
	folded, _, err := transform.String(stripMarks, strings.TrimSpace(input))
	if err != nil {
		folded = strings.TrimSpace(input)
	}
	return strings.ToLower(folded)
}

// SlugBase turns a title into its URL-safe form: folded, every run of
// non-alphanumeric characters collapsed to a single hyphen, truncated to
// 100 characters without leaving a trailing hyphen.
func SlugBase(title string) string {
	folded := Fold(title)

	var b strings.Builder
	b.Grow(len(folded))
	prevHyphen := true
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevHyphen = false
			continue
		}
		if !prevHyphen {
			b.WriteByte('-')
			prevHyphen = true
		}
	}
	base := strings.Trim(b.String(), "-")
	if len(base) > maxSlugBase {
		base = strings.TrimRight(base[:maxSlugBase], "-")
	}
	return base
}

// Slug appends a random 8-hex-character suffix to the base so two documents
// with identical titles still get distinct slugs.
func Slug(title string) (string, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return "", err
	}
	base := SlugBase(title)
	if base == "" {
		return suffix, nil
	}
	return base + "-" + suffix, nil
}

func randomSuffix() (string, error) {
	var raw [4]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}
