package normalization

import (
	"regexp"
	"strings"
	"testing"
)

func TestSlugBase(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Deep Learning", "deep-learning"},
		{"diacritics", "Étude de l'IA appliquée", "etude-de-l-ia-appliquee"},
		{"punctuation runs", "Graphs!!!   &   Trees", "graphs-trees"},
		{"leading trailing", "  --Networks--  ", "networks"},
		{"digits", "5G Networks in 2024", "5g-networks-in-2024"},
		{"empty", "!!!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SlugBase(tc.title)
			if got != tc.want {
				t.Fatalf("SlugBase(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestSlugBaseTruncates(t *testing.T) {
	long := strings.Repeat("abcde ", 40)
	got := SlugBase(long)
	if len(got) > 100 {
		t.Fatalf("base length = %d, want <= 100", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("base %q ends with hyphen", got)
	}
}

func TestSlugShape(t *testing.T) {
	pattern := regexp.MustCompile(`^etude-de-l-ia-[0-9a-f]{8}$`)
	got, err := Slug("Étude de l'IA")
	if err != nil {
		t.Fatalf("Slug: %v", err)
	}
	if !pattern.MatchString(got) {
		t.Fatalf("slug %q does not match %s", got, pattern)
	}
}

func TestSlugDistinctSuffixes(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		s, err := Slug("Same Title")
		if err != nil {
			t.Fatalf("Slug: %v", err)
		}
		if seen[s] {
			t.Fatalf("duplicate slug %q", s)
		}
		seen[s] = true
	}
}

func TestSlugEmptyTitleStillHasSuffix(t *testing.T) {
	got, err := Slug("***")
	if err != nil {
		t.Fatalf("Slug: %v", err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{8}$`).MatchString(got) {
		t.Fatalf("slug for empty base = %q, want bare 8 hex chars", got)
	}
}

func TestKeywordKey(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"  Machine   Learning ", "machine learning"},
		{"machine learning", "machine learning"},
		{"Réseaux de Neurones", "reseaux de neurones"},
		{"IA", "ia"},
	}
	for _, tc := range cases {
		if got := KeywordKey(tc.input); got != tc.want {
			t.Fatalf("KeywordKey(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestKeywordSlug(t *testing.T) {
	if got := KeywordSlug("Réseaux de Neurones"); got != "reseaux-de-neurones" {
		t.Fatalf("KeywordSlug = %q", got)
	}
}
