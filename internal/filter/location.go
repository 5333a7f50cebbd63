package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases and strips diacritics so "Montréal, QC" matches a
// "montreal" location token.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// matchesLocation accepts postings with no location, remote postings, and
// locations containing any configured token. An empty token list accepts
// everything.
func (f *Filter) matchesLocation(loc string) bool {
	if len(f.Locations) == 0 {
		return true
	}
	l := Fold(strings.TrimSpace(loc))
	if l == "" {
		return true
	}
	if strings.Contains(l, "remote") {
		return true
	}
	for _, want := range f.Locations {
		if want != "" && strings.Contains(l, want) {
			return true
		}
	}
	return false
}
