package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldName reduces a display or roster name to a comparison key: accents are
// stripped, case is folded and surrounding whitespace is removed.
// It is safe for concurrent use.
func FoldName(s string) string {
	s = CompressAllWhitespace(s)
	if s == "" {
		return ""
	}

	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFKC,
	)

	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	return cases.Fold().String(result)
}

// SameName reports whether two names refer to the same member.
func SameName(a, b string) bool {
	fa := FoldName(a)
	return fa != "" && fa == FoldName(b)
}

// TrimQuotes removes one pair of surrounding straight or curly double quotes.
func TrimQuotes(s string) string {
	s = strings.TrimSpace(s)
	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}} {
		if len(s) >= len(pair[0])+len(pair[1]) && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			return strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}

	return s
}
