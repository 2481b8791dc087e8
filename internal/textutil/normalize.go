package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips combining marks after NFKD decomposition, and
// trims surrounding whitespace. "  Cálculo I " becomes "calculo i".
//
// Compatibility decomposition folds styled letters (mathematical bold, double
// struck, modifier capitals) onto their plain forms before lowercasing, so the
// result never holds an uppercase rune.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out := s
	for range 4 {
		next := fold(out)
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = stripMarks(norm.NFKD.String(s))
	}
	return strings.Map(lower, stripped)
}

// lower maps r to lowercase, walking its case-fold orbit when ToLower has no
// answer. Uppercase runes with no lowercase form at all are dropped.
func lower(r rune) rune {
	if l := unicode.ToLower(r); !unicode.IsUpper(l) {
		return l
	}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if !unicode.IsUpper(f) {
			return f
		}
	}
	return -1
}

// EqualFold reports whether a and b are equal after normalization.
func EqualFold(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Contains reports whether the normalized haystack contains the normalized needle.
func Contains(haystack, needle string) bool {
	return strings.Contains(Normalize(haystack), Normalize(needle))
}

func stripMarks(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, s)
}
