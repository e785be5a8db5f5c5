package matcher

import (
	"regexp"
	"strings"
)

// HasWildcards reports whether the string contains SQL-LIKE wildcard
// characters ('%' for any run, '_' for a single character).
func HasWildcards(s string) bool {
	return strings.ContainsAny(s, "%_")
}

// wildcardSource translates a SQL-LIKE pattern into an anchored regular
// expression source. The '!' negation prefix must already be stripped.
func wildcardSource(pattern string, caseSensitive bool) string {
	var b strings.Builder
	if !caseSensitive {
		b.WriteString("(?i)")
	}
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

// MatchWildcard reports whether text matches a SQL-LIKE pattern. A leading
// '!' negates the pattern. Exported so collaborators (such as string
// expression predicates) can reuse the exact wildcard semantics.
func MatchWildcard(text, pattern string, caseSensitive bool) bool {
	negate := strings.HasPrefix(pattern, "!")
	if negate {
		pattern = pattern[1:]
	}
	re, err := regexp.Compile(wildcardSource(pattern, caseSensitive))
	if err != nil {
		return false
	}
	return re.MatchString(text) != negate
}
