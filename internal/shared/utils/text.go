package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeSearch prepares user-supplied free text for a store query:
// NFKC normalization, control characters dropped, whitespace collapsed,
// and the result capped at maxRunes runes.
func SanitizeSearch(input string, maxRunes int) string {
	normalized := norm.NFKC.String(input)

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, normalized)

	collapsed := strings.Join(strings.Fields(cleaned), " ")

	if maxRunes > 0 {
		if rs := []rune(collapsed); len(rs) > maxRunes {
			collapsed = strings.TrimSpace(string(rs[:maxRunes]))
		}
	}
	return collapsed
}

// EscapeLike escapes LIKE/ILIKE wildcards so s matches literally
func EscapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
