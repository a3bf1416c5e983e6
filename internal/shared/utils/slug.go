package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphen = regexp.MustCompile(`-+`)
)

// asciiFolder strips combining marks after canonical decomposition:
// "Nguyễn Nhật Ánh" → "Nguyen Nhat Anh", "Crème brûlée" → "Creme brulee"
func asciiFolder() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// RemoveDiacritics folds accented letters to their base letter.
// Letters without a decomposition (đ, ø, ł) are mapped explicitly.
func RemoveDiacritics(input string) string {
	folded, _, err := transform.String(asciiFolder(), input)
	if err != nil {
		folded = input
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case 'đ':
			return 'd'
		case 'Đ':
			return 'D'
		case 'ø':
			return 'o'
		case 'Ø':
			return 'O'
		case 'ł':
			return 'l'
		case 'Ł':
			return 'L'
		}
		return r
	}, folded)
}

// GenerateSlug converts free text into a lowercase ASCII slug
// made of [a-z0-9] segments joined by single hyphens.
func GenerateSlug(input string) string {
	// Step 1: transliterate ("Lòng Thương Xót" → "Long Thuong Xot")
	ascii := RemoveDiacritics(input)

	// Step 2: lowercase
	lower := strings.ToLower(ascii)

	// Step 3: whitespace runs → single hyphen
	hyphenated := strings.Join(strings.Fields(lower), "-")

	// Step 4: keep only a-z, 0-9, hyphens
	cleaned := nonSlugChars.ReplaceAllString(hyphenated, "")

	// Step 5: collapse "--" left behind by removed characters
	normalized := repeatedHyphen.ReplaceAllString(cleaned, "-")

	return strings.Trim(normalized, "-")
}

// TruncateSlug shortens slug to at most maxLen bytes. When the cut lands
// inside a segment, it backs off to the last complete hyphen-delimited
// segment; a single over-long segment is hard-cut instead.
func TruncateSlug(slug string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(slug) <= maxLen {
		return strings.Trim(slug, "-")
	}

	cut := slug[:maxLen]
	if slug[maxLen] != '-' {
		if idx := strings.LastIndex(cut, "-"); idx > 0 {
			cut = cut[:idx]
		}
	}
	return strings.Trim(cut, "-")
}
