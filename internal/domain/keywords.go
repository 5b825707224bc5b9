package domain

import (
	"strings"
	"unicode"
)

// MinKeywordLength drops OCR noise such as "of", "#" or stray digits.
const MinKeywordLength = 3

// ParseKeywords turns OCR text fragments into lower-cased keyword hints.
// Examples:
//   - "Charizard HP 120" -> ["charizard", "120"]
//   - "PIKACHU-ex", "pikachu" -> ["pikachu"] ("ex" is too short, repeat dropped)
//
// Order of first appearance is preserved and duplicates are removed.
func ParseKeywords(texts ...string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, text := range texts {
		for _, frag := range splitAndClean(strings.ToLower(text)) {
			frag = normalizeFragment(frag)
			if len([]rune(frag)) < MinKeywordLength {
				continue
			}
			if _, dup := seen[frag]; dup {
				continue
			}
			seen[frag] = struct{}{}
			out = append(out, frag)
		}
	}
	return out
}

// splitAndClean splits on whitespace and punctuation separators and returns non-empty parts
func splitAndClean(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '/' || r == ',' || r == '|'
	})
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

// normalizeFragment keeps letters and digits only, lower-cased
func normalizeFragment(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

// containsFold is a case-insensitive substring test.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
