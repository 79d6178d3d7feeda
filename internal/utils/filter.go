package utils

import (
	"unicode"
)

// IsWordRune reports whether r is an ASCII word character: [A-Za-z0-9_].
func IsWordRune(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9')
}

// IsPlacePunct checks for the punctuation that place names keep after normalizing,
// e.g. "Dallas/Fort Worth, TX" or "New York City, NY (Metropolitan Area)"
func IsPlacePunct(r rune) bool {
	switch r {
	case '/', '(', ')', ',', '.', '-':
		return true
	}
	return false
}

// IsKeptRune reports whether r survives place-name normalization.
func IsKeptRune(r rune) bool {
	return IsWordRune(r) || unicode.IsSpace(r) || IsPlacePunct(r)
}

// IsISODate checks the shape of a YYYY-MM-DD string without parsing it
func IsISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 4 || i == 7 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
