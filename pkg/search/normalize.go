package search

import (
	"strings"
	"unicode"

	"github.com/bastiangx/farecast/internal/utils"
)

// Normalize canonicalizes free text for matching.
//
// The steps run in a fixed order: lower-case, collapse whitespace runs into a
// single space, drop every rune that is not a word character, whitespace or
// one of "/(),.-", then trim. Dropping happens after collapsing, so "a ! b"
// keeps two spaces between its letters.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)

	var collapsed strings.Builder
	collapsed.Grow(len(lower))
	inSpace := false
	for _, r := range lower {
		if unicode.IsSpace(r) {
			if !inSpace {
				collapsed.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		collapsed.WriteRune(r)
	}

	var kept strings.Builder
	kept.Grow(collapsed.Len())
	for _, r := range collapsed.String() {
		if utils.IsKeptRune(r) {
			kept.WriteRune(r)
		}
	}
	return strings.TrimSpace(kept.String())
}
