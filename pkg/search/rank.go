package search

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Candidate is a place that matched a query, with the data it is ranked by.
type Candidate struct {
	Place string
	// MatchIndex is the rune offset of the first match inside the normalized place.
	MatchIndex int
	// Length is the rune count of the original place string.
	Length int
}

// Rank returns the places of universe that contain the normalized query,
// ordered by earliest match, then shorter name, then byte-wise order.
// Blank queries yield no places.
func Rank(universe []string, query string, limit int) []string {
	cands := Candidates(universe, query, limit)
	if len(cands) == 0 {
		return []string{}
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Place
	}
	return out
}

// Candidates is Rank with the ranking metadata kept.
func Candidates(universe []string, query string, limit int) []Candidate {
	q := Normalize(query)
	if q == "" {
		return nil
	}

	var cands []Candidate
	for _, place := range universe {
		p := Normalize(place)
		idx := strings.Index(p, q)
		if idx < 0 {
			continue
		}
		cands = append(cands, Candidate{
			Place:      place,
			MatchIndex: utf8.RuneCountInString(p[:idx]),
			Length:     utf8.RuneCountInString(place),
		})
	}
	sortCandidates(cands)
	return truncate(cands, limit)
}

func sortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		return less(cands[i], cands[j])
	})
}

func less(a, b Candidate) bool {
	if a.MatchIndex != b.MatchIndex {
		return a.MatchIndex < b.MatchIndex
	}
	if a.Length != b.Length {
		return a.Length < b.Length
	}
	return a.Place < b.Place
}

func truncate(cands []Candidate, limit int) []Candidate {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(cands) > limit {
		return cands[:limit]
	}
	return cands
}
