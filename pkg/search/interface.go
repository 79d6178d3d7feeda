// Package search is the city-search core: it normalizes place names and ranks them against a typed query.
package search

// DefaultLimit caps how many places a suggestion list shows.
const DefaultLimit = 8

// Ranker defines the interface for place-name ranking engines
type Ranker interface {
	// Complete returns at most limit places matching query, best first.
	// A limit <= 0 falls back to DefaultLimit.
	Complete(query string, limit int) []string
}

// List is the plain-slice Ranker; every call scans the whole universe.
type List []string

// Complete implements Ranker with Rank.
func (l List) Complete(query string, limit int) []string {
	return Rank(l, query, limit)
}

// WithLimit returns a Ranker whose default limit is n instead of DefaultLimit.
func WithLimit(r Ranker, n int) Ranker {
	if n <= 0 {
		return r
	}
	return limited{r: r, n: n}
}

type limited struct {
	r Ranker
	n int
}

func (l limited) Complete(query string, limit int) []string {
	if limit <= 0 {
		limit = l.n
	}
	return l.r.Complete(query, limit)
}
