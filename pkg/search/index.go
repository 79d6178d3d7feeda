package search

import (
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// hit records that a suffix starts at rune offset inside places[place].
type hit struct {
	place  int
	offset int
}

// Index ranks the same way Rank does, but looks matches up in a patricia trie
// holding every suffix of every normalized place. A query matches wherever it
// prefixes a stored suffix, so one subtree visit finds all occurrences.
type Index struct {
	mu     sync.RWMutex
	trie   *patricia.Trie
	places []string
	keys   int
	cache  *resultCache
}

// NewIndex creates an empty index. cacheSize <= 0 disables result caching.
func NewIndex(cacheSize int) *Index {
	var cache *resultCache
	if cacheSize > 0 {
		cache = newResultCache(cacheSize)
	}
	return &Index{
		trie:  patricia.NewTrie(),
		cache: cache,
	}
}

// NewIndexFrom builds an index over places.
func NewIndexFrom(places []string, cacheSize int) *Index {
	ix := NewIndex(cacheSize)
	ix.Reset(places)
	return ix
}

// Reset replaces the indexed universe and drops cached results.
func (ix *Index) Reset(places []string) {
	trie := patricia.NewTrie()
	keys := 0
	for i, place := range places {
		norm := Normalize(place)
		offset := 0
		for b := range norm {
			key := patricia.Prefix(norm[b:])
			h := hit{place: i, offset: offset}
			if item := trie.Get(key); item != nil {
				trie.Set(key, append(item.([]hit), h))
			} else {
				trie.Insert(key, []hit{h})
				keys++
			}
			offset++
		}
	}

	ix.mu.Lock()
	ix.trie = trie
	ix.places = append([]string(nil), places...)
	ix.keys = keys
	ix.cache.clear()
	ix.mu.Unlock()

	log.Debugf("Indexed %d places into %d suffix keys", len(places), keys)
}

// Complete implements Ranker.
func (ix *Index) Complete(query string, limit int) []string {
	q := Normalize(query)
	if q == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	cacheKey := q + "\x00" + strconv.Itoa(limit)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if res, ok := ix.cache.get(cacheKey); ok {
		return res
	}

	best := make(map[int]int)
	err := ix.trie.VisitSubtree(patricia.Prefix(q), func(_ patricia.Prefix, item patricia.Item) error {
		for _, h := range item.([]hit) {
			if cur, ok := best[h.place]; !ok || h.offset < cur {
				best[h.place] = h.offset
			}
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting suffix trie: %v", err)
		return []string{}
	}

	cands := make([]Candidate, 0, len(best))
	for i, offset := range best {
		place := ix.places[i]
		cands = append(cands, Candidate{
			Place:      place,
			MatchIndex: offset,
			Length:     utf8.RuneCountInString(place),
		})
	}
	sortCandidates(cands)
	cands = truncate(cands, limit)

	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Place
	}
	ix.cache.put(cacheKey, out)
	return out
}

// Len returns the number of indexed places.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.places)
}

// Stats returns statistics about the index and its cache
func (ix *Index) Stats() map[string]int {
	ix.mu.RLock()
	stats := map[string]int{
		"places":     len(ix.places),
		"suffixKeys": ix.keys,
	}
	ix.mu.RUnlock()
	for k, v := range ix.cache.stats() {
		stats[k] = v
	}
	return stats
}
