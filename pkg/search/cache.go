package search

import (
	"sync"

	"github.com/charmbracelet/log"
)

// resultCache keeps recent ranked results keyed by normalized query and limit.
// Eviction drops the least recently touched entry.
type resultCache struct {
	results     map[string][]string
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	maxEntries  int
	mu          sync.Mutex
}

func newResultCache(maxEntries int) *resultCache {
	return &resultCache{
		results:    make(map[string][]string, maxEntries),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

func (rc *resultCache) get(key string) ([]string, bool) {
	if rc == nil {
		return nil, false
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()

	res, ok := rc.results[key]
	if !ok {
		return nil, false
	}
	rc.hits++
	rc.markAccessed(key)
	return append([]string{}, res...), true
}

func (rc *resultCache) put(key string, res []string) {
	if rc == nil || rc.maxEntries <= 0 {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, ok := rc.results[key]; !ok && len(rc.results) >= rc.maxEntries {
		rc.evictLRU()
	}
	rc.results[key] = append([]string{}, res...)
	rc.markAccessed(key)
}

func (rc *resultCache) clear() {
	if rc == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.results = make(map[string][]string, rc.maxEntries)
	rc.accessTime = make(map[string]int64, rc.maxEntries)
}

func (rc *resultCache) stats() map[string]int {
	if rc == nil {
		return map[string]int{}
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return map[string]int{
		"cacheEntries": len(rc.results),
		"maxEntries":   rc.maxEntries,
		"cacheHits":    int(rc.hits),
	}
}

func (rc *resultCache) markAccessed(key string) {
	rc.accessCount++
	rc.accessTime[key] = rc.accessCount
}

func (rc *resultCache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = 9223372036854775807

	for key, t := range rc.accessTime {
		if t < oldestTime {
			oldestTime = t
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(rc.results, oldestKey)
		delete(rc.accessTime, oldestKey)
		log.Debugf("Evicted query %q from result cache", oldestKey)
	}
}
