//go:build test

package search

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var typingPatterns = [][]string{
	{"s", "sa", "san", "san ", "san f", "san fr", "san francisco"},
	{"n", "ne", "new", "new ", "new y", "new york"},
	{"c", "ch", "chi", "chic", "chicago"},
	{"d", "da", "dal", "dall", "dallas", "dallas/"},
	{"(", "(m", "(me", "(metro"},
}

func memPlaces(n int) []string {
	base := []string{
		"San Francisco, CA (Metropolitan Area)",
		"New York City, NY (Metropolitan Area)",
		"Chicago, IL",
		"Dallas/Fort Worth, TX",
		"Santa Barbara, CA",
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("%s #%d", base[i%len(base)], i))
	}
	return out
}

func TestIndexMemoryConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 400},
		{workers: 4, iterationsPerWorker: 100},
		{workers: 8, iterationsPerWorker: 50},
	}

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", cfg.workers, cfg.iterationsPerWorker), func(t *testing.T) {
			const cacheSize = 16
			ix := NewIndexFrom(memPlaces(2000), cacheSize)

			var baseline runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&baseline)
			baselineGoroutines := runtime.NumGoroutine()

			var wg sync.WaitGroup
			for w := 0; w < cfg.workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for iter := 0; iter < cfg.iterationsPerWorker; iter++ {
						for _, pattern := range typingPatterns {
							for _, q := range pattern {
								_ = ix.Complete(q, 10)
							}
						}
					}
				}()
			}
			wg.Wait()

			var final runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&final)
			goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
			memDelta := int64(final.Alloc) - int64(baseline.Alloc)

			stats := ix.Stats()
			t.Logf("workers=%d mem_delta=%d bytes cache=%d hits=%d goroutine_delta=%d",
				cfg.workers, memDelta, stats["cacheEntries"], stats["cacheHits"], goroutineDelta)

			if stats["cacheEntries"] > cacheSize {
				t.Errorf("cache grew past its bound: %d > %d", stats["cacheEntries"], cacheSize)
			}
			if goroutineDelta > 2 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
			}
			if memDelta > 4<<20 {
				t.Errorf("retained memory grew by %d bytes", memDelta)
			}
		})
	}
}

func TestIndexResetUnderLoad(t *testing.T) {
	ix := NewIndexFrom(memPlaces(500), 32)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				for _, q := range typingPatterns[0] {
					_ = ix.Complete(q, 8)
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		ix.Reset(memPlaces(100 + i*10))
	}
	close(stop)
	wg.Wait()

	want := Rank(memPlaces(590), "san f", 8)
	if got := ix.Complete("san f", 8); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("stale results after reset: got %v want %v", got, want)
	}
}
