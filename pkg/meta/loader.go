// Package meta loads the place-name universe and quarter list once per mount.
//
// A mount captures a generation number. When the read finishes, its result is
// applied only if that generation is still current; Unmount and any later
// Mount bump the generation, so a late reply is silently dropped. The
// transport is not aborted.
package meta

import (
	"context"
	"sync"

	"github.com/bastiangx/farecast/internal/logger"
	"github.com/bastiangx/farecast/pkg/api"
	"github.com/charmbracelet/log"
)

// Source is the remote metadata provider.
type Source interface {
	Meta(ctx context.Context) (api.Meta, error)
}

// State is what the rest of the app sees of the metadata.
type State struct {
	Places   []string
	Quarters []int
	Loading  bool
	// Err is set when the load failed; Places then stays empty.
	Err      error
}

// Message is the human-readable load error, or "".
func (s State) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

func emptyState() State {
	return State{Places: []string{}, Quarters: append([]int(nil), api.DefaultQuarters...)}
}

// Loader owns the metadata state of one view.
type Loader struct {
	src      Source
	log      *log.Logger
	// applyMu serializes applying a result (and its hook) against Unmount.
	applyMu  sync.Mutex
	mu       sync.Mutex
	gen      uint64
	state    State
	onLoaded func(State)
}

// NewLoader creates a loader with an empty state.
func NewLoader(src Source) *Loader {
	return &Loader{
		src:   src,
		log:   logger.New("meta"),
		state: emptyState(),
	}
}

// SetLogger replaces the loader's logger.
func (l *Loader) SetLogger(lg *log.Logger) {
	l.log = lg
}

// OnLoaded registers a hook run after a result (success or failure) is applied.
// It is not called for discarded results. The hook must not call Unmount.
func (l *Loader) OnLoaded(fn func(State)) {
	l.mu.Lock()
	l.onLoaded = fn
	l.mu.Unlock()
}

// State returns a snapshot of the metadata.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Mount starts one metadata read in the background.
func (l *Loader) Mount(ctx context.Context) *Mount {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	src := l.src
	l.state = emptyState()
	l.state.Loading = true
	l.mu.Unlock()

	m := &Mount{loader: l, src: src, gen: gen, done: make(chan struct{})}
	go m.run(ctx)
	return m
}

// Mount is one live subscription of a view to the loader.
type Mount struct {
	loader *Loader
	src    Source
	gen    uint64
	done   chan struct{}
	once   sync.Once
}

// Done is closed once the read has finished, whether or not it was applied.
func (m *Mount) Done() <-chan struct{} {
	return m.done
}

// Unmount discards the state and any result still in flight.
func (m *Mount) Unmount() {
	m.once.Do(func() {
		l := m.loader
		l.applyMu.Lock()
		defer l.applyMu.Unlock()
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.gen != m.gen {
			return
		}
		l.gen++
		l.state = emptyState()
	})
}

func (m *Mount) run(ctx context.Context) {
	defer close(m.done)
	l := m.loader

	meta, err := m.src.Meta(ctx)

	l.applyMu.Lock()
	defer l.applyMu.Unlock()
	l.mu.Lock()
	if l.gen != m.gen {
		l.mu.Unlock()
		l.log.Debug("Dropped metadata from a stale mount", "gen", m.gen)
		return
	}
	next := emptyState()
	if err != nil {
		next.Err = err
		l.log.Warnf("Couldn't load city list, free-text entry still works: %v", err)
	} else {
		next.Places = meta.Cities
		next.Quarters = meta.Quarters
		if next.Places == nil {
			next.Places = []string{}
		}
		if next.Quarters == nil {
			next.Quarters = append([]int(nil), api.DefaultQuarters...)
		}
		l.log.Debugf("Loaded %d places, quarters %v", len(next.Places), next.Quarters)
	}
	l.state = next
	hook := l.onLoaded
	l.mu.Unlock()

	if hook != nil {
		hook(next)
	}
}
