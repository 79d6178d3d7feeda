package selection

import (
	"sync"

	"github.com/bastiangx/farecast/pkg/search"
	"github.com/charmbracelet/log"
)

// CommitFunc receives the place committed into a field.
type CommitFunc func(place string)

// Field owns the machine state of one place input. Events are applied in
// the order Dispatch receives them; commit callbacks run after the batch,
// outside the lock, in the same order.
type Field struct {
	name     string
	mu       sync.Mutex
	state    State
	ranker   search.Ranker
	onCommit CommitFunc
}

// NewField creates a closed field. ranker may be nil until places load.
func NewField(name string, ranker search.Ranker, onCommit CommitFunc) *Field {
	return &Field{
		name:     name,
		state:    Initial(),
		ranker:   ranker,
		onCommit: onCommit,
	}
}

// Name returns the label the field was created with.
func (f *Field) Name() string {
	return f.name
}

// Dispatch applies events in order and returns the resulting state.
func (f *Field) Dispatch(events ...Event) State {
	var commits []string

	f.mu.Lock()
	for _, ev := range events {
		next, eff := Step(f.state, ev, f.ranker)
		if place, ok := eff.Committed(); ok {
			next.Query = place
			next, _ = Step(next, UniverseChanged{}, f.ranker)
			commits = append(commits, place)
			log.Debug("Committed place", "field", f.name, "place", place)
		}
		f.state = next
	}
	st := f.state
	f.mu.Unlock()

	if f.onCommit != nil {
		for _, place := range commits {
			f.onCommit(place)
		}
	}
	return st
}

// SetRanker swaps the ranking engine and re-ranks the current text.
func (f *Field) SetRanker(r search.Ranker) State {
	f.mu.Lock()
	f.ranker = r
	f.mu.Unlock()
	return f.Dispatch(UniverseChanged{})
}

// SetText writes text programmatically, e.g. after a swap or preset.
// The list stays in its current phase and no commit fires.
func (f *Field) SetText(text string) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Query = text
	f.state, _ = Step(f.state, UniverseChanged{}, f.ranker)
	return f.state
}

// Text returns the current input text.
func (f *Field) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Query
}

// State returns a snapshot of the machine state. Candidate slices are
// replaced on every re-rank, never modified in place.
func (f *Field) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
