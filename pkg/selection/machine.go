/*
Package selection is the state machine behind a place-name input with a
suggestion list.

The machine is an explicit transition table: Step takes a State and an Event
and returns the next State plus an Effect, without touching anything else.
Field wraps a State for one input and applies commits to its owner.

# States

	Closed          the list is hidden; Active and Candidates are kept for the next open
	Open{Active}    the list is shown; Active is -1 or an index into Candidates

# Events

	TextChanged{Text}           rank Text, open, Active = 0 (or -1 without candidates)
	FocusGained                 open with the last candidates
	FocusLostOutside            close
	KeyArrowDown / KeyArrowUp   open when closed; otherwise move Active with wrap-around
	KeyEscape                   close
	KeyEnter                    commit Candidates[Active] and close
	PointerEnterCandidate{i}    Active = i
	PointerCommitCandidate{i}   commit Candidates[i] and close, in either phase
	UniverseChanged             re-rank the stored query against the new place list

A pointer commit is honoured even after the list closed, as long as the
index still points into the kept candidates. A blur delivered ahead of the
click that caused it therefore never swallows the commit.
*/
package selection

import (
	"github.com/bastiangx/farecast/pkg/search"
)

// Phase is the visible state of the suggestion list.
type Phase int

const (
	Closed Phase = iota
	Open
)

func (p Phase) String() string {
	if p == Open {
		return "open"
	}
	return "closed"
}

// State is the full machine state. The zero value is not valid; use Initial.
type State struct {
	Phase      Phase
	Active     int
	Candidates []string
	Query      string
}

// Initial returns the start state: closed, nothing ranked.
func Initial() State {
	return State{Phase: Closed, Active: -1}
}

// Visible returns the candidates consumers may render; nil while closed.
func (s State) Visible() []string {
	if s.Phase != Open {
		return nil
	}
	return s.Candidates
}

// ActiveIndex returns the highlighted candidate, -1 while closed or empty.
func (s State) ActiveIndex() int {
	if s.Phase != Open {
		return -1
	}
	return s.Active
}

// ActivePlace returns the highlighted candidate when there is one.
func (s State) ActivePlace() (string, bool) {
	i := s.ActiveIndex()
	if i < 0 {
		return "", false
	}
	return s.Candidates[i], true
}

func (s State) valid(i int) bool {
	return i >= 0 && i < len(s.Candidates)
}

// Effect is what a step asks the owner to do.
type Effect struct {
	// Commit is set when a place was chosen.
	Commit *string
}

// Committed reports the committed place, if any.
func (e Effect) Committed() (string, bool) {
	if e.Commit == nil {
		return "", false
	}
	return *e.Commit, true
}

func commit(place string) Effect {
	return Effect{Commit: &place}
}

// Step applies ev to s. ranker is consulted only by events that re-rank and
// may be nil otherwise; a nil ranker ranks nothing.
func Step(s State, ev Event, ranker search.Ranker) (State, Effect) {
	switch e := ev.(type) {
	case TextChanged:
		s.Query = e.Text
		s.Candidates = rank(ranker, e.Text)
		s.Phase = Open
		s.Active = firstIndex(s.Candidates)

	case UniverseChanged:
		s.Candidates = rank(ranker, s.Query)
		s.Active = firstIndex(s.Candidates)

	case FocusGained:
		s.Phase = Open

	case FocusLostOutside:
		s.Phase = Closed

	case KeyArrowDown:
		if s.Phase == Closed {
			s.Phase = Open
			break
		}
		if n := len(s.Candidates); n > 0 {
			s.Active = (s.Active + 1) % n
		}

	case KeyArrowUp:
		if s.Phase == Closed {
			s.Phase = Open
			break
		}
		if n := len(s.Candidates); n > 0 {
			// Active may be -1 only when n == 0, so (Active-1+n) stays >= 0.
			s.Active = (s.Active - 1 + n) % n
		}

	case KeyEscape:
		if s.Phase == Open {
			s.Phase = Closed
		}

	case KeyEnter:
		if s.Phase == Open && s.valid(s.Active) {
			place := s.Candidates[s.Active]
			s.Phase = Closed
			return s, commit(place)
		}

	case PointerEnterCandidate:
		if s.valid(e.Index) {
			s.Active = e.Index
		}

	case PointerCommitCandidate:
		if s.valid(e.Index) {
			place := s.Candidates[e.Index]
			s.Active = e.Index
			s.Phase = Closed
			return s, commit(place)
		}
	}
	return s, Effect{}
}

func rank(ranker search.Ranker, query string) []string {
	if ranker == nil {
		return []string{}
	}
	return ranker.Complete(query, 0)
}

func firstIndex(cands []string) int {
	if len(cands) > 0 {
		return 0
	}
	return -1
}
