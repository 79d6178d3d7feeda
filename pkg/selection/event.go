package selection

// Event is one input to the machine. The set is closed: only the types in
// this file implement it.
type Event interface {
	isEvent()
}

// TextChanged reports new text in the input.
type TextChanged struct {
	Text string
}

// FocusGained reports the input took focus.
type FocusGained struct{}

// FocusLostOutside reports a pointer or focus event outside the component.
type FocusLostOutside struct{}

// KeyArrowDown is the down-arrow key.
type KeyArrowDown struct{}

// KeyArrowUp is the up-arrow key.
type KeyArrowUp struct{}

// KeyEscape is the escape key.
type KeyEscape struct{}

// KeyEnter is the enter key.
type KeyEnter struct{}

// PointerEnterCandidate reports the pointer hovering candidate Index.
type PointerEnterCandidate struct {
	Index int
}

// PointerCommitCandidate reports a pointer press on candidate Index.
type PointerCommitCandidate struct {
	Index int
}

// UniverseChanged reports the place list behind the ranker was replaced.
type UniverseChanged struct{}

func (TextChanged) isEvent()            {}
func (FocusGained) isEvent()            {}
func (FocusLostOutside) isEvent()       {}
func (KeyArrowDown) isEvent()           {}
func (KeyArrowUp) isEvent()             {}
func (KeyEscape) isEvent()              {}
func (KeyEnter) isEvent()               {}
func (PointerEnterCandidate) isEvent()  {}
func (PointerCommitCandidate) isEvent() {}
func (UniverseChanged) isEvent()        {}
