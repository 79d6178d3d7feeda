// Package route holds the trip form: two endpoints, a travel date and the quarter derived from it.
package route

import (
	"fmt"
	"sync"
	"time"
)

const (
	DefaultOrigin      = "Dallas/Fort Worth, TX"
	DefaultDestination = "New York City, NY (Metropolitan Area)"
)

// Clock returns the current time; tests pin it.
type Clock func() time.Time

// Form is the raw user input.
type Form struct {
	Origin      string
	Destination string
	TravelDate  string
}

// Options configure a Model.
type Options struct {
	// Configured reports whether an API base URL is set.
	Configured bool
	Clock      Clock
	// OnInvalidate runs after every edit; it should drop any shown estimate.
	OnInvalidate func()
}

// Model is the route form. The minimum selectable date is fixed when the
// model is built and does not roll over at midnight.
type Model struct {
	mu           sync.Mutex
	form         Form
	minDate      string
	configured   bool
	activePreset string
	presets      []Preset
	onInvalidate func()
}

// NewModel builds a form prefilled with the default route and the earliest
// selectable date.
func NewModel(opts Options) *Model {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	minDate := DaysFrom(now, 1)
	return &Model{
		form: Form{
			Origin:      DefaultOrigin,
			Destination: DefaultDestination,
			TravelDate:  minDate,
		},
		minDate:      minDate,
		configured:   opts.Configured,
		presets:      Presets(now),
		onInvalidate: opts.OnInvalidate,
	}
}

// Form returns a copy of the current input.
func (m *Model) Form() Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// MinSelectableDate is tomorrow as of construction, YYYY-MM-DD.
func (m *Model) MinSelectableDate() string {
	return m.minDate
}

// Configured reports whether network operations can run at all.
func (m *Model) Configured() bool {
	return m.configured
}

// SetOrigin overwrites the origin.
func (m *Model) SetOrigin(v string) {
	m.edit(func(f *Form) { f.Origin = v })
}

// SetDestination overwrites the destination.
func (m *Model) SetDestination(v string) {
	m.edit(func(f *Form) { f.Destination = v })
}

// SetDate overwrites the travel date.
func (m *Model) SetDate(v string) {
	m.edit(func(f *Form) { f.TravelDate = v })
}

// Swap exchanges origin and destination.
func (m *Model) Swap() {
	m.edit(func(f *Form) { f.Origin, f.Destination = f.Destination, f.Origin })
}

func (m *Model) edit(fn func(*Form)) {
	m.mu.Lock()
	fn(&m.form)
	m.activePreset = ""
	m.mu.Unlock()
	m.invalidate()
}

func (m *Model) invalidate() {
	if m.onInvalidate != nil {
		m.onInvalidate()
	}
}

// Presets returns the quick routes available to this model.
func (m *Model) Presets() []Preset {
	return append([]Preset(nil), m.presets...)
}

// ApplyPreset replaces the whole form with the preset and marks it active.
func (m *Model) ApplyPreset(id string) (Form, error) {
	for _, p := range m.presets {
		if p.ID != id {
			continue
		}
		m.invalidate()
		m.mu.Lock()
		m.form = Form{Origin: p.Origin, Destination: p.Destination, TravelDate: p.Date}
		m.activePreset = p.ID
		f := m.form
		m.mu.Unlock()
		return f, nil
	}
	return Form{}, fmt.Errorf("unknown preset %q", id)
}

// ActivePreset returns the id of the preset that filled the form, or "".
func (m *Model) ActivePreset() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activePreset
}

// Quarter derives the quarter of the current date for display. ok is false
// when the date is empty or malformed.
func (m *Model) Quarter() (q int, ok bool) {
	m.mu.Lock()
	date := m.form.TravelDate
	m.mu.Unlock()
	if date == "" {
		return 0, false
	}
	q, err := QuarterOf(date)
	if err != nil {
		return 0, false
	}
	return q, true
}

// CanSubmit reports whether the form is complete enough to request an
// estimate. It does not check origin != destination; submit reports that.
func (m *Model) CanSubmit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.form
	return m.configured &&
		f.Origin != "" &&
		f.Destination != "" &&
		f.TravelDate != "" &&
		NotBefore(f.TravelDate, m.minDate)
}
