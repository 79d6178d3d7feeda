// Package app wires the search, selection, route, meta and estimate packages into one session per view.
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bastiangx/farecast/pkg/api"
	"github.com/bastiangx/farecast/pkg/config"
	"github.com/bastiangx/farecast/pkg/estimate"
	"github.com/bastiangx/farecast/pkg/meta"
	"github.com/bastiangx/farecast/pkg/route"
	"github.com/bastiangx/farecast/pkg/search"
	"github.com/bastiangx/farecast/pkg/selection"
	"github.com/charmbracelet/log"
)

// Field names.
const (
	FieldFrom = "from"
	FieldTo   = "to"
)

// Options override collaborators, mostly for tests. Nil members fall back
// to the HTTP client built from the config.
type Options struct {
	Clock     route.Clock
	Source    meta.Source
	Predictor estimate.Predictor
}

// Session is one mounted trip form: two place fields with suggestions, a
// date, and the estimate for the last submission.
type Session struct {
	cfg       *config.Config
	client    *api.Client
	loader    *meta.Loader
	index     *search.Index
	form      *route.Model
	requester *estimate.Requester
	from      *selection.Field
	to        *selection.Field

	// ranker is swapped by the metadata hook, which runs under the loader's
	// apply lock and so must not take mu.
	ranker atomic.Pointer[rankerRef]

	mu      sync.Mutex
	mount   *meta.Mount
	focused *selection.Field
}

type rankerRef struct {
	r search.Ranker
}

// NewSession builds an unmounted session from cfg.
func NewSession(cfg *config.Config, opts Options) *Session {
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout())
	s := &Session{cfg: cfg, client: client}

	var source meta.Source = client
	if opts.Source != nil {
		source = opts.Source
	}
	var predictor estimate.Predictor = client
	if opts.Predictor != nil {
		predictor = opts.Predictor
	}

	s.form = route.NewModel(route.Options{
		Configured:   client.Configured(),
		Clock:        opts.Clock,
		OnInvalidate: func() { s.requester.Clear() },
	})
	s.requester = estimate.NewRequester(predictor, estimate.Options{
		Configured: client.Configured(),
		MinDate:    s.form.MinSelectableDate(),
	})

	if cfg.Search.UseIndex {
		s.index = search.NewIndex(cfg.Search.CacheSize)
	}
	ranker := s.rankerFor(nil)
	s.ranker.Store(&rankerRef{r: ranker})
	s.from = selection.NewField(FieldFrom, ranker, func(place string) { s.form.SetOrigin(place) })
	s.to = selection.NewField(FieldTo, ranker, func(place string) { s.form.SetDestination(place) })

	f := s.form.Form()
	s.from.SetText(f.Origin)
	s.to.SetText(f.Destination)

	s.loader = meta.NewLoader(source)
	s.loader.OnLoaded(s.onMetaLoaded)
	return s
}

func (s *Session) rankerFor(places []string) search.Ranker {
	var r search.Ranker
	if s.index != nil {
		s.index.Reset(places)
		r = s.index
	} else {
		r = search.List(places)
	}
	return search.WithLimit(r, s.cfg.Search.Limit)
}

func (s *Session) onMetaLoaded(st meta.State) {
	ranker := s.rankerFor(st.Places)
	s.ranker.Store(&rankerRef{r: ranker})
	s.from.SetRanker(ranker)
	s.to.SetRanker(ranker)
	log.Debug("Place universe replaced", "places", len(st.Places))
}

// Start mounts the session: the metadata read begins in the background.
// Typing and submitting work before it finishes.
func (s *Session) Start(ctx context.Context) *meta.Mount {
	s.unmount()
	m := s.loader.Mount(ctx)
	s.mu.Lock()
	s.mount = m
	s.mu.Unlock()
	return m
}

// Close unmounts the session; a metadata reply still in flight is ignored.
func (s *Session) Close() {
	s.unmount()
}

// unmount detaches the current mount. Unmount waits for an in-progress
// apply, so it runs without holding mu.
func (s *Session) unmount() {
	s.mu.Lock()
	m := s.mount
	s.mount = nil
	s.mu.Unlock()
	if m != nil {
		m.Unmount()
	}
}

// Field returns the named place field, or nil.
func (s *Session) Field(name string) *selection.Field {
	switch name {
	case FieldFrom:
		return s.from
	case FieldTo:
		return s.to
	}
	return nil
}

// Focus moves focus to the named field; the other one loses it.
func (s *Session) Focus(name string) error {
	target := s.Field(name)
	if target == nil {
		return fmt.Errorf("unknown field %q", name)
	}
	s.mu.Lock()
	prev := s.focused
	s.focused = target
	s.mu.Unlock()

	if prev != nil && prev != target {
		prev.Dispatch(selection.FocusLostOutside{})
	}
	target.Dispatch(selection.FocusGained{})
	return nil
}

// Blur removes focus from whichever field has it.
func (s *Session) Blur() {
	s.mu.Lock()
	prev := s.focused
	s.focused = nil
	s.mu.Unlock()
	if prev != nil {
		prev.Dispatch(selection.FocusLostOutside{})
	}
}

// Focused returns the focused field, or nil.
func (s *Session) Focused() *selection.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// Type replaces the focused field's text, as typing would.
func (s *Session) Type(text string) error {
	f := s.Focused()
	if f == nil {
		return fmt.Errorf("no field is focused")
	}
	f.Dispatch(selection.TextChanged{Text: text})
	s.writeField(f, text)
	return nil
}

// Send delivers key or pointer events to the focused field.
func (s *Session) Send(events ...selection.Event) (selection.State, error) {
	f := s.Focused()
	if f == nil {
		return selection.State{}, fmt.Errorf("no field is focused")
	}
	return f.Dispatch(events...), nil
}

func (s *Session) writeField(f *selection.Field, text string) {
	if f == s.from {
		s.form.SetOrigin(text)
	} else {
		s.form.SetDestination(text)
	}
}

// SetDate changes the travel date.
func (s *Session) SetDate(date string) {
	s.form.SetDate(date)
}

// Swap exchanges the endpoints, in the form and in both fields.
func (s *Session) Swap() {
	s.form.Swap()
	s.syncFields()
}

func (s *Session) syncFields() {
	f := s.form.Form()
	s.from.SetText(f.Origin)
	s.to.SetText(f.Destination)
}

// Submit requests an estimate for the current form.
func (s *Session) Submit(ctx context.Context) (estimate.Outcome, error) {
	return s.requester.Submit(ctx, estimate.FromForm(s.form.Form()))
}

// ApplyPreset fills the form from a quick route and submits it right away.
func (s *Session) ApplyPreset(ctx context.Context, id string) (estimate.Outcome, error) {
	f, err := s.form.ApplyPreset(id)
	if err != nil {
		return estimate.Outcome{}, err
	}
	s.syncFields()
	return s.requester.Submit(ctx, estimate.FromForm(f))
}

// Complete ranks the current place universe against query without touching
// either field. A limit <= 0 uses the configured one.
func (s *Session) Complete(query string, limit int) []string {
	return s.ranker.Load().r.Complete(query, limit)
}

// Estimate submits an explicit route, bypassing the form.
func (s *Session) Estimate(ctx context.Context, origin, destination, date string) (estimate.Outcome, error) {
	return s.requester.Submit(ctx, estimate.Submission{
		Origin:      origin,
		Destination: destination,
		Date:        date,
	})
}

// Meta returns the metadata state.
func (s *Session) Meta() meta.State {
	return s.loader.State()
}

// Form exposes the route model.
func (s *Session) Form() *route.Model {
	return s.form
}

// Snapshot collects everything a front end renders.
func (s *Session) Snapshot() View {
	v := View{
		Form:         s.form.Form(),
		MinDate:      s.form.MinSelectableDate(),
		CanSubmit:    s.form.CanSubmit(),
		ActivePreset: s.form.ActivePreset(),
		Presets:      s.form.Presets(),
		From:         s.from.State(),
		To:           s.to.State(),
		Meta:         s.loader.State(),
		Estimate:     s.requester.State(),
		Configured:   s.client.Configured(),
	}
	v.Quarter, v.HasQuarter = s.form.Quarter()
	if f := s.Focused(); f != nil {
		v.Focused = f.Name()
	}
	return v
}

// View is a render-ready snapshot of a session.
type View struct {
	Form         route.Form
	MinDate      string
	Quarter      int
	HasQuarter   bool
	CanSubmit    bool
	Configured   bool
	ActivePreset string
	Presets      []route.Preset
	Focused      string
	From         selection.State
	To           selection.State
	Meta         meta.State
	Estimate     estimate.State
}
