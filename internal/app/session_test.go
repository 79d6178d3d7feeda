package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/farecast/pkg/api"
	"github.com/bastiangx/farecast/pkg/config"
	"github.com/bastiangx/farecast/pkg/estimate"
	"github.com/bastiangx/farecast/pkg/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPlaces = []string{
	"Chicago, IL",
	"Dallas/Fort Worth, TX",
	"New York City, NY (Metropolitan Area)",
	"San Diego, CA",
	"San Antonio, TX",
	"Santa Barbara, CA",
	"San Francisco, CA",
}

var sanOrder = []string{"San Diego, CA", "San Antonio, TX", "San Francisco, CA", "Santa Barbara, CA"}

type fakeSource struct {
	meta api.Meta
	err  error
}

func (f fakeSource) Meta(ctx context.Context) (api.Meta, error) {
	return f.meta, f.err
}

type fakePredictor struct {
	mu    sync.Mutex
	value float64
	reqs  []api.PredictRequest
}

func (f *fakePredictor) Predict(ctx context.Context, req api.PredictRequest) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.value, nil
}

func (f *fakePredictor) requests() []api.PredictRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.PredictRequest(nil), f.reqs...)
}

func fixedClock() time.Time {
	return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.Local)
}

func newTestSession(t *testing.T, mutate func(*config.Config)) (*Session, *fakePredictor) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = "http://api.test"
	if mutate != nil {
		mutate(cfg)
	}
	pred := &fakePredictor{value: 312.5}
	s := NewSession(cfg, Options{
		Clock:     fixedClock,
		Source:    fakeSource{meta: api.Meta{Cities: testPlaces, Quarters: []int{1, 2, 3, 4}}},
		Predictor: pred,
	})
	t.Cleanup(s.Close)
	return s, pred
}

func startAndWait(t *testing.T, s *Session) {
	t.Helper()
	m := s.Start(context.Background())
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("metadata load did not finish")
	}
}

func TestSessionDefaults(t *testing.T) {
	s, _ := newTestSession(t, nil)
	v := s.Snapshot()

	assert.Equal(t, "Dallas/Fort Worth, TX", v.Form.Origin)
	assert.Equal(t, "New York City, NY (Metropolitan Area)", v.Form.Destination)
	assert.Equal(t, "2025-03-11", v.Form.TravelDate)
	assert.Equal(t, "2025-03-11", v.MinDate)
	assert.True(t, v.HasQuarter)
	assert.Equal(t, 1, v.Quarter)
	assert.True(t, v.CanSubmit)
	assert.Equal(t, "", v.Focused)
	assert.Len(t, v.Presets, 4)
	assert.Equal(t, v.Form.Origin, s.Field(FieldFrom).Text())
	assert.Equal(t, v.Form.Destination, s.Field(FieldTo).Text())
}

func TestSessionSuggestsAfterLoad(t *testing.T) {
	for _, useIndex := range []bool{true, false} {
		t.Run(map[bool]string{true: "index", false: "list"}[useIndex], func(t *testing.T) {
			s, _ := newTestSession(t, func(c *config.Config) { c.Search.UseIndex = useIndex })

			require.NoError(t, s.Focus(FieldFrom))
			require.NoError(t, s.Type("san"))
			assert.Empty(t, s.Field(FieldFrom).State().Visible())

			startAndWait(t, s)
			st := s.Field(FieldFrom).State()
			assert.Equal(t, sanOrder, st.Visible())
			assert.Equal(t, 0, st.ActiveIndex())
		})
	}
}

func TestSessionKeyboardCommit(t *testing.T) {
	s, _ := newTestSession(t, nil)
	startAndWait(t, s)

	require.NoError(t, s.Focus(FieldFrom))
	require.NoError(t, s.Type("san"))
	st, err := s.Send(selection.KeyArrowDown{}, selection.KeyEnter{})
	require.NoError(t, err)

	assert.Equal(t, selection.Closed, st.Phase)
	assert.Equal(t, "San Antonio, TX", st.Query)
	assert.Equal(t, "San Antonio, TX", s.Form().Form().Origin)
}

func TestSessionPointerCommitAfterBlur(t *testing.T) {
	s, _ := newTestSession(t, nil)
	startAndWait(t, s)

	require.NoError(t, s.Focus(FieldTo))
	require.NoError(t, s.Type("san"))
	s.Blur()
	s.Field(FieldTo).Dispatch(selection.PointerCommitCandidate{Index: 2})

	assert.Equal(t, "San Francisco, CA", s.Form().Form().Destination)
}

func TestSessionFocusClosesOtherField(t *testing.T) {
	s, _ := newTestSession(t, nil)
	startAndWait(t, s)

	require.NoError(t, s.Focus(FieldFrom))
	require.NoError(t, s.Type("chi"))
	assert.Equal(t, selection.Open, s.Field(FieldFrom).State().Phase)

	require.NoError(t, s.Focus(FieldTo))
	assert.Equal(t, selection.Closed, s.Field(FieldFrom).State().Phase)
	assert.Equal(t, selection.Open, s.Field(FieldTo).State().Phase)
	assert.Equal(t, FieldTo, s.Snapshot().Focused)

	assert.Error(t, s.Focus("via"))
}

func TestSessionTypeWithoutFocus(t *testing.T) {
	s, _ := newTestSession(t, nil)
	assert.Error(t, s.Type("x"))
	_, err := s.Send(selection.KeyEnter{})
	assert.Error(t, err)
}

func TestSessionSearchLimit(t *testing.T) {
	s, _ := newTestSession(t, func(c *config.Config) { c.Search.Limit = 2 })
	startAndWait(t, s)

	require.NoError(t, s.Focus(FieldFrom))
	require.NoError(t, s.Type("san"))
	assert.Equal(t, sanOrder[:2], s.Field(FieldFrom).State().Visible())
}

func TestSessionSubmitAndInvalidate(t *testing.T) {
	s, pred := newTestSession(t, nil)

	out, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, 1, out.Quarter)

	reqs := pred.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, api.PredictRequest{
		City1:   "Dallas/Fort Worth, TX",
		City2:   "New York City, NY (Metropolitan Area)",
		Quarter: 1,
	}, reqs[0])

	est := s.Snapshot().Estimate
	require.NotNil(t, est.Result)
	assert.InDelta(t, 312.5, *est.Result, 1e-9)

	s.SetDate("2025-07-01")
	assert.Nil(t, s.Snapshot().Estimate.Result)
	q, ok := s.Form().Quarter()
	assert.True(t, ok)
	assert.Equal(t, 3, q)
}

func TestSessionTypingInvalidates(t *testing.T) {
	s, _ := newTestSession(t, nil)
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Focus(FieldTo))
	require.NoError(t, s.Type("Chicago, IL"))
	v := s.Snapshot()
	assert.Nil(t, v.Estimate.Result)
	assert.Equal(t, "Chicago, IL", v.Form.Destination)
}

func TestSessionSubmitValidation(t *testing.T) {
	s, pred := newTestSession(t, nil)
	require.NoError(t, s.Focus(FieldTo))
	require.NoError(t, s.Type("Dallas/Fort Worth, TX"))

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, estimate.ErrSameEndpoint)
	assert.ErrorIs(t, err, estimate.ErrValidation)
	assert.Empty(t, pred.requests())
	assert.Equal(t, "From and To cannot be the same city.", s.Snapshot().Estimate.Err.Error())
}

func TestSessionUnconfigured(t *testing.T) {
	s, pred := newTestSession(t, func(c *config.Config) { c.API.BaseURL = "" })
	v := s.Snapshot()
	assert.False(t, v.Configured)
	assert.False(t, v.CanSubmit)

	_, err := s.Submit(context.Background())
	assert.True(t, errors.Is(err, estimate.ErrConfigMissing))
	assert.Empty(t, pred.requests())
}

func TestSessionSwap(t *testing.T) {
	s, _ := newTestSession(t, nil)
	s.Swap()

	v := s.Snapshot()
	assert.Equal(t, "New York City, NY (Metropolitan Area)", v.Form.Origin)
	assert.Equal(t, "Dallas/Fort Worth, TX", v.Form.Destination)
	assert.Equal(t, v.Form.Origin, s.Field(FieldFrom).Text())
	assert.Equal(t, v.Form.Destination, s.Field(FieldTo).Text())
}

func TestSessionApplyPreset(t *testing.T) {
	s, pred := newTestSession(t, nil)

	out, err := s.ApplyPreset(context.Background(), "s4")
	require.NoError(t, err)
	assert.True(t, out.Applied)

	v := s.Snapshot()
	assert.Equal(t, "s4", v.ActivePreset)
	assert.Equal(t, "San Francisco, CA (Metropolitan Area)", v.Form.Origin)
	assert.Equal(t, "Seattle, WA", v.Form.Destination)
	assert.Equal(t, "2025-03-14", v.Form.TravelDate)
	assert.Equal(t, "Seattle, WA", s.Field(FieldTo).Text())

	reqs := pred.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "San Francisco, CA (Metropolitan Area)", reqs[0].City1)

	s.SetDate("2025-04-02")
	assert.Equal(t, "", s.Snapshot().ActivePreset)

	_, err = s.ApplyPreset(context.Background(), "s9")
	assert.Error(t, err)
}

func TestSessionMetaFailureKeepsFreeText(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = "http://api.test"
	s := NewSession(cfg, Options{
		Clock:     fixedClock,
		Source:    fakeSource{err: errors.New("boom")},
		Predictor: &fakePredictor{value: 1},
	})
	defer s.Close()
	startAndWait(t, s)

	v := s.Snapshot()
	assert.EqualError(t, v.Meta.Err, "boom")
	assert.Equal(t, []int{1, 2, 3, 4}, v.Meta.Quarters)

	require.NoError(t, s.Focus(FieldFrom))
	require.NoError(t, s.Type("Anywhere"))
	assert.Equal(t, "Anywhere", s.Snapshot().Form.Origin)
	_, err := s.Submit(context.Background())
	assert.NoError(t, err)
}

func TestSessionCompleteAndEstimate(t *testing.T) {
	s, pred := newTestSession(t, nil)
	assert.Empty(t, s.Complete("san", 0))

	startAndWait(t, s)
	assert.Equal(t, sanOrder, s.Complete("san", 0))
	assert.Equal(t, sanOrder[:1], s.Complete("san", 1))
	assert.Equal(t, testPlaces, s.Meta().Places)

	out, err := s.Estimate(context.Background(), "Chicago, IL", "San Diego, CA", "2025-11-20")
	require.NoError(t, err)
	assert.Equal(t, 4, out.Quarter)
	assert.InDelta(t, 312.5, out.Prediction, 1e-9)
	require.Len(t, pred.requests(), 1)

	_, err = s.Estimate(context.Background(), "Chicago, IL", "San Diego, CA", "2025-03-10")
	assert.ErrorIs(t, err, estimate.ErrDateNotFuture)
}

type gatedSource struct {
	called  chan struct{}
	release chan struct{}
}

func newGatedSource() *gatedSource {
	return &gatedSource{called: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSource) Meta(ctx context.Context) (api.Meta, error) {
	close(g.called)
	<-g.release
	return api.Meta{Cities: testPlaces, Quarters: []int{1, 2, 3, 4}}, nil
}

func newGatedSession(t *testing.T) (*Session, *gatedSource) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = "http://api.test"
	src := newGatedSource()
	s := NewSession(cfg, Options{Clock: fixedClock, Source: src, Predictor: &fakePredictor{}})
	return s, src
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestSessionMetaAppliesWhileSessionLocked(t *testing.T) {
	s, src := newGatedSession(t)
	defer s.Close()
	m := s.Start(context.Background())
	waitClosed(t, src.called, "metadata request")

	// Start and Close take mu; applying the reply must not need it.
	s.mu.Lock()
	close(src.release)
	waitClosed(t, m.Done(), "metadata apply")
	s.mu.Unlock()

	assert.Equal(t, sanOrder, s.Complete("san", 0))
}

func TestSessionCloseDuringLoad(t *testing.T) {
	s, src := newGatedSession(t)
	m := s.Start(context.Background())
	waitClosed(t, src.called, "metadata request")

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()
	waitClosed(t, closed, "Close")

	close(src.release)
	waitClosed(t, m.Done(), "metadata read")
	assert.Empty(t, s.Meta().Places)
	assert.Empty(t, s.Complete("san", 0))
}

func TestSessionCloseRacesReply(t *testing.T) {
	for i := 0; i < 200; i++ {
		s, src := newGatedSession(t)
		m := s.Start(context.Background())
		waitClosed(t, src.called, "metadata request")

		closed := make(chan struct{})
		close(src.release)
		go func() {
			s.Close()
			close(closed)
		}()
		waitClosed(t, closed, "Close")
		waitClosed(t, m.Done(), "metadata read")
	}
}
