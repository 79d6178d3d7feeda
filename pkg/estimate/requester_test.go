package estimate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/farecast/internal/logger"
	"github.com/bastiangx/farecast/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minDate = "2026-10-17"

// fakePredictor answers each call with the reply registered for its origin,
// after that origin's gate (if any) is released.
type fakePredictor struct {
	mu      sync.Mutex
	calls   []api.PredictRequest
	gates   map[string]chan struct{}
	replies map[string]float64
	errs    map[string]error
}

func newFake() *fakePredictor {
	return &fakePredictor{
		gates:   map[string]chan struct{}{},
		replies: map[string]float64{},
		errs:    map[string]error{},
	}
}

func (f *fakePredictor) gate(origin string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[origin] = ch
	return ch
}

func (f *fakePredictor) Predict(ctx context.Context, req api.PredictRequest) (float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate := f.gates[req.City1]
	v, err := f.replies[req.City1], f.errs[req.City1]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return v, err
}

func (f *fakePredictor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newRequester(p Predictor, configured bool) *Requester {
	r := NewRequester(p, Options{Configured: configured, MinDate: minDate})
	r.SetLogger(logger.Discard())
	return r
}

func TestSubmitSuccess(t *testing.T) {
	fake := newFake()
	fake.replies["Dallas/Fort Worth, TX"] = 287.4
	r := newRequester(fake, true)

	sub := Submission{
		Origin:      "Dallas/Fort Worth, TX",
		Destination: "New York City, NY (Metropolitan Area)",
		Date:        "2026-10-19",
	}
	out, err := r.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, 4, out.Quarter)
	assert.Equal(t, 287.4, out.Prediction)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, api.PredictRequest{
		City1:   "Dallas/Fort Worth, TX",
		City2:   "New York City, NY (Metropolitan Area)",
		Quarter: 4,
	}, fake.calls[0])

	st := r.State()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Result)
	assert.Equal(t, 287.4, *st.Result)
	assert.NoError(t, st.Err)
	assert.Equal(t, sub, st.Submission)
}

func TestValidationOrder(t *testing.T) {
	testCases := []struct {
		description string
		configured  bool
		sub         Submission
		expected    error
	}{
		{"Config first", false, Submission{"", "", "2020-01-01"}, ErrConfigMissing},
		{"Missing origin", true, Submission{"", "B", ""}, ErrEndpointsRequired},
		{"Missing destination", true, Submission{"A", "", "2020-01-01"}, ErrEndpointsRequired},
		{"Same endpoint before date", true, Submission{"A", "A", ""}, ErrSameEndpoint},
		{"Missing date", true, Submission{"A", "B", ""}, ErrDateRequired},
		{"Malformed date", true, Submission{"A", "B", "10/20/2026"}, ErrDateInvalid},
		{"Yesterday", true, Submission{"A", "B", "2026-10-15"}, ErrDateNotFuture},
		{"Today", true, Submission{"A", "B", "2026-10-16"}, ErrDateNotFuture},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			fake := newFake()
			r := newRequester(fake, tc.configured)

			out, err := r.Submit(context.Background(), tc.sub)
			assert.ErrorIs(t, err, tc.expected)
			assert.True(t, out.Applied)
			assert.Equal(t, 0, fake.callCount(), "no network call on validation failure")

			st := r.State()
			assert.False(t, st.Loading)
			assert.Nil(t, st.Result)
			assert.ErrorIs(t, st.Err, tc.expected)
		})
	}
}

func TestValidationErrorsAreValidation(t *testing.T) {
	for _, err := range []error{ErrEndpointsRequired, ErrSameEndpoint, ErrDateRequired, ErrDateInvalid, ErrDateNotFuture} {
		assert.ErrorIs(t, err, ErrValidation)
		assert.NotErrorIs(t, err, ErrConfigMissing)
	}
	assert.NotErrorIs(t, ErrConfigMissing, ErrValidation)
	assert.Equal(t, "From and To cannot be the same city.", ErrSameEndpoint.Error())
}

func TestRequestFailure(t *testing.T) {
	fake := newFake()
	fake.errs["A"] = &api.RequestError{Status: 503, Body: "busy"}
	r := newRequester(fake, true)

	_, err := r.Submit(context.Background(), Submission{"A", "B", "2026-12-01"})
	var reqErr *api.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 503, reqErr.Status)

	st := r.State()
	assert.Nil(t, st.Result)
	assert.Equal(t, "API error 503: busy", st.Err.Error())
	assert.Equal(t, 4, st.Quarter)
}

func TestOptimisticClear(t *testing.T) {
	fake := newFake()
	fake.replies["A"] = 100
	r := newRequester(fake, true)
	_, err := r.Submit(context.Background(), Submission{"A", "B", "2026-12-01"})
	require.NoError(t, err)
	require.NotNil(t, r.State().Result)

	gate := fake.gate("A")
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Submit(context.Background(), Submission{"A", "B", "2027-01-05"})
	}()

	require.Eventually(t, func() bool { return fake.callCount() == 2 }, time.Second, time.Millisecond)
	st := r.State()
	assert.True(t, st.Loading)
	assert.Nil(t, st.Result, "previous result is cleared at submit time")
	assert.NoError(t, st.Err)

	close(gate)
	<-done
	st = r.State()
	assert.False(t, st.Loading)
	assert.Equal(t, 1, st.Quarter)
}

func TestLastSubmitWins(t *testing.T) {
	fake := newFake()
	fake.replies["A"] = 111
	fake.replies["B"] = 222
	gateA := fake.gate("A")
	r := newRequester(fake, true)

	doneA := make(chan Outcome)
	go func() {
		out, _ := r.Submit(context.Background(), Submission{"A", "X", "2026-11-01"})
		doneA <- out
	}()
	require.Eventually(t, func() bool { return fake.callCount() == 1 }, time.Second, time.Millisecond)

	outB, err := r.Submit(context.Background(), Submission{"B", "X", "2026-11-01"})
	require.NoError(t, err)
	assert.True(t, outB.Applied)

	close(gateA)
	outA := <-doneA
	assert.False(t, outA.Applied)
	assert.Equal(t, 111.0, outA.Prediction)
	assert.Less(t, outA.Seq, outB.Seq)

	st := r.State()
	require.NotNil(t, st.Result)
	assert.Equal(t, 222.0, *st.Result)
	assert.Equal(t, "B", st.Submission.Origin)
}

func TestLastSubmitWinsOverLateError(t *testing.T) {
	fake := newFake()
	fake.errs["A"] = errors.New("timeout")
	fake.replies["B"] = 5
	gateA := fake.gate("A")
	r := newRequester(fake, true)

	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		r.Submit(context.Background(), Submission{"A", "X", "2026-11-01"})
	}()
	require.Eventually(t, func() bool { return fake.callCount() == 1 }, time.Second, time.Millisecond)

	_, err := r.Submit(context.Background(), Submission{"B", "X", "2026-11-01"})
	require.NoError(t, err)
	close(gateA)
	<-doneA

	st := r.State()
	assert.NoError(t, st.Err)
	require.NotNil(t, st.Result)
	assert.Equal(t, 5.0, *st.Result)
}

func TestClearSupersedesInFlight(t *testing.T) {
	fake := newFake()
	fake.replies["A"] = 9
	gate := fake.gate("A")
	r := newRequester(fake, true)

	done := make(chan Outcome)
	go func() {
		out, _ := r.Submit(context.Background(), Submission{"A", "B", "2026-11-01"})
		done <- out
	}()
	require.Eventually(t, func() bool { return fake.callCount() == 1 }, time.Second, time.Millisecond)

	r.Clear()
	assert.False(t, r.State().Loading)

	close(gate)
	out := <-done
	assert.False(t, out.Applied)
	st := r.State()
	assert.Nil(t, st.Result)
	assert.NoError(t, st.Err)
}
