/*
Package estimate validates a route submission and requests a fare estimate.

Every Submit takes the next sequence number and resets the visible state to
loading. When the request settles, its result is written only if no other
Submit (or Clear) happened in the meantime, so the last submission always
decides what is shown, whatever order the replies arrive in.
*/
package estimate

import (
	"context"
	"sync"

	"github.com/bastiangx/farecast/internal/logger"
	"github.com/bastiangx/farecast/pkg/api"
	"github.com/bastiangx/farecast/pkg/route"
	"github.com/charmbracelet/log"
)

// Predictor is the remote prediction provider.
type Predictor interface {
	Predict(ctx context.Context, req api.PredictRequest) (float64, error)
}

// Submission is one request for an estimate.
type Submission struct {
	Origin      string
	Destination string
	Date        string
}

// FromForm converts the route form into a submission.
func FromForm(f route.Form) Submission {
	return Submission{Origin: f.Origin, Destination: f.Destination, Date: f.TravelDate}
}

// State is the estimate shown to the user. At most one of Result and Err is set.
type State struct {
	Loading bool
	Result  *float64
	Err     error
	// Submission and Quarter describe the request that produced Result.
	Submission Submission
	Quarter    int
	Seq        uint64
}

// Outcome is what a single Submit produced.
type Outcome struct {
	Seq        uint64
	Quarter    int
	Prediction float64
	// Applied is false when a newer Submit or Clear superseded this one.
	Applied bool
}

// Options configure a Requester.
type Options struct {
	// Configured reports whether an API base URL is set.
	Configured bool
	// MinDate is the earliest acceptable travel date, YYYY-MM-DD.
	MinDate string
}

// Requester issues estimate requests and keeps the latest one's state.
type Requester struct {
	pred       Predictor
	configured bool
	minDate    string
	log        *log.Logger

	mu    sync.Mutex
	seq   uint64
	state State
}

// NewRequester creates an idle requester.
func NewRequester(pred Predictor, opts Options) *Requester {
	return &Requester{
		pred:       pred,
		configured: opts.Configured,
		minDate:    opts.MinDate,
		log:        logger.New("estimate"),
	}
}

// SetLogger replaces the requester's logger.
func (r *Requester) SetLogger(lg *log.Logger) {
	r.log = lg
}

// State returns the current estimate state.
func (r *Requester) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Clear drops the shown estimate and supersedes any request in flight.
func (r *Requester) Clear() {
	r.mu.Lock()
	r.seq++
	r.state = State{Seq: r.seq}
	r.mu.Unlock()
}

// Validate checks a submission in a fixed order; the first failure wins.
func (r *Requester) Validate(s Submission) error {
	switch {
	case !r.configured:
		return ErrConfigMissing
	case s.Origin == "" || s.Destination == "":
		return ErrEndpointsRequired
	case s.Origin == s.Destination:
		return ErrSameEndpoint
	case s.Date == "":
		return ErrDateRequired
	}
	if _, err := route.ParseDate(s.Date); err != nil {
		return ErrDateInvalid
	}
	if !route.NotBefore(s.Date, r.minDate) {
		return ErrDateNotFuture
	}
	return nil
}

// Submit validates s and, if it passes, requests an estimate for the
// quarter of s.Date. The returned error is this submission's own result;
// State reflects it only when Outcome.Applied is true.
func (r *Requester) Submit(ctx context.Context, s Submission) (Outcome, error) {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.state = State{Loading: true, Submission: s, Seq: seq}
	r.mu.Unlock()

	out := Outcome{Seq: seq}

	if err := r.Validate(s); err != nil {
		out.Applied = r.settle(seq, State{Err: err, Submission: s, Seq: seq})
		r.log.Debug("Rejected submission", "seq", seq, "err", err)
		return out, err
	}

	quarter, _ := route.QuarterOf(s.Date)
	out.Quarter = quarter

	r.log.Debug("Requesting estimate", "seq", seq, "from", s.Origin, "to", s.Destination, "quarter", quarter)
	v, err := r.pred.Predict(ctx, api.PredictRequest{
		City1:   s.Origin,
		City2:   s.Destination,
		Quarter: quarter,
	})
	if err != nil {
		out.Applied = r.settle(seq, State{Err: err, Submission: s, Quarter: quarter, Seq: seq})
		if out.Applied {
			r.log.Warnf("Request failed: %v", err)
		}
		return out, err
	}

	out.Prediction = v
	out.Applied = r.settle(seq, State{Result: &v, Submission: s, Quarter: quarter, Seq: seq})
	if !out.Applied {
		r.log.Debug("Dropped superseded estimate", "seq", seq)
	}
	return out, nil
}

// settle writes st if seq is still the latest issued sequence number.
func (r *Requester) settle(seq uint64, st State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq {
		return false
	}
	r.state = st
	return true
}
