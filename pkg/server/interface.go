/*
Package server implements msgpack IPC for the place search and fare estimate services.

The server reads a stream of msgpack maps from stdin and writes one msgpack map per request to stdout.
Logs go to stderr so the stdout stream stays pure msgpack.

# IPC

Every request carries an ID, echoed back in its response, and an action.
The first frame written after startup is a readiness signal:

	{"status": "ready"}

Completion requests rank the loaded place names against a typed query:

	{"id": "req_001", "action": "complete", "q": "san", "l": 4}

The server responds with places in ranked order, timing in microseconds:

	{"id": "req_001", "s": [{"w": "San Diego, CA", "r": 1}, {"w": "San Antonio, TX", "r": 2}], "c": 2, "t": 41}

Estimate requests name both endpoints and a YYYY-MM-DD travel date:

	{"id": "req_002", "action": "estimate", "o": "Chicago, IL", "d": "Seattle, WA", "dt": "2025-11-20"}
	{"id": "req_002", "p": 287.4, "qt": 4}

Validation and remote failures come back in the same shape with "e" set.

The remaining actions are "meta", returning the loaded cities and quarters, and "health".
Anything else is answered with an error frame carrying code 400.
*/
package server

import (
	"context"

	"github.com/bastiangx/farecast/pkg/estimate"
	"github.com/bastiangx/farecast/pkg/meta"
)

// Actions understood by the server.
const (
	ActionComplete = "complete"
	ActionEstimate = "estimate"
	ActionMeta     = "meta"
	ActionHealth   = "health"
)

// Backend is what the server answers requests from.
type Backend interface {
	Complete(query string, limit int) []string
	Estimate(ctx context.Context, origin, destination, date string) (estimate.Outcome, error)
	Meta() meta.State
}

// Request is the envelope of every incoming frame; unused fields stay zero.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
	// complete
	Query string `msgpack:"q,omitempty"`
	Limit int    `msgpack:"l,omitempty"`
	// estimate
	Origin      string `msgpack:"o,omitempty"`
	Destination string `msgpack:"d,omitempty"`
	Date        string `msgpack:"dt,omitempty"`
}

// Suggestion - one ranked place
type Suggestion struct {
	Place string `msgpack:"w"`
	Rank  uint16 `msgpack:"r"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// EstimateResponse carries either a prediction or an error message.
type EstimateResponse struct {
	ID         string   `msgpack:"id"`
	Prediction *float64 `msgpack:"p,omitempty"`
	Quarter    int      `msgpack:"qt,omitempty"`
	Error      string   `msgpack:"e,omitempty"`
}

// MetaResponse mirrors the metadata state.
type MetaResponse struct {
	ID       string   `msgpack:"id"`
	Cities   []string `msgpack:"cities"`
	Quarters []int    `msgpack:"quarters"`
	Loading  bool     `msgpack:"loading"`
	Error    string   `msgpack:"e,omitempty"`
}

// StatusResponse is used for the ready frame and health checks.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for rejected requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
