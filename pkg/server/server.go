package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/farecast/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// MaxQueryLength bounds the query of a complete request, in runes.
	MaxQueryLength = 80
	// MaxLimit caps the number of suggestions one request may ask for.
	MaxLimit = 64
)

// Server handles msgpack IPC on a reader/writer pair.
type Server struct {
	backend  Backend
	dec      *msgpack.Decoder
	out      *bufio.Writer
	enc      *msgpack.Encoder
	log      *log.Logger
	requests int
}

// NewServer creates a server using stdin/stdout for IPC.
func NewServer(b Backend) *Server {
	return NewServerWithIO(b, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on arbitrary streams.
func NewServerWithIO(b Backend, r io.Reader, w io.Writer) *Server {
	out := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(out)
	return &Server{
		backend: b,
		dec:     msgpack.NewDecoder(bufio.NewReader(r)),
		out:     out,
		enc:     enc,
		log:     logger.New("server"),
	}
}

// Start writes the ready frame and serves requests until the input ends,
// ctx is cancelled, or a frame cannot be decoded.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting server")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debugf("Input closed after %d requests", s.requests)
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			_ = s.sendError("", "invalid msgpack request", 400)
			return fmt.Errorf("decode request: %w", err)
		}
		s.requests++
		if err := s.handle(ctx, req); err != nil {
			return err
		}
	}
}

func (s *Server) handle(ctx context.Context, req Request) error {
	switch req.Action {
	case ActionComplete:
		return s.handleComplete(req)
	case ActionEstimate:
		return s.handleEstimate(ctx, req)
	case ActionMeta:
		return s.handleMeta(req)
	case ActionHealth:
		return s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.log.Debug("Unknown action", "id", req.ID, "action", req.Action)
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %q", req.Action), 400)
	}
}

func (s *Server) handleComplete(req Request) error {
	if utf8.RuneCountInString(req.Query) > MaxQueryLength {
		return s.sendError(req.ID, fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength), 400)
	}
	limit := req.Limit
	if limit > MaxLimit {
		limit = MaxLimit
	}

	start := time.Now()
	places := s.backend.Complete(req.Query, limit)
	elapsed := time.Since(start)

	suggestions := make([]Suggestion, len(places))
	for i, p := range places {
		suggestions[i] = Suggestion{Place: p, Rank: uint16(i + 1)}
	}
	return s.send(CompletionResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleEstimate(ctx context.Context, req Request) error {
	out, err := s.backend.Estimate(ctx, req.Origin, req.Destination, req.Date)
	resp := EstimateResponse{ID: req.ID, Quarter: out.Quarter}
	if err != nil {
		resp.Error = err.Error()
	} else {
		p := out.Prediction
		resp.Prediction = &p
	}
	return s.send(resp)
}

func (s *Server) handleMeta(req Request) error {
	st := s.backend.Meta()
	return s.send(MetaResponse{
		ID:       req.ID,
		Cities:   st.Places,
		Quarters: st.Quarters,
		Loading:  st.Loading,
		Error:    st.Message(),
	})
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}

// send encodes one frame and flushes it so the client sees it immediately.
func (s *Server) send(v any) error {
	if err := s.enc.Encode(v); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return fmt.Errorf("encode response: %w", err)
	}
	if err := s.out.Flush(); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
