package circuit

import (
	"errors"

	"github.com/quill-log/quill/core"
)

// errOpen is returned by Sink.Emit when the breaker rejects the call
// outright (circuit Open, reset timeout not yet elapsed).
var errOpen = errors.New("circuit: open")

// Sink wraps a core.Sink behind a Breaker, so a logger can install
// circuit-breaker failure isolation directly on a sink without going
// through the async queue. It composes with queue.AsyncSink to form
// the "async queue -> circuit breaker -> real sink" chain.
type Sink struct {
	breaker *Breaker
	target  core.Sink
}

// NewSink wraps target behind a Breaker built from cfg.
func NewSink(cfg Config, target core.Sink) (*Sink, error) {
	b, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Sink{breaker: b, target: target}, nil
}

// Emit calls target.Emit through the breaker, returning errOpen
// without calling target if the circuit rejects the call.
func (s *Sink) Emit(event core.Event) error {
	var emitErr error
	ok := s.breaker.Call(func() error {
		emitErr = s.target.Emit(event)
		return emitErr
	})
	if !ok {
		if emitErr != nil {
			return emitErr
		}
		return errOpen
	}
	return nil
}

// Flush delegates to target unconditionally; the breaker only gates
// Emit.
func (s *Sink) Flush() error { return s.target.Flush() }

// Close delegates to target unconditionally.
func (s *Sink) Close() error { return s.target.Close() }

// Breaker exposes the underlying breaker for stats/reset access.
func (s *Sink) Breaker() *Breaker { return s.breaker }
