// Package circuit implements a three-state circuit breaker: a single
// success closes a half-open circuit, and a single failure reopens it.
package circuit

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// State is one of Closed, Open, or HalfOpen.
type State int32

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a Breaker. FailureThreshold and ResetTimeout must
// both be positive.
type Config struct {
	FailureThreshold int           `validate:"required,gt=0"`
	ResetTimeout     time.Duration `validate:"required,gt=0"`
}

var validate = validator.New()

// Breaker is a circuit breaker gate. State transitions occur under the
// internal mutex; the wrapped call in Call always runs outside the
// lock, so a slow or blocking call never holds up a concurrent state
// query or transition.
type Breaker struct {
	cfg Config

	mu                 sync.Mutex
	state              State
	consecutiveFailures int
	lastFailureMS      int64
}

// New constructs a Breaker, returning an error if cfg is invalid.
func New(cfg Config) (*Breaker, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}
	return &Breaker{cfg: cfg, state: Closed}, nil
}

// Call invokes f if the circuit admits it. It returns true when f
// succeeds, recording the success. It returns false without invoking
// f if the circuit is Open at entry (re-checking the reset timeout
// first), or false if f itself fails, recording the failure.
//
// f reports failure by returning a non-nil error; any result f
// produces is carried out through a variable it closes over.
func (b *Breaker) Call(f func() error) bool {
	if !b.admit() {
		return false
	}

	err := f()

	if err != nil {
		b.recordFailure()
		return false
	}
	b.recordSuccess()
	return true
}

// admit checks (and, if appropriate, advances) state before letting a
// call through. It returns false iff the circuit is Open and the
// reset timeout has not yet elapsed.
func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		elapsed := nowMS() - b.lastFailureMS
		if elapsed < b.cfg.ResetTimeout.Milliseconds() {
			return false
		}
		b.state = HalfOpen
		return true
	default:
		return true
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		b.state = Closed
		b.consecutiveFailures = 0
	case Closed:
		b.consecutiveFailures = 0
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailureMS = nowMS()

	switch b.state {
	case HalfOpen:
		b.state = Open
		b.consecutiveFailures = 0
	case Closed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.cfg.FailureThreshold {
			b.state = Open
			b.consecutiveFailures = 0
		}
	}
}

// Reset forces the circuit back to Closed and zeroes the failure
// counter.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Closed
	b.consecutiveFailures = 0
	b.lastFailureMS = 0
}

// Stats is a point-in-time snapshot of the breaker's counters.
type Stats struct {
	ConsecutiveFailures int
	State               State
	LastFailureTimeMS   int64
}

// GetStats returns the breaker's current stats.
func (b *Breaker) GetStats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		ConsecutiveFailures: b.consecutiveFailures,
		State:               b.state,
		LastFailureTimeMS:   b.lastFailureMS,
	}
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}

// State returns the breaker's current state, re-checking the reset
// timeout (and advancing Open to HalfOpen) if appropriate, so the
// transition can be observed on a state query alone, not just the
// next Call.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == Open && nowMS()-b.lastFailureMS >= b.cfg.ResetTimeout.Milliseconds() {
		b.state = HalfOpen
	}
	return b.state
}
