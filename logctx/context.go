// Package logctx implements an ambient context store: a per-goroutine
// stack of properties plus a correlation-id stack, with scoped helpers
// that guarantee cleanup on exit (including exceptional exit via
// panic) and explicit export/import for carrying ambient state across
// goroutine boundaries.
//
// Threading properties through context.Context works for properties
// alone, but push/pop stack depth invariants across panics and an
// explicit cross-goroutine snapshot transfer are awkward to express
// with context.Context values alone — so this package keeps
// goroutine-local stacks instead, in the same spirit as
// internal/clock's per-goroutine timestamp cache.
package logctx

import (
	"sync"

	"github.com/google/uuid"
	"github.com/quill-log/quill/core"
	"github.com/quill-log/quill/internal/gls"
)

type stacks struct {
	properties    []core.Property
	correlationID []string
}

var (
	mu    sync.Mutex
	state = map[int64]*stacks{}
)

func current() *stacks {
	gid := gls.ID()
	mu.Lock()
	defer mu.Unlock()
	s, ok := state[gid]
	if !ok {
		s = &stacks{}
		state[gid] = s
	}
	return s
}

// PushProperty pushes (name, value) onto the current goroutine's
// property stack.
func PushProperty(name string, value core.JSONValue) {
	s := current()
	mu.Lock()
	defer mu.Unlock()
	s.properties = append(s.properties, core.Property{Name: name, Value: value})
}

// PopProperty pops the most recently pushed property. Popping an empty
// stack is a silent no-op.
func PopProperty() {
	s := current()
	mu.Lock()
	defer mu.Unlock()
	if len(s.properties) == 0 {
		return
	}
	s.properties = s.properties[:len(s.properties)-1]
}

// CurrentProperties returns the current goroutine's property stack,
// bottom to top, as a fresh slice.
func CurrentProperties() []core.Property {
	s := current()
	mu.Lock()
	defer mu.Unlock()
	out := make([]core.Property, len(s.properties))
	copy(out, s.properties)
	return out
}

// Clear empties both stacks for the current goroutine.
func Clear() {
	s := current()
	mu.Lock()
	defer mu.Unlock()
	s.properties = nil
	s.correlationID = nil
}

// PushCorrelationID pushes a correlation id onto the current
// goroutine's correlation stack.
func PushCorrelationID(id string) {
	s := current()
	mu.Lock()
	defer mu.Unlock()
	s.correlationID = append(s.correlationID, id)
}

// PopCorrelationID pops the most recently pushed correlation id.
// Popping an empty stack is a silent no-op.
func PopCorrelationID() {
	s := current()
	mu.Lock()
	defer mu.Unlock()
	if len(s.correlationID) == 0 {
		return
	}
	s.correlationID = s.correlationID[:len(s.correlationID)-1]
}

// GetCorrelationID returns the top of the current goroutine's
// correlation stack, or "" if empty.
func GetCorrelationID() string {
	s := current()
	mu.Lock()
	defer mu.Unlock()
	if len(s.correlationID) == 0 {
		return ""
	}
	return s.correlationID[len(s.correlationID)-1]
}

// NewCorrelationID generates a 36-character correlation id matching
// [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}. It
// need not be RFC4122-compliant; google/uuid's random (v4) generator
// already produces this shape.
func NewCorrelationID() string {
	return uuid.NewString()
}

// WithProperty pushes (name, value), runs f, and pops — even if f
// panics.
func WithProperty(name string, value core.JSONValue, f func()) {
	PushProperty(name, value)
	defer PopProperty()
	f()
}

// WithProperties pushes every (name, value) pair in props in order,
// runs f, and pops them all — even if f panics.
func WithProperties(props []core.Property, f func()) {
	for _, p := range props {
		PushProperty(p.Name, p.Value)
	}
	defer func() {
		for range props {
			PopProperty()
		}
	}()
	f()
}

// WithCorrelationID pushes id, runs f, and pops — even if f panics.
func WithCorrelationID(id string, f func()) {
	PushCorrelationID(id)
	defer PopCorrelationID()
	f()
}

// WithCorrelationIDAuto generates a fresh correlation id, pushes it,
// runs f, and pops it.
func WithCorrelationIDAuto(f func()) string {
	id := NewCorrelationID()
	WithCorrelationID(id, f)
	return id
}

// WithScope saves both stacks on entry and restores them verbatim on
// exit, even if f panics. Unlike the With* helpers, f may push and pop
// an unbalanced number of entries; WithScope restores the exact
// pre-entry depth and contents regardless.
func WithScope(f func()) {
	s := current()

	mu.Lock()
	savedProps := append([]core.Property(nil), s.properties...)
	savedCorr := append([]string(nil), s.correlationID...)
	mu.Unlock()

	defer func() {
		mu.Lock()
		s.properties = savedProps
		s.correlationID = savedCorr
		mu.Unlock()
	}()

	f()
}

// Snapshot is an exported copy of one goroutine's ambient context,
// suitable for transfer across goroutine boundaries.
type Snapshot struct {
	properties    []core.Property
	correlationID []string
}

// Export captures the current goroutine's ambient context.
func Export() Snapshot {
	s := current()
	mu.Lock()
	defer mu.Unlock()
	return Snapshot{
		properties:    append([]core.Property(nil), s.properties...),
		correlationID: append([]string(nil), s.correlationID...),
	}
}

// Import temporarily installs snap as the current goroutine's ambient
// context for the duration of f, restoring whatever was there before
// on return (even if f panics).
func Import(snap Snapshot, f func()) {
	s := current()

	mu.Lock()
	savedProps := s.properties
	savedCorr := s.correlationID
	s.properties = append([]core.Property(nil), snap.properties...)
	s.correlationID = append([]string(nil), snap.correlationID...)
	mu.Unlock()

	defer func() {
		mu.Lock()
		s.properties = savedProps
		s.correlationID = savedCorr
		mu.Unlock()
	}()

	f()
}
