package circuit

import (
	"errors"
	"testing"
	"time"

	"github.com/quill-log/quill/core"
)

type failingSink struct {
	fail  bool
	calls int
}

func (f *failingSink) Emit(core.Event) error {
	f.calls++
	if f.fail {
		return errors.New("sink failure")
	}
	return nil
}
func (f *failingSink) Flush() error { return nil }
func (f *failingSink) Close() error { return nil }

func TestSinkRejectsWhenOpen(t *testing.T) {
	target := &failingSink{fail: true}
	s, err := NewSink(Config{FailureThreshold: 1, ResetTimeout: time.Hour}, target)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Emit(core.Event{}); err == nil {
		t.Fatal("expected first emit to fail")
	}
	if s.Breaker().State() != Open {
		t.Fatalf("state = %v, want Open", s.Breaker().State())
	}

	calls := target.calls
	if err := s.Emit(core.Event{}); err == nil {
		t.Fatal("expected emit to be rejected while open")
	}
	if target.calls != calls {
		t.Fatal("target should not have been called while circuit is open")
	}
}
