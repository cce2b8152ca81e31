package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quill-log/quill/core"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func evt(template string) core.Event {
	return core.Event{Template: template, Rendered: template}
}

// TestDropOldest checks that enqueuing past capacity evicts the
// oldest queued event rather than rejecting the new one.
func TestDropOldest(t *testing.T) {
	q, err := New(Config{
		MaxQueueSize:  3,
		FlushInterval: 10 * time.Second,
		BatchSize:     1,
	}, func(core.Event) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()

	for i := 1; i <= 5; i++ {
		q.Enqueue(evt("e" + itoa(i)))
	}

	contents := q.Peek()
	if len(contents) != 3 {
		t.Fatalf("queue length = %d, want 3", len(contents))
	}
	want := []string{"e3", "e4", "e5"}
	for i, e := range contents {
		if e.Template != want[i] {
			t.Fatalf("contents = %v, want %v", templatesOf(contents), want)
		}
	}

	stats := q.GetStats()
	if stats.Enqueued != 5 {
		t.Fatalf("Enqueued = %d, want 5", stats.Enqueued)
	}
	if stats.Dropped != 2 {
		t.Fatalf("Dropped = %d, want 2", stats.Dropped)
	}
}

func templatesOf(events []core.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Template
	}
	return out
}

func TestEnqueueNeverBlocksOnSink(t *testing.T) {
	block := make(chan struct{})
	q, err := New(Config{
		MaxQueueSize:  10,
		FlushInterval: 5 * time.Millisecond,
		BatchSize:     2,
	}, func(core.Event) error {
		<-block
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			q.Enqueue(evt("e"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a stalled sink")
	}

	close(block)
	q.Close()
}

func TestFIFODeliveryOrder(t *testing.T) {
	var mu sync.Mutex
	var delivered []string

	q, err := New(Config{
		MaxQueueSize:  100,
		FlushInterval: time.Hour,
		BatchSize:     4,
	}, func(e core.Event) error {
		mu.Lock()
		delivered = append(delivered, e.Template)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 10; i++ {
		q.Enqueue(evt("e" + itoa(i)))
	}

	if err := q.Close(); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 10 {
		t.Fatalf("delivered %d events, want 10", len(delivered))
	}
	for i, tmpl := range delivered {
		want := "e" + itoa(i+1)
		if tmpl != want {
			t.Fatalf("delivered[%d] = %q, want %q", i, tmpl, want)
		}
	}
}

// TestAccountingInvariant checks that
// enqueued = emitted + dropped + in_queue_at_close + errors.
func TestAccountingInvariant(t *testing.T) {
	q, err := New(Config{
		MaxQueueSize:  5,
		FlushInterval: time.Hour,
		BatchSize:     2,
	}, func(e core.Event) error {
		if e.Template == "fail" {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		q.Enqueue(evt("ok"))
	}
	q.Enqueue(evt("fail"))

	if err := q.Close(); err != nil {
		t.Fatal(err)
	}

	stats := q.GetStats()
	inQueueAtClose := int64(q.Len())
	total := stats.Emitted + stats.Dropped + inQueueAtClose + stats.Errors
	if total != stats.Enqueued {
		t.Fatalf("emitted(%d)+dropped(%d)+inQueue(%d)+errors(%d) = %d, want enqueued %d",
			stats.Emitted, stats.Dropped, inQueueAtClose, stats.Errors, total, stats.Enqueued)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	q, err := New(Config{
		MaxQueueSize:  2,
		FlushInterval: time.Hour,
		BatchSize:     1,
	}, func(core.Event) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{MaxQueueSize: 0, FlushInterval: time.Second, BatchSize: 1}, nil); err == nil {
		t.Fatal("expected error for zero MaxQueueSize")
	}
}
