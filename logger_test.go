package quill

import (
	"testing"

	"github.com/quill-log/quill/core"
	"github.com/quill-log/quill/logctx"
)

type recordingSink struct {
	events []core.Event
}

func (r *recordingSink) Emit(e core.Event) error { r.events = append(r.events, e); return nil }
func (r *recordingSink) Flush() error            { return nil }
func (r *recordingSink) Close() error            { return nil }

// TestFastPathShortCircuit checks that a call below the logger's
// minimum level never reaches a sink.
func TestFastPathShortCircuit(t *testing.T) {
	rec := &recordingSink{}
	l := New(WithMinLevel(core.Warning), WithSink("rec", rec))

	l.Debug("hi")

	if len(rec.events) != 0 {
		t.Fatalf("events = %d, want 0", len(rec.events))
	}
}

// TestContextMerge checks that ambient properties, static context
// properties, and the event's own properties merge in that order.
func TestContextMerge(t *testing.T) {
	rec := &recordingSink{}
	l := New(WithSink("rec", rec), WithContext("service", core.FromString("api")))

	logctx.WithProperty("request_id", core.FromString("r-1"), func() {
		l.Information("hit {path}", core.Property{Name: "path", Value: core.FromString("/x")})
	})

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	event := rec.events[0]

	wantNames := []string{"request_id", "service", "path"}
	if len(event.Properties) != len(wantNames) {
		t.Fatalf("properties = %+v, want names %v", event.Properties, wantNames)
	}
	for i, name := range wantNames {
		if event.Properties[i].Name != name {
			t.Fatalf("properties[%d].Name = %q, want %q", i, event.Properties[i].Name, name)
		}
	}
	if event.Rendered != "hit /x" {
		t.Fatalf("rendered = %q, want %q", event.Rendered, "hit /x")
	}
}

func TestForContextAndForSourceDeriveSubLoggers(t *testing.T) {
	rec := &recordingSink{}
	base := New(WithSink("rec", rec))

	child := base.ForContext("tenant", core.FromString("acme")).ForSource("billing")
	child.Information("charged")

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	event := rec.events[0]
	tenant, ok := event.Property("tenant")
	if !ok {
		t.Fatal("expected tenant property")
	}
	if s, _ := tenant.AsString(); s != "acme" {
		t.Fatalf("tenant = %q, want acme", s)
	}
	if _, ok := event.Property("SourceContext"); !ok {
		t.Fatal("expected SourceContext property from ForSource")
	}
	if child.Source() != "billing" {
		t.Fatalf("Source() = %q, want billing", child.Source())
	}

	// The base logger must remain unaffected by the derivation.
	base.Information("no context")
	if len(rec.events) != 2 {
		t.Fatalf("events = %d, want 2", len(rec.events))
	}
	if len(rec.events[1].Properties) != 0 {
		t.Fatalf("base logger leaked derived context: %+v", rec.events[1].Properties)
	}
}

func TestMinLevelFilterNarrowsSubLogger(t *testing.T) {
	rec := &recordingSink{}
	base := New(WithMinLevel(core.Verbose), WithSink("rec", rec))
	strict := base.AddMinLevelFilter(core.Error)

	strict.Information("ignored")
	strict.Error("kept")

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	if rec.events[0].Rendered != "kept" {
		t.Fatalf("rendered = %q, want kept", rec.events[0].Rendered)
	}
}

func TestFlushAndCloseIterateAllSinks(t *testing.T) {
	rec1 := &recordingSink{}
	rec2 := &recordingSink{}
	l := New(WithSink("a", rec1), WithSink("b", rec2))

	if err := l.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
}
