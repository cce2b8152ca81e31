package sinks

import "github.com/quill-log/quill/core"

// NullSink discards every event. Useful for benchmarks and disabling
// output without restructuring the pipeline.
type NullSink struct{}

// NewNullSink constructs a NullSink.
func NewNullSink() NullSink { return NullSink{} }

// Emit discards event.
func (NullSink) Emit(core.Event) error { return nil }

// Flush is a no-op.
func (NullSink) Flush() error { return nil }

// Close is a no-op.
func (NullSink) Close() error { return nil }
