package quill

import (
	"fmt"

	"github.com/quill-log/quill/core"
	"github.com/quill-log/quill/metrics"
)

// Option configures a Logger at construction time.
type Option func(*Logger)

// WithMinLevel sets the logger's minimum level (default Information).
func WithMinLevel(level core.Level) Option {
	return func(l *Logger) { l.minLevel = level }
}

// WithSink appends a sink with no per-sink minimum level. sinkID
// identifies the sink in metrics; if empty, an index-based id is
// assigned.
func WithSink(sinkID string, sink core.Sink) Option {
	return WithSinkMinLevel(sinkID, sink, nil)
}

// WithSinkMinLevel appends a sink gated by its own minimum level. A
// nil minLevel means the sink receives every event the logger's own
// minimum level admits.
func WithSinkMinLevel(sinkID string, sink core.Sink, minLevel *core.Level) Option {
	return func(l *Logger) {
		l.sinks = append(l.sinks, core.SinkEntry{Sink: sink, MinLevel: minLevel})
		if sinkID == "" {
			sinkID = fmt.Sprintf("sink-%d", len(l.sinkIDs))
		}
		l.sinkIDs = append(l.sinkIDs, sinkID)
	}
}

// WithEnricher appends fn to the enricher chain, in registration
// order; enrichers run in that order at dispatch time.
func WithEnricher(fn core.Enricher) Option {
	return func(l *Logger) { l.enrichers = append(l.enrichers, fn) }
}

// WithFilter appends f to the filter chain.
func WithFilter(f core.Filter) Option {
	return func(l *Logger) { l.filters = append(l.filters, f) }
}

// WithContext attaches a static context property, present on every
// event the logger emits.
func WithContext(name string, value core.JSONValue) Option {
	return func(l *Logger) {
		l.contextProperties = append(l.contextProperties, core.Property{Name: name, Value: value})
	}
}

// WithSource sets the logger's source, equivalent to calling
// ForSource at construction time.
func WithSource(name string) Option {
	return func(l *Logger) {
		l.source = name
		l.contextProperties = append(l.contextProperties, core.Property{Name: "SourceContext", Value: core.FromString(name)})
	}
}

// WithErrorHandler installs a callback invoked whenever a sink's Emit
// returns an error.
func WithErrorHandler(handler func(error)) Option {
	return func(l *Logger) { l.errorHandler = handler }
}

// WithMetrics attaches a metrics store; sink emit latency, event and
// error counts are recorded against it per sink id. The logger records
// no dropped-event counts.
func WithMetrics(store *metrics.Store) Option {
	return func(l *Logger) { l.metrics = store }
}

// New constructs a Logger from opts, defaulting to min level
// Information and no sinks.
func New(opts ...Option) *Logger {
	l := &Logger{minLevel: core.Information}
	for _, opt := range opts {
		opt(l)
	}
	return l
}
