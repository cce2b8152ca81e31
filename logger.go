// Package quill is a structured logging runtime: named-placeholder
// message templates, an enrich/filter/fan-out dispatch pipeline,
// ambient request context, and pluggable sinks with non-blocking
// async delivery and circuit-breaker failure isolation.
package quill

import (
	"fmt"

	"github.com/quill-log/quill/core"
	"github.com/quill-log/quill/metrics"
)

// Logger dispatches events through a configurable chain of enrichers,
// ambient context, filters, and sinks.
type Logger struct {
	minLevel core.Level

	sinks   []core.SinkEntry
	sinkIDs []string

	enrichers         []core.Enricher
	filters           []core.Filter
	contextProperties []core.Property
	source            string

	errorHandler func(error)
	metrics      *metrics.Store
}

// write is the single dispatch entry point every level-specific method
// wraps. The fast path returns immediately, before any timestamp
// acquisition or allocation, when level is below the logger's minimum.
func (l *Logger) write(level core.Level, template string, properties []core.Property, exception error) {
	if level < l.minLevel {
		return
	}
	l.dispatch(level, template, properties, exception)
}

// Verbose logs at Level Verbose.
func (l *Logger) Verbose(template string, properties ...core.Property) {
	l.write(core.Verbose, template, properties, nil)
}

// Debug logs at Level Debug.
func (l *Logger) Debug(template string, properties ...core.Property) {
	l.write(core.Debug, template, properties, nil)
}

// Information logs at Level Information.
func (l *Logger) Information(template string, properties ...core.Property) {
	l.write(core.Information, template, properties, nil)
}

// Warning logs at Level Warning.
func (l *Logger) Warning(template string, properties ...core.Property) {
	l.write(core.Warning, template, properties, nil)
}

// Error logs at Level Error.
func (l *Logger) Error(template string, properties ...core.Property) {
	l.write(core.Error, template, properties, nil)
}

// ErrorWithException logs at Level Error, attaching err as the
// event's exception info.
func (l *Logger) ErrorWithException(err error, template string, properties ...core.Property) {
	l.write(core.Error, template, properties, err)
}

// Fatal logs at Level Fatal.
func (l *Logger) Fatal(template string, properties ...core.Property) {
	l.write(core.Fatal, template, properties, nil)
}

// clone returns a shallow copy of l, sharing its sinks, suitable as
// the basis for a sub-logger derivation.
func (l *Logger) clone() *Logger {
	n := *l
	n.sinks = append([]core.SinkEntry(nil), l.sinks...)
	n.sinkIDs = append([]string(nil), l.sinkIDs...)
	n.enrichers = append([]core.Enricher(nil), l.enrichers...)
	n.filters = append([]core.Filter(nil), l.filters...)
	n.contextProperties = append([]core.Property(nil), l.contextProperties...)
	return &n
}

// ForContext returns a sub-logger with (name, value) prepended to its
// static context properties.
func (l *Logger) ForContext(name string, value core.JSONValue) *Logger {
	n := l.clone()
	n.contextProperties = append([]core.Property{{Name: name, Value: value}}, n.contextProperties...)
	return n
}

// ForSource returns a sub-logger with source set to name, additionally
// carrying it as a "SourceContext" static context property.
func (l *Logger) ForSource(name string) *Logger {
	n := l.clone()
	n.source = name
	n.contextProperties = append([]core.Property{{Name: "SourceContext", Value: core.FromString(name)}}, n.contextProperties...)
	return n
}

// WithEnricher returns a sub-logger with fn prepended to its enricher
// chain.
func (l *Logger) WithEnricher(fn core.Enricher) *Logger {
	n := l.clone()
	n.enrichers = append([]core.Enricher{fn}, n.enrichers...)
	return n
}

// AddFilter returns a sub-logger with f prepended to its filter chain.
func (l *Logger) AddFilter(f core.Filter) *Logger {
	n := l.clone()
	n.filters = append([]core.Filter{f}, n.filters...)
	return n
}

// AddMinLevelFilter returns a sub-logger with a level filter for level
// prepended to its filter chain.
func (l *Logger) AddMinLevelFilter(level core.Level) *Logger {
	return l.AddFilter(minLevelFilter(level))
}

type minLevelFilter core.Level

func (f minLevelFilter) IsEnabled(e core.Event) bool { return e.Level >= core.Level(f) }

// Source returns the logger's source name, or "" if none was set via
// ForSource.
func (l *Logger) Source() string { return l.source }

// Metrics returns the logger's metrics store, or nil if metrics were
// not enabled at construction.
func (l *Logger) Metrics() *metrics.Store { return l.metrics }

// Flush flushes every sink in declaration order. Errors from one sink
// do not prevent the others from being flushed; the first error
// encountered, if any, is returned after all sinks have been tried.
func (l *Logger) Flush() error {
	var firstErr error
	for i, entry := range l.sinks {
		if err := entry.Sink.Flush(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("quill: flush sink %s: %w", l.sinkIDs[i], err)
		}
	}
	return firstErr
}

// Close closes every sink in declaration order. Errors from one sink
// do not prevent the others from being closed; the first error
// encountered, if any, is returned after all sinks have been tried.
func (l *Logger) Close() error {
	var firstErr error
	for i, entry := range l.sinks {
		if err := entry.Sink.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("quill: close sink %s: %w", l.sinkIDs[i], err)
		}
	}
	return firstErr
}
