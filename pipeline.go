package quill

import (
	"time"

	"github.com/quill-log/quill/core"
	"github.com/quill-log/quill/internal/clock"
	"github.com/quill-log/quill/internal/render"
	"github.com/quill-log/quill/logctx"
)

// dispatch runs the full write pipeline for one call site: render,
// stamp, enrich, merge ambient context, filter, then fan out to every
// enabled sink. The fast-path level check happens in the caller
// (Logger.write) so this function is never reached for a disabled
// level.
func (l *Logger) dispatch(level core.Level, template string, properties []core.Property, exception error) {
	rendered := render.Render(template, properties)
	stamp := clock.Now()

	event := core.Event{
		Timestamp:     stamp.Instant,
		Level:         level,
		Template:      template,
		Rendered:      rendered,
		Properties:    properties,
		ExceptionInfo: exception,
		CorrelationID: logctx.GetCorrelationID(),
	}

	for _, enrich := range l.enrichers {
		event = enrich(event)
	}

	event = l.mergeContext(event)

	for _, f := range l.filters {
		if !f.IsEnabled(event) {
			return
		}
	}

	for i, entry := range l.sinks {
		if !entry.Enabled(event.Level) {
			continue
		}
		id := l.sinkIDs[i]
		start := time.Now()
		err := entry.Sink.Emit(event)
		if l.metrics != nil {
			l.metrics.RecordLatency(id, time.Since(start).Microseconds())
		}
		if err != nil {
			l.reportError(id, err)
			continue
		}
		if l.metrics != nil {
			l.metrics.RecordEvent(id)
		}
	}
}

// mergeContext merges ambient context into event: the merged property
// order is ambient ++ static context ++ the event's own properties;
// the correlation id is left as whatever dispatch already set from
// logctx.GetCorrelationID.
func (l *Logger) mergeContext(event core.Event) core.Event {
	ambient := logctx.CurrentProperties()
	if len(ambient) == 0 && len(l.contextProperties) == 0 {
		return event
	}

	merged := make([]core.Property, 0, len(ambient)+len(l.contextProperties)+len(event.Properties))
	merged = append(merged, ambient...)
	merged = append(merged, l.contextProperties...)
	merged = append(merged, event.Properties...)
	event.Properties = merged
	return event
}

func (l *Logger) reportError(sinkID string, err error) {
	if l.metrics != nil {
		l.metrics.RecordError(sinkID, err)
	}
	if l.errorHandler != nil {
		l.errorHandler(err)
	}
}
