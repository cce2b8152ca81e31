package sinks

import "github.com/quill-log/quill/core"

// Composite fans an event out to an ordered list of sink entries, each
// optionally gated by its own minimum level.
type Composite struct {
	entries []core.SinkEntry
}

// NewComposite constructs a Composite over entries, in the given
// order.
func NewComposite(entries ...core.SinkEntry) *Composite {
	return &Composite{entries: entries}
}

// Emit delegates to every entry whose minimum level admits event's
// level, skipping the rest. The first delegate error is returned after
// every entry has been attempted.
func (c *Composite) Emit(event core.Event) error {
	var firstErr error
	for _, entry := range c.entries {
		if !entry.Enabled(event.Level) {
			continue
		}
		if err := entry.Sink.Emit(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Flush flushes every entry, returning the first error encountered.
func (c *Composite) Flush() error {
	var firstErr error
	for _, entry := range c.entries {
		if err := entry.Sink.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes every entry, returning the first error encountered.
func (c *Composite) Close() error {
	var firstErr error
	for _, entry := range c.entries {
		if err := entry.Sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
