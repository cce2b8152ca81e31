package queue

import "github.com/quill-log/quill/core"

// AsyncSink adapts an AsyncQueue to core.Sink, so a Logger can wire
// non-blocking asynchronous delivery to any real sink without the
// dispatch pipeline knowing the difference. It composes with
// circuit.Sink to form an "async queue -> circuit breaker -> real
// sink" chain, entirely behind core.Sink.
type AsyncSink struct {
	queue  *AsyncQueue
	target core.Sink
}

// NewAsyncSink constructs an AsyncSink that enqueues onto a fresh
// AsyncQueue delivering to target.Emit.
func NewAsyncSink(cfg Config, target core.Sink) (*AsyncSink, error) {
	q, err := New(cfg, target.Emit)
	if err != nil {
		return nil, err
	}
	return &AsyncSink{queue: q, target: target}, nil
}

// Emit enqueues event without blocking on target.
func (a *AsyncSink) Emit(event core.Event) error {
	a.queue.Enqueue(event)
	return nil
}

// Flush drains the queue synchronously, then flushes target.
func (a *AsyncSink) Flush() error {
	if err := a.queue.Flush(); err != nil {
		return err
	}
	return a.target.Flush()
}

// Close stops the background worker, drains the queue, and closes
// target.
func (a *AsyncSink) Close() error {
	if err := a.queue.Close(); err != nil {
		return err
	}
	return a.target.Close()
}

// Stats returns the underlying queue's statistics.
func (a *AsyncSink) Stats() Stats { return a.queue.GetStats() }
