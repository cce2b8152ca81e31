// Package queue implements a bounded async delivery queue and a
// byte-accounted memory tracker for it.
//
// The queue is an explicit slice-backed ring buffer (head/tail/size
// under one mutex, FIFO drop-oldest overflow) rather than a buffered Go
// channel, because callers need to observe and test head/tail/size
// invariants directly — a channel does not expose that shape. The
// background worker/flush loop and selflog integration otherwise follow
// a typical async-sink-worker structure.
package queue

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/quill-log/quill/circuit"
	"github.com/quill-log/quill/core"
	"github.com/quill-log/quill/internal/selflog"
)

// Config configures an AsyncQueue.
type Config struct {
	MaxQueueSize          int           `validate:"required,gt=0"`
	FlushInterval         time.Duration `validate:"required,gt=0"`
	BatchSize             int           `validate:"required,gt=0"`
	BackPressureThreshold int           `validate:"gte=0"`
	ErrorHandler          func(error)
	Breaker               *circuit.Breaker
}

// Stats holds AsyncQueue's delivery counters, monotonically
// non-decreasing except via an explicit Reset.
type Stats struct {
	Enqueued int64
	Emitted  int64
	Dropped  int64
	Errors   int64
}

// AsyncQueue decouples a non-blocking Enqueue call from the latency of
// an underlying sink, batching deliveries on a background worker.
type AsyncQueue struct {
	cfg    Config
	target func(core.Event) error

	mu   sync.Mutex
	buf  []core.Event
	head int
	tail int
	size int

	shutdown atomic.Bool
	wg       sync.WaitGroup

	enqueued atomic.Int64
	emitted  atomic.Int64
	dropped  atomic.Int64
	errors   atomic.Int64
}

// New constructs an AsyncQueue that delivers to target, starting its
// background worker immediately. target is typically a sink's Emit
// method.
func New(cfg Config, target func(core.Event) error) (*AsyncQueue, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(err error) {
			if selflog.IsEnabled() {
				selflog.Printf("[queue] %v", err)
			}
		}
	}

	q := &AsyncQueue{
		cfg:    cfg,
		target: target,
		buf:    make([]core.Event, cfg.MaxQueueSize),
	}
	q.wg.Add(1)
	go q.worker()
	return q, nil
}

// Enqueue adds event to the ring buffer without ever blocking on the
// underlying sink. If the buffer is full, the oldest queued event is
// dropped to make room.
func (q *AsyncQueue) Enqueue(event core.Event) {
	q.enqueued.Add(1)

	q.mu.Lock()
	if q.size == len(q.buf) {
		q.head = (q.head + 1) % len(q.buf)
		q.size--
		q.dropped.Add(1)
	}
	q.buf[q.tail] = event
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
	size := q.size
	q.mu.Unlock()

	if size > q.cfg.BackPressureThreshold {
		q.cfg.ErrorHandler(backpressureWarning{size: size, threshold: q.cfg.BackPressureThreshold})
	}
}

type backpressureWarning struct {
	size      int
	threshold int
}

func (w backpressureWarning) Error() string {
	return "queue backpressure: size=" + itoa(w.size) + " threshold=" + itoa(w.threshold)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// worker runs from construction until Close, sleeping in small
// increments between flush cycles so shutdown is observed promptly.
func (q *AsyncQueue) worker() {
	defer q.wg.Done()

	const tick = 10 * time.Millisecond
	for !q.shutdown.Load() {
		remaining := q.cfg.FlushInterval
		for remaining > 0 && !q.shutdown.Load() {
			d := tick
			if d > remaining {
				d = remaining
			}
			time.Sleep(d)
			remaining -= d
		}
		if err := q.Flush(); err != nil {
			q.errors.Add(1)
			q.cfg.ErrorHandler(err)
		}
	}
}

// Flush drains the queue in batches of at most BatchSize, emitting
// each event through the circuit breaker (if configured) to the
// target. It is safe to call concurrently with Enqueue and with the
// background worker's own calls.
func (q *AsyncQueue) Flush() error {
	for {
		batch := q.dequeueBatch()
		if len(batch) == 0 {
			return nil
		}
		for _, event := range batch {
			q.emitOne(event)
		}
	}
}

func (q *AsyncQueue) dequeueBatch() []core.Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.cfg.BatchSize
	if n > q.size {
		n = q.size
	}
	if n == 0 {
		return nil
	}

	batch := make([]core.Event, n)
	for i := 0; i < n; i++ {
		batch[i] = q.buf[q.head]
		q.head = (q.head + 1) % len(q.buf)
	}
	q.size -= n
	return batch
}

func (q *AsyncQueue) emitOne(event core.Event) {
	emit := func() error { return q.target(event) }

	var ok bool
	if q.cfg.Breaker != nil {
		ok = q.cfg.Breaker.Call(emit)
	} else {
		ok = emit() == nil
	}

	if ok {
		q.emitted.Add(1)
		return
	}
	q.errors.Add(1)
	q.cfg.ErrorHandler(emitFailure{})
}

type emitFailure struct{}

func (emitFailure) Error() string { return "queue: sink emit failed or circuit open" }

// Close signals shutdown, joins the background worker, then performs
// a final synchronous drain. Idempotent.
func (q *AsyncQueue) Close() error {
	if !q.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	q.wg.Wait()
	return q.Flush()
}

// GetStats returns a point-in-time snapshot of the queue's counters.
func (q *AsyncQueue) GetStats() Stats {
	return Stats{
		Enqueued: q.enqueued.Load(),
		Emitted:  q.emitted.Load(),
		Dropped:  q.dropped.Load(),
		Errors:   q.errors.Load(),
	}
}

// Peek returns a copy of the currently queued events, oldest first,
// without dequeuing them. Intended for tests and diagnostics.
func (q *AsyncQueue) Peek() []core.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]core.Event, q.size)
	for i := 0; i < q.size; i++ {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

// Len returns the current number of queued-but-undelivered events.
func (q *AsyncQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}
