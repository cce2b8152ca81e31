// Package metrics implements a per-sink metrics store: monotonic
// counters plus a bounded sliding window of latency samples with
// p50/p95 recomputed on each sample. The same counters are also
// exposed through a private github.com/prometheus/client_golang
// registry so a host application can scrape them in addition to
// calling ToJSON.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const maxLatencySamples = 1000

// LastError pairs an error with the time it was recorded.
type LastError struct {
	Err       error
	Timestamp time.Time
}

type sinkMetrics struct {
	mu sync.Mutex

	eventsTotal   int64
	eventsDropped int64
	eventsFailed  int64
	lastError     *LastError

	latencyWindow []int64 // microseconds, oldest first
	p50Cache      int64
	p95Cache      int64
}

// Snapshot is a point-in-time, read-only view of one sink's metrics.
type Snapshot struct {
	SinkID        string     `json:"sink_id"`
	EventsTotal   int64      `json:"events_total"`
	EventsDropped int64      `json:"events_dropped"`
	EventsFailed  int64      `json:"events_failed"`
	LastError     *LastError `json:"last_error,omitempty"`
	LatencyP50US  int64      `json:"latency_p50_us"`
	LatencyP95US  int64      `json:"latency_p95_us"`
}

// Store is a map from sink id to its metrics, all mutations per-sink
// mutex-guarded.
type Store struct {
	mu    sync.RWMutex
	sinks map[string]*sinkMetrics

	registry  *prometheus.Registry
	eventsCV  *prometheus.CounterVec
	droppedCV *prometheus.CounterVec
	failedCV  *prometheus.CounterVec
	latencySV *prometheus.SummaryVec
}

// New constructs an empty Store with its own private Prometheus
// registry (never the global default registerer, so multiple Stores —
// e.g. one per test — never collide on metric registration).
func New() *Store {
	s := &Store{
		sinks:    make(map[string]*sinkMetrics),
		registry: prometheus.NewRegistry(),
	}
	s.eventsCV = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_sink_events_total",
		Help: "Total events accepted by a sink.",
	}, []string{"sink"})
	s.droppedCV = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_sink_events_dropped_total",
		Help: "Events dropped before reaching a sink.",
	}, []string{"sink"})
	s.failedCV = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_sink_events_failed_total",
		Help: "Events that failed while being emitted to a sink.",
	}, []string{"sink"})
	s.latencySV = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "quill_sink_emit_latency_microseconds",
		Help:       "Sink emit latency in microseconds.",
		Objectives: map[float64]float64{0.5: 0.05, 0.95: 0.01},
	}, []string{"sink"})
	s.registry.MustRegister(s.eventsCV, s.droppedCV, s.failedCV, s.latencySV)
	return s
}

// Registry exposes the private Prometheus registry so a host
// application can mount it behind an HTTP handler.
func (s *Store) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Store) entry(sinkID string) *sinkMetrics {
	s.mu.RLock()
	m, ok := s.sinks[sinkID]
	s.mu.RUnlock()
	if ok {
		return m
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.sinks[sinkID]; ok {
		return m
	}
	m = &sinkMetrics{}
	s.sinks[sinkID] = m
	return m
}

// RecordEvent increments the total-events counter for sinkID.
func (s *Store) RecordEvent(sinkID string) {
	m := s.entry(sinkID)
	m.mu.Lock()
	m.eventsTotal++
	m.mu.Unlock()
	s.eventsCV.WithLabelValues(sinkID).Inc()
}

// RecordDropped increments the dropped-events counter for sinkID.
func (s *Store) RecordDropped(sinkID string) {
	m := s.entry(sinkID)
	m.mu.Lock()
	m.eventsDropped++
	m.mu.Unlock()
	s.droppedCV.WithLabelValues(sinkID).Inc()
}

// RecordError increments the failed-events counter for sinkID and
// records err as its last error.
func (s *Store) RecordError(sinkID string, err error) {
	m := s.entry(sinkID)
	m.mu.Lock()
	m.eventsFailed++
	m.lastError = &LastError{Err: err, Timestamp: time.Now()}
	m.mu.Unlock()
	s.failedCV.WithLabelValues(sinkID).Inc()
}

// RecordLatency adds a latency sample (in microseconds) to sinkID's
// sliding window, evicting the oldest sample first if the window is
// already full, then recomputes p50/p95 from the window.
func (s *Store) RecordLatency(sinkID string, microseconds int64) {
	m := s.entry(sinkID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencyWindow) >= maxLatencySamples {
		m.latencyWindow = m.latencyWindow[1:]
	}
	m.latencyWindow = append(m.latencyWindow, microseconds)

	sorted := append([]int64(nil), m.latencyWindow...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	n := len(sorted)
	m.p50Cache = sorted[clampIndex(n/2, n)]
	m.p95Cache = sorted[clampIndex(n*95/100, n)]

	s.latencySV.WithLabelValues(sinkID).Observe(float64(microseconds))
}

func clampIndex(i, n int) int {
	if i >= n {
		return n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

// Snapshot returns a point-in-time view of sinkID's metrics.
func (s *Store) Snapshot(sinkID string) Snapshot {
	m := s.entry(sinkID)
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		SinkID:        sinkID,
		EventsTotal:   m.eventsTotal,
		EventsDropped: m.eventsDropped,
		EventsFailed:  m.eventsFailed,
		LastError:     m.lastError,
		LatencyP50US:  m.p50Cache,
		LatencyP95US:  m.p95Cache,
	}
}

// Report is the ToJSON-shaped view of every sink's metrics.
type Report struct {
	Timestamp time.Time  `json:"timestamp"`
	Sinks     []Snapshot `json:"sinks"`
}

// ToJSON produces a Report covering every sink the store has seen.
func (s *Store) ToJSON() Report {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sinks))
	for id := range s.sinks {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	report := Report{Timestamp: time.Now(), Sinks: make([]Snapshot, 0, len(ids))}
	for _, id := range ids {
		report.Sinks = append(report.Sinks, s.Snapshot(id))
	}
	return report
}
