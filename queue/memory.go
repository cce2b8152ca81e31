package queue

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MemoryTrackerConfig configures a MemoryTracker.
type MemoryTrackerConfig struct {
	MaxQueueBytes    int64 `validate:"required,gt=0"`
	MaxEventSizeBytes int64 `validate:"required,gt=0"`
	OnLimitExceeded  func(currentBytes, limitBytes int64)
}

// MemoryTracker is a byte-accounted counter of queue occupancy.
type MemoryTracker struct {
	mu     sync.Mutex
	cfg    MemoryTrackerConfig
	current int64
}

// NewMemoryTracker constructs a MemoryTracker, returning an error if
// cfg's thresholds are not positive.
func NewMemoryTracker(cfg MemoryTrackerConfig) (*MemoryTracker, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}
	return &MemoryTracker{cfg: cfg}, nil
}

// RecordEnqueue rejects bytes exceeding MaxEventSizeBytes with a usage
// error (the event is not counted), otherwise adds bytes to the
// accumulator and invokes OnLimitExceeded if the accumulator now
// exceeds MaxQueueBytes.
func (m *MemoryTracker) RecordEnqueue(bytes int64) error {
	if bytes > m.cfg.MaxEventSizeBytes {
		return fmt.Errorf("queue: event size %d exceeds max event size %d", bytes, m.cfg.MaxEventSizeBytes)
	}

	m.mu.Lock()
	m.current += bytes
	exceeded := m.current > m.cfg.MaxQueueBytes
	current, limit := m.current, m.cfg.MaxQueueBytes
	cb := m.cfg.OnLimitExceeded
	m.mu.Unlock()

	if exceeded && cb != nil {
		cb(current, limit)
	}
	return nil
}

// RecordDequeue subtracts bytes from the accumulator, clamped at zero.
func (m *MemoryTracker) RecordDequeue(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current -= bytes
	if m.current < 0 {
		m.current = 0
	}
}

// CurrentBytes returns the current byte accumulator.
func (m *MemoryTracker) CurrentBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SetConfig replaces the tracker's configuration and immediately
// re-checks the limit, invoking OnLimitExceeded if the existing
// accumulator newly violates the updated MaxQueueBytes.
func (m *MemoryTracker) SetConfig(cfg MemoryTrackerConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	m.mu.Lock()
	m.cfg = cfg
	exceeded := m.current > cfg.MaxQueueBytes
	current, limit := m.current, cfg.MaxQueueBytes
	cb := cfg.OnLimitExceeded
	m.mu.Unlock()

	if exceeded && cb != nil {
		cb(current, limit)
	}
	return nil
}

var validate = validator.New()
