// Package clock implements a timestamp cache: a millisecond-
// granularity memoization of "now", kept per goroutine so the hot
// logging path never takes a lock.
//
// Go has no native thread-local storage; this package fakes one the
// way goroutine-local-storage shims conventionally do, by parsing a
// goroutine id out of a small runtime.Stack capture and keying a
// sync.Map on it. Entries are never actively evicted — a logging
// goroutine that exits simply leaves a small, bounded, unreachable-
// from-the-hot-path entry behind.
package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/quill-log/quill/internal/gls"
)

// Stamp is the memoized {epoch_ms, instant, rfc3339_string} triple.
type Stamp struct {
	EpochMS int64
	Instant time.Time
	RFC3339 string
}

var disabled atomic.Bool

// SetCachingEnabled flips the global cache on/off. When disabled every
// Now() call computes fresh, bypassing per-goroutine memoization.
func SetCachingEnabled(enabled bool) {
	disabled.Store(!enabled)
}

var perGoroutine sync.Map // goroutine id -> *Stamp

// Now returns the current timestamp, reusing the calling goroutine's
// cached value if it falls within the same millisecond.
func Now() Stamp {
	if disabled.Load() {
		return compute(time.Now())
	}

	gid := gls.ID()
	now := time.Now()
	nowMS := now.UnixMilli()

	if v, ok := perGoroutine.Load(gid); ok {
		cached := v.(*Stamp)
		if cached.EpochMS == nowMS {
			return *cached
		}
	}

	stamp := compute(now)
	perGoroutine.Store(gid, &stamp)
	return stamp
}

func compute(now time.Time) Stamp {
	utc := now.UTC()
	rfc, err := formatRFC3339(utc)
	if err != nil {
		epoch := time.Unix(0, 0).UTC()
		return Stamp{
			EpochMS: 0,
			Instant: epoch,
			RFC3339: "1970-01-01T00:00:00.000Z",
		}
	}
	return Stamp{
		EpochMS: now.UnixMilli(),
		Instant: utc,
		RFC3339: rfc,
	}
}

// formatRFC3339 never actually errors for a valid time.Time; the error
// return exists so the degrade-to-epoch path in compute has somewhere
// to attach to if a future representation (e.g. an injected clock)
// fails to convert.
func formatRFC3339(t time.Time) (string, error) {
	return t.Format("2006-01-02T15:04:05.000Z07:00"), nil
}
