// Package gls extracts the calling goroutine's numeric id, the same
// trick goroutine-local-storage shims in the wider Go ecosystem use to
// fake a thread-local slot. It backs both the timestamp cache
// (internal/clock) and the ambient context store (logctx), which both
// need one slot per execution context.
package gls

import (
	"bytes"
	"runtime"
	"strconv"
)

// ID returns the current goroutine's id, or 0 if it could not be
// parsed from the runtime stack header.
func ID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return 0
	}
	id, err := strconv.ParseInt(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
