// Package enrichers provides ready-made core.Enricher functions for
// ambient process/machine/environment facts. Each one is a pure
// Event-in/Event-out core.Enricher func, resolved once where the
// underlying fact is static and cached for the life of the process.
package enrichers

import (
	"os"
	"runtime"
	"sync"

	"github.com/quill-log/quill/core"
	"github.com/quill-log/quill/internal/gls"
)

// WithMachineName returns an enricher that adds the local hostname as
// a "MachineName" property, resolved once and cached.
func WithMachineName() core.Enricher {
	var once sync.Once
	var name string
	return func(event core.Event) core.Event {
		once.Do(func() {
			hostname, err := os.Hostname()
			if err != nil {
				hostname = "unknown"
			}
			name = hostname
		})
		return event.WithProperties(core.Property{Name: "MachineName", Value: core.FromString(name)})
	}
}

// WithProcessInfo returns an enricher that adds "ProcessId" and
// "ProcessName" properties, resolved once and cached.
func WithProcessInfo() core.Enricher {
	var once sync.Once
	var pid int64
	var processName string
	return func(event core.Event) core.Event {
		once.Do(func() {
			pid = int64(os.Getpid())
			if len(os.Args) > 0 {
				processName = os.Args[0]
			}
		})
		return event.WithProperties(
			core.Property{Name: "ProcessId", Value: core.FromInt(pid)},
			core.Property{Name: "ProcessName", Value: core.FromString(processName)},
		)
	}
}

// WithEnvironmentVariable returns an enricher that adds the value of
// the named environment variable under propertyName, read once and
// cached. It is a no-op on events if the variable is unset.
func WithEnvironmentVariable(variableName, propertyName string) core.Enricher {
	value, ok := os.LookupEnv(variableName)
	return func(event core.Event) core.Event {
		if !ok {
			return event
		}
		return event.WithProperties(core.Property{Name: propertyName, Value: core.FromString(value)})
	}
}

// WithThreadID returns an enricher that adds the calling goroutine's
// id as a "ThreadId" property, reusing internal/gls's goroutine-id
// extraction (shared with the clock cache and logctx).
func WithThreadID() core.Enricher {
	return func(event core.Event) core.Event {
		id := gls.ID()
		return event.WithProperties(core.Property{Name: "ThreadId", Value: core.FromInt(id)})
	}
}

// WithCaller returns an enricher that adds "SourceFile" and
// "SourceLine" properties from runtime.Caller(skip). A skip of 0
// reports this function's own caller.
func WithCaller(skip int) core.Enricher {
	return func(event core.Event) core.Event {
		_, file, line, ok := runtime.Caller(skip + 1)
		if !ok {
			return event
		}
		return event.WithProperties(
			core.Property{Name: "SourceFile", Value: core.FromString(file)},
			core.Property{Name: "SourceLine", Value: core.FromInt(int64(line))},
		)
	}
}
