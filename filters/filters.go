// Package filters provides atomic event filters and combinators for
// building predicate chains out of simpler building blocks.
package filters

import "github.com/quill-log/quill/core"

// Level passes an event iff its level is at or above min.
func Level(min core.Level) core.Filter {
	return core.FilterFunc(func(e core.Event) bool {
		return e.Level >= min
	})
}

// Property passes an event iff it has a property named name and
// predicate(value) is true.
func Property(name string, predicate func(core.JSONValue) bool) core.Filter {
	return core.FilterFunc(func(e core.Event) bool {
		v, ok := e.Property(name)
		if !ok {
			return false
		}
		return predicate(v)
	})
}

// Matching passes an event iff it has a property named name.
func Matching(name string) core.Filter {
	return core.FilterFunc(func(e core.Event) bool {
		_, ok := e.Property(name)
		return ok
	})
}

// All passes an event iff every filter in fs passes it. All(nil)
// behaves as AlwaysPass.
func All(fs []core.Filter) core.Filter {
	return core.FilterFunc(func(e core.Event) bool {
		for _, f := range fs {
			if !f.IsEnabled(e) {
				return false
			}
		}
		return true
	})
}

// Any passes an event iff at least one filter in fs passes it. Any(nil)
// behaves as AlwaysBlock.
func Any(fs []core.Filter) core.Filter {
	return core.FilterFunc(func(e core.Event) bool {
		for _, f := range fs {
			if f.IsEnabled(e) {
				return true
			}
		}
		return false
	})
}

// Not inverts f. Not(Not(f)) is equivalent to f on every event.
func Not(f core.Filter) core.Filter {
	return core.FilterFunc(func(e core.Event) bool {
		return !f.IsEnabled(e)
	})
}

// AlwaysPass passes every event.
var AlwaysPass core.Filter = core.FilterFunc(func(core.Event) bool { return true })

// AlwaysBlock blocks every event.
var AlwaysBlock core.Filter = core.FilterFunc(func(core.Event) bool { return false })
