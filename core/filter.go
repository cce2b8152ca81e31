package core

// Filter is a predicate over a constructed Event. A filter returning
// false drops the event before it reaches any sink.
type Filter interface {
	IsEnabled(event Event) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(event Event) bool

// IsEnabled calls f.
func (f FilterFunc) IsEnabled(event Event) bool { return f(event) }
