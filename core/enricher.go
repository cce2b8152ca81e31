package core

// Enricher augments an event with additional properties before
// filtering. Enrichers run in registration order and each returns the
// (possibly new) event it produced.
type Enricher func(event Event) Event
