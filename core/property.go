package core

// Property is a single (name, value) pair attached to an event.
// Duplicate names are permitted in storage; consumers read the first
// occurrence (see Event.Property).
type Property struct {
	Name  string
	Value JSONValue
}
