// Package sinks implements the built-in log event destinations:
// console, file (with time-based rolling), JSON (CLEF/NDJSON), null,
// and composite fan-out.
package sinks

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/quill-log/quill/core"
)

// DefaultConsoleTemplate is the console sink's default output
// template.
const DefaultConsoleTemplate = "{timestamp} [{level}] {message}"

// levelColor maps each level to a fatih/color attribute set. Each one
// has color forced on, so WithColor alone decides whether the level
// token is colored, whatever fatih/color detects about the terminal.
var levelColor = map[core.Level]*color.Color{
	core.Verbose:     forcedColor(color.FgHiBlack),
	core.Debug:       forcedColor(color.FgCyan),
	core.Information: forcedColor(color.FgGreen),
	core.Warning:     forcedColor(color.FgYellow),
	core.Error:       forcedColor(color.FgRed),
	core.Fatal:       forcedColor(color.FgMagenta),
}

func forcedColor(attr color.Attribute) *color.Color {
	c := color.New(attr)
	c.EnableColor()
	return c
}

type consoleToken interface {
	render(timestamp, level, message string) string
}

type consoleText string

func (t consoleText) render(string, string, string) string { return string(t) }

type consolePlaceholder int

const (
	phTimestamp consolePlaceholder = iota
	phLevel
	phMessage
)

func (p consolePlaceholder) render(timestamp, level, message string) string {
	switch p {
	case phTimestamp:
		return timestamp
	case phLevel:
		return level
	default:
		return message
	}
}

func parseConsoleTemplate(tmpl string) []consoleToken {
	var tokens []consoleToken
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			tokens = append(tokens, consoleText(text.String()))
			text.Reset()
		}
	}

	i := 0
	for i < len(tmpl) {
		if tmpl[i] == '{' {
			switch {
			case strings.HasPrefix(tmpl[i:], "{timestamp}"):
				flush()
				tokens = append(tokens, phTimestamp)
				i += len("{timestamp}")
				continue
			case strings.HasPrefix(tmpl[i:], "{level}"):
				flush()
				tokens = append(tokens, phLevel)
				i += len("{level}")
				continue
			case strings.HasPrefix(tmpl[i:], "{message}"):
				flush()
				tokens = append(tokens, phMessage)
				i += len("{message}")
				continue
			}
		}
		text.WriteByte(tmpl[i])
		i++
	}
	flush()
	return tokens
}

// ConsoleSink writes log events to the console, one line per event,
// applying ANSI coloring to the level token when enabled.
type ConsoleSink struct {
	mu              sync.Mutex
	out             io.Writer
	err             io.Writer
	useColor        bool
	stderrThreshold core.Level
	tokens          []consoleToken
	timeFormat      string
}

// ConsoleOption configures a ConsoleSink at construction time.
type ConsoleOption func(*ConsoleSink)

// WithTemplate overrides the default output template.
func WithTemplate(tmpl string) ConsoleOption {
	return func(cs *ConsoleSink) { cs.tokens = parseConsoleTemplate(tmpl) }
}

// WithColor enables or disables ANSI coloring.
func WithColor(enabled bool) ConsoleOption {
	return func(cs *ConsoleSink) { cs.useColor = enabled }
}

// WithStderrThreshold sets the level at or above which events go to
// standard error instead of standard output.
func WithStderrThreshold(level core.Level) ConsoleOption {
	return func(cs *ConsoleSink) { cs.stderrThreshold = level }
}

// WithWriters overrides the stdout/stderr writers (for tests).
func WithWriters(stdout, stderr io.Writer) ConsoleOption {
	return func(cs *ConsoleSink) { cs.out = stdout; cs.err = stderr }
}

// NewConsole constructs a console sink writing to os.Stdout/os.Stderr
// with the default template, coloring enabled, and a stderr threshold
// of Error.
func NewConsole(opts ...ConsoleOption) *ConsoleSink {
	cs := &ConsoleSink{
		out:             os.Stdout,
		err:             os.Stderr,
		useColor:        true,
		stderrThreshold: core.Error,
		tokens:          parseConsoleTemplate(DefaultConsoleTemplate),
		timeFormat:      "2006-01-02T15:04:05.000Z07:00",
	}
	for _, opt := range opts {
		opt(cs)
	}
	return cs
}

// Emit writes event as one line, terminated by "\n", to stdout or
// stderr depending on stderrThreshold.
func (cs *ConsoleSink) Emit(event core.Event) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	levelStr := event.Level.Short()
	if cs.useColor {
		if c, ok := levelColor[event.Level]; ok {
			levelStr = c.Sprint(levelStr)
		}
	}

	var b strings.Builder
	for _, tok := range cs.tokens {
		b.WriteString(tok.render(event.Timestamp.UTC().Format(cs.timeFormat), levelStr, event.Rendered))
	}

	w := cs.out
	if event.Level >= cs.stderrThreshold {
		w = cs.err
	}
	fmt.Fprint(w, b.String())
	fmt.Fprint(w, "\n")
	return nil
}

// Flush is a no-op: Emit writes directly to the underlying writer on
// every call.
func (cs *ConsoleSink) Flush() error { return nil }

// Close is a no-op; the console sink does not own its writers.
func (cs *ConsoleSink) Close() error { return nil }
