package sinks

import (
	"bufio"
	"os"
	"sync"

	"github.com/quill-log/quill/core"
	"github.com/quill-log/quill/internal/clef"
)

// JSONSink writes one CLEF JSON record per line, with no header,
// buffered until Flush or Close.
type JSONSink struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer func() error
}

// NewJSONSink constructs a JSONSink writing CLEF records to w. The
// caller remains responsible for closing w unless it also implements
// io.Closer and close-on-Close behavior is desired via NewJSONFile.
func NewJSONSink(w *bufio.Writer) *JSONSink {
	return &JSONSink{w: w}
}

// NewJSONFile constructs a JSONSink backed by a newly opened file at
// path (append+create mode), closed along with the sink.
func NewJSONFile(path string) (*JSONSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONSink{w: bufio.NewWriter(f), closer: f.Close}, nil
}

// Emit appends event's CLEF line, terminated by "\n".
func (js *JSONSink) Emit(event core.Event) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	buf := clef.AppendLine(nil, event)
	buf = append(buf, '\n')
	_, err := js.w.Write(buf)
	return err
}

// Flush flushes the buffered writer.
func (js *JSONSink) Flush() error {
	js.mu.Lock()
	defer js.mu.Unlock()
	return js.w.Flush()
}

// Close flushes the buffered writer and closes the underlying file,
// if any.
func (js *JSONSink) Close() error {
	js.mu.Lock()
	defer js.mu.Unlock()
	if err := js.w.Flush(); err != nil {
		return err
	}
	if js.closer != nil {
		return js.closer()
	}
	return nil
}
