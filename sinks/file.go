package sinks

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/quill-log/quill/core"
	"github.com/quill-log/quill/internal/clef"
)

// RollingInterval selects how often FileSink rolls to a new file.
type RollingInterval int

const (
	// Infinite never rolls; the path is always the base path.
	Infinite RollingInterval = iota
	// Daily rolls at UTC midnight, suffixing the path with -YYYYMMDD.
	Daily
	// Hourly rolls on the UTC hour, suffixing the path with -YYYYMMDDHH.
	Hourly
)

// FileSink appends rendered lines to a file, rolling to a new path
// when the event timestamp crosses into a new calendar period.
//
// An append-open file handle is guarded by a mutex and reopened on a
// computed path change; only time-based rolling is supported, not
// size-based rotation.
type FileSink struct {
	mu sync.Mutex

	basePath string
	interval RollingInterval
	compress bool

	file         *os.File
	writer       *bufio.Writer
	lastRollTime time.Time
	currentPath  string
}

// RollingFileConfig configures a FileSink.
type RollingFileConfig struct {
	BasePath string
	Interval RollingInterval
	// CompressRolledFiles gzips the previous file (via
	// klauspost/compress/gzip) immediately after rolling away from it.
	CompressRolledFiles bool
}

// NewFileSink constructs a FileSink. The target path is opened lazily
// on the first Emit, against that event's own timestamp, so the
// initial file reflects the first logged event's calendar period
// rather than wall-clock construction time.
func NewFileSink(cfg RollingFileConfig) (*FileSink, error) {
	return &FileSink{
		basePath: cfg.BasePath,
		interval: cfg.Interval,
		compress: cfg.CompressRolledFiles,
	}, nil
}

// Emit rolls the target file if event's timestamp has crossed into a
// new calendar period, then appends the rendered line.
func (fs *FileSink) Emit(event core.Event) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	ts := event.Timestamp.UTC()
	if fs.file == nil || fs.needsRoll(ts) {
		if err := fs.rollTo(ts); err != nil {
			return err
		}
	}

	line := fmt.Sprintf("%s [%s] %s", ts.Format("2006-01-02T15:04:05.000Z07:00"), event.Level.Short(), event.Rendered)
	var buf []byte
	if len(event.Properties) > 0 {
		buf = append(buf, line...)
		buf = append(buf, ' ')
		buf = clef.AppendProperties(buf, event.Properties)
	} else {
		buf = append(buf, line...)
	}
	buf = append(buf, '\n')

	_, err := fs.writer.Write(buf)
	return err
}

func (fs *FileSink) needsRoll(ts time.Time) bool {
	if fs.interval == Infinite {
		return false
	}
	if fs.lastRollTime.IsZero() {
		return false
	}
	return periodKey(fs.interval, ts) != periodKey(fs.interval, fs.lastRollTime)
}

func periodKey(interval RollingInterval, t time.Time) string {
	switch interval {
	case Daily:
		return t.Format("20060102")
	case Hourly:
		return t.Format("2006010215")
	default:
		return ""
	}
}

// rollTo closes the current file (if any), computes the path for ts,
// and opens it in append+create mode. The previous file is gzipped
// afterward if CompressRolledFiles is set.
func (fs *FileSink) rollTo(ts time.Time) error {
	previousPath := fs.currentPath

	if fs.writer != nil {
		if err := fs.writer.Flush(); err != nil {
			return err
		}
	}
	if fs.file != nil {
		if err := fs.file.Close(); err != nil {
			return err
		}
	}

	path := rolledPath(fs.basePath, fs.interval, ts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	fs.file = f
	fs.writer = bufio.NewWriter(f)
	fs.currentPath = path
	fs.lastRollTime = ts

	if fs.compress && previousPath != "" && previousPath != path {
		go fs.compressFile(previousPath)
	}
	return nil
}

func (fs *FileSink) compressFile(path string) {
	src, err := os.Open(path)
	if err != nil {
		return
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return
	}
	defer dst.Close()

	gw := kgzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		return
	}
	if err := gw.Close(); err != nil {
		return
	}
	os.Remove(path)
}

// rolledPath computes the target path for the given interval and
// timestamp, inserting the roll suffix before the extension (or
// appending it if there is none).
func rolledPath(basePath string, interval RollingInterval, ts time.Time) string {
	suffix := periodKey(interval, ts)
	if suffix == "" {
		return basePath
	}
	ext := filepath.Ext(basePath)
	base := strings.TrimSuffix(basePath, ext)
	return fmt.Sprintf("%s-%s%s", base, suffix, ext)
}

// Flush flushes the buffered writer without closing the underlying
// file.
func (fs *FileSink) Flush() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.writer == nil {
		return nil
	}
	return fs.writer.Flush()
}

// Close flushes and closes the underlying file.
func (fs *FileSink) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.writer != nil {
		if err := fs.writer.Flush(); err != nil {
			return err
		}
	}
	if fs.file != nil {
		return fs.file.Close()
	}
	return nil
}
