// Package logging provides the process-wide debug sink, grounded in
// original_source's debug()/open_debug_file() (a single append-only file
// written from every thread) and the teacher pack's own preference for the
// standard library log package over a structured-logging dependency for
// this kind of internal diagnostic trail.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger wraps a standard library *log.Logger writing to a debug file.
type Logger struct {
	file *os.File
	l    *log.Logger
}

// Open creates (or truncates) path and returns a Logger writing to it with
// a microsecond timestamp prefix.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %q: %w", path, err)
	}
	return &Logger{file: f, l: log.New(f, "", log.LstdFlags|log.Lmicroseconds)}, nil
}

// Close flushes and closes the debug file.
func (lg *Logger) Close() error {
	if lg == nil || lg.file == nil {
		return nil
	}
	return lg.file.Close()
}

// Debugf writes one formatted, timestamped line. Safe for concurrent use
// from multiple goroutines: the underlying log.Logger serializes writes.
func (lg *Logger) Debugf(format string, args ...any) {
	if lg == nil {
		return
	}
	lg.l.Printf(format, args...)
}

// Writer exposes the underlying file for callers that want to hand it to
// something expecting an io.Writer (e.g. wiring a third-party component's
// own logger to the same sink).
func (lg *Logger) Writer() io.Writer {
	if lg == nil {
		return io.Discard
	}
	return lg.file
}
