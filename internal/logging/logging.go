// Package logging owns the process-wide file logger. The TUI owns stdout, so
// everything is written to a file under the XDG state directory.
//
// Configure must run before components call For: child loggers copy the
// level of the root at creation time. The destination can change at any time.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"charm.land/log/v2"
)

// swapWriter lets child loggers follow output changes made after they were created.
type swapWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *swapWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *swapWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

var (
	mu     sync.Mutex
	out    = &swapWriter{w: io.Discard}
	root   = log.NewWithOptions(out, log.Options{Prefix: "ocn", ReportTimestamp: true})
	closer io.Closer
)

// Configure points the logger at path with the given level name.
// An empty path keeps logging disabled.
func Configure(path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	root.SetLevel(lvl)

	if path == "" {
		out.set(io.Discard)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if closer != nil {
		_ = closer.Close()
	}
	closer = f
	out.set(f)
	return nil
}

// SetOutput redirects the logger, mainly for tests.
func SetOutput(w io.Writer) {
	out.set(w)
}

// Close releases the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	out.set(io.Discard)
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// For returns a child logger tagged with a component name.
func For(component string) *log.Logger {
	return root.WithPrefix(component)
}

// Writer exposes the shared destination for libraries that take an io.Writer.
func Writer() io.Writer {
	return out
}
