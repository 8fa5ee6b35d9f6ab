// Package logging sets up the application logger. The TUI owns stdout, so
// logs go to a file.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New opens the log file at path for appending and returns a logger writing
// to it, along with the closer for the underlying file.
func New(path string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return NewWithWriter(f), f, nil
}

// NewWithWriter creates a structured logger with a custom writer.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Caller().Logger()
}

// Nop returns a disabled logger for callers that have nowhere to log.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
