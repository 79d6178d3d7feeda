// Package logger provides prefixed charmbracelet/log loggers for farecast packages.
//
// Loggers write to stderr: stdout belongs to the IPC server's msgpack stream.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a prefixed logger that follows the global log level at creation time.
func New(prefix string) *log.Logger {
	return NewWithConfig(os.Stderr, prefix, log.GetLevel(), false, log.GetLevel() == log.DebugLevel, log.TextFormatter)
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// Discard returns a logger that drops everything; tests use it to keep output quiet.
func Discard() *log.Logger {
	return NewWithConfig(io.Discard, "", log.FatalLevel, false, false, log.TextFormatter)
}
