package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// ConsoleLogger writes leveled log messages to stderr.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose bool
	log     *log.Logger
}

var _ pgnc.Logger = (*ConsoleLogger)(nil)

// NewConsoleLogger creates a ConsoleLogger writing to stderr.
// If verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stderr, verbose)
}

// NewConsoleLoggerTo creates a ConsoleLogger writing to w.
func NewConsoleLoggerTo(w io.Writer, verbose bool) *ConsoleLogger {
	if w == nil {
		panic("writer cannot be nil")
	}
	opts := log.Options{
		Prefix:          "pgnc",
		ReportTimestamp: verbose,
		TimeFormat:      "15:04:05",
		Level:           log.InfoLevel,
	}
	if verbose {
		opts.Level = log.DebugLevel
	}
	return &ConsoleLogger{
		verbose: verbose,
		log:     log.NewWithOptions(w, opts),
	}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	if len(args) > 0 {
		l.log.Debugf(format, args...)
	} else {
		l.log.Debug(format)
	}
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	if len(args) > 0 {
		l.log.Infof(format, args...)
	} else {
		l.log.Info(format)
	}
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	if len(args) > 0 {
		l.log.Errorf(format, args...)
	} else {
		l.log.Error(format)
	}
}
