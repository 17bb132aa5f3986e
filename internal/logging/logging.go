// Package logging builds the leveled console logger shared by every component.
package logging

import (
	"io"

	"github.com/charmbracelet/log"

	"todo/internal/config"
)

// Prefix is prepended to every log line.
const Prefix = "todo"

// New returns a logger writing to w, configured from cfg.
// cfg.Debug forces the debug level regardless of cfg.LogLevel.
func New(w io.Writer, cfg *config.Config) *log.Logger {
	level := ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:     level,
		Formatter: ParseFormatter(cfg.LogFormat),
		Prefix:    Prefix,
	})
}

// Discard returns a logger that drops everything. Used where no logger is
// supplied.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or a discarding logger if l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// ParseLevel parses a string log level. Unknown values map to warn.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// ParseFormatter parses a formatter name. Unknown values map to text.
func ParseFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
