// Package logging builds the zerolog logger shared by ccsg commands. Logs go
// to stderr by default; stdout carries the command's result document.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config contains logger configuration options.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format is json or console.
	Format string

	// Output is stderr or stdout. Ignored when Writer is set.
	Output string

	// Writer overrides Output.
	Writer io.Writer
}

// DefaultConfig returns warn-level JSON logs on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "json",
		Output: "stderr",
	}
}

// New creates a logger from cfg.
func New(cfg Config) zerolog.Logger {
	out := cfg.Writer
	if out == nil {
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			out = os.Stdout
		default:
			out = os.Stderr
		}
	}

	if strings.ToLower(cfg.Format) == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(cfg.Level))
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names mean
// warn.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// WithRun adds the fields identifying an ingestion run to a logger.
func WithRun(logger zerolog.Logger, citations, works string) zerolog.Logger {
	return logger.With().
		Str("citations", citations).
		Str("works", works).
		Logger()
}
