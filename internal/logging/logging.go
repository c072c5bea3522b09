// Package logging configures structured diagnostics for retrivd.
//
// All diagnostics go to stderr as one JSON object per line with the keys
// {timestamp, level, message}. stdout is reserved for the readiness
// sentinel and command responses and must never receive log output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Writer is the destination stream. Defaults to os.Stderr.
	Writer io.Writer
}

// DefaultConfig returns stderr logging at info level.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Writer: os.Stderr,
	}
}

// Setup builds the diagnostic logger.
// Attribute keys are renamed to match the wire contract: time -> timestamp,
// msg -> message.
func Setup(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: renameWireKeys,
	})

	return slog.New(handler)
}

// SetupDefault configures the process-wide default logger.
func SetupDefault(level string) *slog.Logger {
	logger := Setup(Config{Level: level})
	slog.SetDefault(logger)
	return logger
}

// renameWireKeys maps slog's built-in keys onto the diagnostic wire shape.
func renameWireKeys(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

// ParseLevel converts a string level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
