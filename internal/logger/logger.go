// Package logger provides the structured logger used across the viewer.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a logger writing text records to stderr at the given level
func New(level string) *Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger writing text records to w
func NewWithWriter(w io.Writer, level string) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	return &Logger{Logger: slog.New(slog.NewTextHandler(w, opts))}
}

// Discard returns a logger that drops every record
func Discard() *Logger {
	return NewWithWriter(io.Discard, "error")
}

// ParseLevel maps a config value to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger carrying the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Upstream logs a completed request to a remote endpoint
func (l *Logger) Upstream(endpoint string, status int, latency time.Duration) {
	level := slog.LevelDebug
	if status < 200 || status > 299 {
		level = slog.LevelError
	}
	l.Log(context.Background(), level, "upstream_request",
		slog.String("endpoint", endpoint),
		slog.Int("status", status),
		slog.Float64("latency_ms", float64(latency.Microseconds())/1000),
	)
}
