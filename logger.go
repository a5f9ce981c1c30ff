package pagetable

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pagetable-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPageID adds a page id field to the logger (useful for tagging operations).
func (l *Logger) WithPageID(id PageID) *Logger {
	return &Logger{
		Logger: l.Logger.With("page_id", uint64(id)),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(id PageID) {
	l.Debug("insert completed",
		"page_id", uint64(id),
	)
}

// LogUpdate logs an update operation.
func (l *Logger) LogUpdate(id PageID, retries int, err error) {
	if err != nil {
		l.Debug("update conflicted",
			"page_id", uint64(id),
			"retries", retries,
			"error", err,
		)
	} else {
		l.Debug("update completed",
			"page_id", uint64(id),
			"retries", retries,
		)
	}
}

// LogClose logs table shutdown.
func (l *Logger) LogClose(released uint64) {
	l.Info("table closed",
		"pages_released", released,
	)
}
