package typeindex

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// Logger wraps slog.Logger with typeindex-specific context.
//
// Capacity-pressure warnings are emitted from the insert path, so they are
// sampled: at most one per second after the first.
type Logger struct {
	*slog.Logger
	pressure *rate.Limiter
}

func newLogger(l *slog.Logger) *Logger {
	return &Logger{
		Logger:   l,
		pressure: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return newLogger(slog.New(handler))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return newLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return newLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return newLogger(slog.New(slog.DiscardHandler))
}

// WithContext tags every record with the name of the logging context
// (e.g. "test", "world-1").
func (l *Logger) WithContext(name string) *Logger {
	return &Logger{
		Logger:   l.Logger.With("context", name),
		pressure: l.pressure,
	}
}

// LogCreated logs a new index.
func (l *Logger) LogCreated(ctx context.Context, capacity, probeLimit int, fallback bool) {
	l.DebugContext(ctx, "index created",
		"capacity", capacity,
		"probe_limit", probeLimit,
		"fallback", fallback,
	)
}

// LogFallback logs an identity placed in the overflow map. The first
// placement is always reported; later ones are sampled.
func (l *Logger) LogFallback(ctx context.Context, key Key, index uint32, total int64) {
	if total == 1 {
		l.InfoContext(ctx, "overflow map activated",
			"key", uintptr(key),
			"index", index,
		)
		return
	}
	if l.pressure.Allow() {
		l.WarnContext(ctx, "primary table under capacity pressure",
			"overflow_entries", total,
			"index", index,
		)
	}
}

// LogCapacityExhausted logs a rejected registration.
func (l *Logger) LogCapacityExhausted(ctx context.Context, key Key, capacity, probeLimit int) {
	l.ErrorContext(ctx, "primary table capacity exhausted",
		"key", uintptr(key),
		"capacity", capacity,
		"probe_limit", probeLimit,
	)
}

// LogClose logs the release of an index.
func (l *Logger) LogClose(ctx context.Context, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "index closed",
			"size", size,
		)
	}
}

// LogSnapshot logs a snapshot save.
func (l *Logger) LogSnapshot(ctx context.Context, name string, entries, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
			"entries", entries,
			"bytes", bytes,
		)
	}
}

// LogRestore logs a snapshot restore.
func (l *Logger) LogRestore(ctx context.Context, name string, restored, skipped int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"name", name,
			"restored", restored,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot restored",
			"name", name,
			"restored", restored,
			"skipped", skipped,
		)
	}
}
