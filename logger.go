package metrigo

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with metrigo-specific field helpers. The library
// logs tree builds, compression and persistence at Debug/Info; search hot
// paths never log.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is nil,
// a text handler to stderr at Info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithDataset adds dataset cardinality and metric fields.
func (l *Logger) WithDataset(cardinality int, metricName string) *Logger {
	return &Logger{Logger: l.Logger.With("cardinality", cardinality, "metric", metricName)}
}

// WithTree adds tree shape fields.
func (l *Logger) WithTree(leaves, depth int) *Logger {
	return &Logger{Logger: l.Logger.With("leaves", leaves, "depth", depth)}
}
