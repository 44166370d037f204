// Package log configures the process-wide slog logger for the scoring
// service. Output is JSON in production and human-readable text elsewhere,
// and every record carries the service name so aggregated logs stay
// attributable.
package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

const serviceName = "deepsift-scoring-service"

var (
	logger *slog.Logger
	once   sync.Once
)

// Init builds the global logger at the given level. Levels: "debug",
// "info", "warn", "error"; anything else falls back to info. Repeated
// calls are no-ops.
func Init(level string) {
	once.Do(func() {
		opts := &slog.HandlerOptions{Level: parseLevel(level)}

		var handler slog.Handler
		if os.Getenv("GO_ENV") == "production" {
			handler = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(os.Stdout, opts)
		}

		logger = slog.New(handler).With("service", serviceName)
		slog.SetDefault(logger)
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the global logger, initializing it at info level if Init was
// never called.
func L() *slog.Logger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// Info logs at info level on the global logger.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level on the global logger.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level on the global logger.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}
