package logger

import (
	"log/slog"
	"os"
)

// New creates the process-wide JSON logger. Every line carries the app
// attribute so aggregated logs stay attributable.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With(slog.String("app", "compo"))
}
