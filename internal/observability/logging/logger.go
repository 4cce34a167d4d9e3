// Package logging builds the engine's JSON loggers. Every line carries the
// emitting service name so the api and worker streams can be told apart
// once aggregated.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls handler construction. Output defaults to stdout;
// AddSource is for local debugging only.
type Options struct {
	Level     string
	AddSource bool
	Output    io.Writer
}

func New(service string, opts Options) *slog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	})
	return slog.New(handler).With("service", service)
}

// ParseLevel maps the config's level string onto slog levels. Unknown
// values fall back to info rather than failing startup.
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
