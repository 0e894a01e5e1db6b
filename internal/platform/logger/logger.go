// Package logger builds the process-wide slog logger.
package logger

import (
	"log/slog"
	"os"
)

// New returns a structured logger at the given level. Non-dev environments
// get JSON lines for ingestion; dev gets the friendlier text form. Debug
// level surfaces per-request wire diagnostics from the consent client.
func New(level slog.Level, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if env == "dev" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
