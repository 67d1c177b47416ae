// Package logging builds the service logger and the per-request logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/nrfta/realestates-go/config"
)

// New returns a logger writing to w (os.Stdout when nil) in the configured
// format. Text output is colored with tint unless color is off.
func New(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch {
	case cfg.Log.Format == "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "2006-01-02 15:04:05.000",
			NoColor:    !cfg.Log.Color,
		})
	}
	return slog.New(handler), nil
}

type contextKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
