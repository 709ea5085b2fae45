// Package logger configures slog for the service and carries request ids
// through contexts.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarn    = "warn"
	LevelWarning = "warning"
	LevelError   = "error"

	FormatJSON = "json"
	FormatText = "text"

	AttrService     = "service"
	AttrVersion     = "version"
	AttrEnvironment = "environment"
	AttrRequestID   = "request_id"
	AttrComponent   = "component"
)

type ctxKey string

const requestIDKey ctxKey = "requestID"

// Init installs the configured logger as the slog default, writing to stdout.
func Init(cfg Config) *slog.Logger {
	return InitWithWriter(cfg, os.Stdout)
}

// InitWithWriter installs the configured logger as the slog default.
func InitWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel(), AddSource: cfg.AddSource}

	var handler slog.Handler
	if cfg.IsJSON() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	handler = handler.WithAttrs(cfg.BaseAttributes())

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// Component returns the default logger tagged with an infrastructure component name.
func Component(name string) *slog.Logger {
	return slog.Default().With(AttrComponent, name)
}

// WithRequestID returns a new context containing the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from the context, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// FromContext returns a logger that includes the request_id attribute when present.
func FromContext(ctx context.Context) *slog.Logger {
	if id, ok := RequestIDFromContext(ctx); ok {
		return slog.Default().With(AttrRequestID, id)
	}
	return slog.Default()
}
