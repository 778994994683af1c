package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID returns a random ID for a CLI run or request with no span.
func GenerateTraceID() string {
	return uuid.New().String()
}

// EnsureTraceID gives ctx a trace ID for log correlation. An existing ID is
// kept; otherwise the active span's trace ID is used so log lines and exported
// spans of the same upload share one ID.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	if id := TraceIDFromContext(ctx); id != "" {
		return WithTraceID(ctx, id)
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// WithComponent scopes logger to a subsystem such as "cli" or
// "schedule_parser". A nil logger falls back to the process logger.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}

func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With(slog.String("error", err.Error()))
}
