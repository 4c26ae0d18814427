package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type runIDKey struct{}

// NewRunID returns a fresh identifier for one export run
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID attaches the run identifier to ctx. Every record logged with
// the returned context carries it as run_id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run identifier stored in ctx, or "".
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// WithComponent tags a logger with the package that owns it
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}
