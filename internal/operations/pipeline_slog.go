package operations

import (
	"context"
	"log/slog"
	"time"
)

func (p *Pipeline) logRunStart(ctx context.Context, state *RunState) {
	p.logger.InfoContext(ctx, "run_start",
		slog.Int("steps", len(p.steps)),
		slog.Time("planned_at", state.Now))
}

func (p *Pipeline) logRunComplete(ctx context.Context, state *RunState) {
	p.logger.InfoContext(ctx, "run_complete",
		slog.String("status", string(state.GetStatus())),
		slog.Duration("duration", state.Duration()))
}

func (p *Pipeline) logRunError(ctx context.Context, state *RunState, err error) {
	p.logger.ErrorContext(ctx, "run_error",
		slog.String("status", string(state.GetStatus())),
		slog.String("error", err.Error()))
}

func (p *Pipeline) logStepStart(ctx context.Context, stepID string) {
	p.logger.InfoContext(ctx, "step_start",
		slog.String("step", stepID))
}

func (p *Pipeline) logStepComplete(ctx context.Context, stepID string, duration time.Duration) {
	p.logger.InfoContext(ctx, "step_complete",
		slog.String("step", stepID),
		slog.Duration("duration", duration))
}

func (p *Pipeline) logStepError(ctx context.Context, stepID string, err *StepError) {
	p.logger.ErrorContext(ctx, "step_error",
		slog.String("step", stepID),
		slog.String("type", string(err.Type)),
		slog.String("error", err.Error()))
}
