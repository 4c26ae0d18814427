package operations

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"etenderexport/internal/infrastructure"
)

// TracerName is the instrumentation scope of pipeline spans
const TracerName = "etenderexport/operations"

// StepRecorder receives the duration and final status of every executed step
type StepRecorder interface {
	RecordStep(ctx context.Context, step, status string, duration time.Duration)
}

// Pipeline executes its steps in order
type Pipeline struct {
	steps    []Step
	logger   *slog.Logger
	recorder StepRecorder
	tracer   trace.Tracer
}

// NewPipeline creates a pipeline. A nil recorder disables step metrics.
func NewPipeline(logger *slog.Logger, recorder StepRecorder, steps ...Step) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		steps:    steps,
		logger:   logger,
		recorder: recorder,
		tracer:   otel.Tracer(TracerName),
	}
}

// WithTracer replaces the tracer used for run and step spans. A nil tracer
// keeps the global one.
func (p *Pipeline) WithTracer(tracer trace.Tracer) *Pipeline {
	if tracer != nil {
		p.tracer = tracer
	}
	return p
}

// Steps returns the steps in execution order
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Run executes every step sequentially. The first step to fail stops the run;
// its error is returned as a *StepError and the remaining steps are marked
// skipped.
func (p *Pipeline) Run(ctx context.Context, state *RunState) error {
	for _, step := range p.steps {
		state.AddStep(NewStepState(step.ID(), step.Name()))
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.Int("run.steps", len(p.steps)),
		))
	defer span.End()

	state.TraceID = infrastructure.TraceIDFromContext(ctx)
	state.Start()
	p.logRunStart(ctx, state)

	for i, step := range p.steps {
		if err := p.runStep(ctx, state, step); err != nil {
			for _, rest := range p.steps[i+1:] {
				state.GetStep(rest.ID()).Skip("previous step failed: " + step.ID())
			}

			if err.Type == ErrorTypeCancellation {
				state.Cancel(err)
			} else {
				state.Fail(err)
			}
			infrastructure.RecordError(span, err, err.Error())
			p.logRunError(ctx, state, err)
			return err
		}
	}

	state.Complete()
	p.logRunComplete(ctx, state)
	return nil
}

func (p *Pipeline) runStep(ctx context.Context, state *RunState, step Step) *StepError {
	stepState := state.GetStep(step.ID())

	ctx, span := p.tracer.Start(ctx, "pipeline.step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		))
	defer span.End()

	stepState.Start()
	p.logStepStart(ctx, step.ID())

	var err error
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else {
		err = step.Execute(ctx, state)
	}

	if err != nil {
		se := classify(step.ID(), err)
		stepState.Fail(se)
		infrastructure.RecordError(span, se, se.Message)
		p.record(ctx, step.ID(), stepState)
		p.logStepError(ctx, step.ID(), se)
		return se
	}

	stepState.Complete()
	span.SetStatus(codes.Ok, "")
	p.record(ctx, step.ID(), stepState)
	p.logStepComplete(ctx, step.ID(), stepState.Duration())
	return nil
}

func (p *Pipeline) record(ctx context.Context, stepID string, stepState *StepState) {
	if p.recorder == nil {
		return
	}
	p.recorder.RecordStep(ctx, stepID, string(stepState.GetStatus()), stepState.Duration())
}
