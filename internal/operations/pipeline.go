package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"custseg/internal/exporter"
	"custseg/internal/infrastructure"
	"custseg/internal/rfm"
)

// Result is the outcome of a pipeline run.
type Result struct {
	RunID    string
	State    *RunState
	Summary  *AnalysisSummary
	Duration time.Duration
}

// Pipeline runs the analysis steps in order: load, clean, rfm, segment,
// export, store and visualize. Store only runs with a DSN and visualize is
// left out in quick and no-plots mode.
type Pipeline struct {
	opts      Options
	registry  *Registry
	telemetry *infrastructure.Telemetry
	logger    *slog.Logger
}

// NewPipeline registers the steps selected by opts. A nil telemetry records
// nothing.
func NewPipeline(opts Options, telemetry *infrastructure.Telemetry, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopTelemetry()
	}
	if opts.Bins <= 0 {
		opts.Bins = rfm.DefaultBins
	}
	if opts.LifespanDays <= 0 {
		opts.LifespanDays = rfm.DefaultLifespanDays
	}

	env := stepEnv{logger: logger, telemetry: telemetry}
	calc := rfm.NewCalculator(opts.Bins, logger)

	steps := []Step{
		newLoadStep(env),
		newCleanStep(env),
		newRFMStep(env, calc),
		newSegmentStep(env, calc),
	}
	if !opts.NoExport {
		steps = append(steps, newExportStep(env, opts.exportOptions()))
	}
	if opts.StorageDSN != "" {
		steps = append(steps, newStoreStep(env))
	}
	if opts.plotsEnabled() {
		steps = append(steps, newVisualizeStep(env, opts.Charts))
	}

	registry := NewRegistry()
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}

	return &Pipeline{
		opts:      opts,
		registry:  registry,
		telemetry: telemetry,
		logger:    logger.With("component", "pipeline"),
	}, nil
}

// Registry returns the registered steps.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Run executes every registered step. On failure the returned result still
// carries the state reached so far. The analysis summary is written to the
// results directory unless export is disabled.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	state := NewRunState(uuid.NewString(), p.opts)
	steps := p.registry.Steps()
	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := p.telemetry.Tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.String("run.data_file", p.opts.DataFile),
			attribute.Int("run.bins", p.opts.Bins),
			attribute.Int("run.steps", len(steps)),
		),
	)
	defer span.End()

	progress := NewProgressTracker(p.opts.ProgressWriter, len(steps), p.opts.ShowProgress)
	defer progress.Finish()

	state.Start()
	p.logger.InfoContext(ctx, "Pipeline started",
		slog.String("run_id", state.ID),
		slog.String("data_file", p.opts.DataFile),
		slog.Any("steps", p.registry.IDs()))

	result := &Result{RunID: state.ID, State: state}

	if err := p.executeSequential(ctx, state, steps, progress); err != nil {
		if errors.Is(err, context.Canceled) {
			state.Cancel()
		} else {
			state.Fail(err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result.Duration = state.Elapsed()
		p.logger.ErrorContext(ctx, "Pipeline failed",
			slog.String("run_id", state.ID),
			slog.String("step", FailedStep(err)),
			slog.String("error", err.Error()))
		return result, err
	}

	summary := NewAnalysisSummary(state, p.registry.IDs())
	if !p.opts.NoExport {
		path := SummaryPath(p.opts.ResultsDir)
		if err := exporter.WriteJSON(p.logger, path, summary); err != nil {
			err = fmt.Errorf("write analysis summary: %w", err)
			state.Fail(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}
		state.AddExported("analysis_summary", path)
	}

	state.Complete()
	result.Summary = summary
	result.Duration = state.Elapsed()
	span.SetStatus(codes.Ok, "")

	p.logger.InfoContext(ctx, "Pipeline completed",
		slog.String("run_id", state.ID),
		slog.Int("customers", len(state.RFM)),
		slog.Int("segments", len(state.Summaries)),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// executeSequential runs steps one by one and skips the rest after a failure.
func (p *Pipeline) executeSequential(ctx context.Context, state *RunState, steps []Step, progress *ProgressTracker) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			p.logger.WarnContext(ctx, "Pipeline cancelled",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()))
			p.skipRemaining(state, steps[i:], "pipeline cancelled")
			return NewCancellationError(step.ID(), err)
		}

		progress.Begin(step.Name())
		p.logger.InfoContext(ctx, "Executing step",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := p.executeStep(ctx, state, step); err != nil {
			p.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
		progress.Increment()
	}
	return nil
}

// executeStep validates and runs a single step under its own span and timeout.
func (p *Pipeline) executeStep(ctx context.Context, state *RunState, step Step) error {
	st := state.GetStep(step.ID())

	ctx, span := p.telemetry.Tracer.Start(ctx, "pipeline.step."+step.ID(),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
	defer span.End()

	if err := step.Validate(state); err != nil {
		stepErr := NewValidationError(step.ID(), err)
		st.Fail(stepErr)
		infrastructure.RecordError(ctx, stepErr)
		return stepErr
	}

	timeout := StepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	st.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)
	p.telemetry.RecordStage(ctx, step.ID(), duration, err)

	if err != nil {
		var stepErr *StepError
		switch {
		case errors.Is(err, context.DeadlineExceeded) && stepCtx.Err() != nil && ctx.Err() == nil:
			stepErr = NewTimeoutError(step.ID(), err)
		case errors.Is(err, context.Canceled):
			stepErr = NewCancellationError(step.ID(), err)
		default:
			stepErr = NewExecutionError(step.ID(), err)
		}
		st.Fail(stepErr)
		infrastructure.RecordError(ctx, stepErr)
		p.logger.ErrorContext(ctx, "Step failed",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return stepErr
	}

	st.Complete(fmt.Sprintf("%s completed", step.Name()))
	span.SetStatus(codes.Ok, "")
	p.logger.InfoContext(ctx, "Step completed",
		slog.String("run_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

func (p *Pipeline) skipRemaining(state *RunState, steps []Step, reason string) {
	for _, step := range steps {
		if st := state.GetStep(step.ID()); st != nil && st.GetStatus() == StepStatusPending {
			st.Skip(reason)
		}
	}
}
