// Package operations runs the customer segmentation analysis as a sequence
// of steps sharing one RunState.
//
// Core Components:
//
// Pipeline: builds the step list from Options and executes it in order. Each
// step runs under its own span and timeout, and its duration and outcome are
// recorded as metrics. A failed step stops the run and marks the remaining
// steps as skipped.
//
// Step: a single unit of work. The pipeline steps are load, clean, rfm,
// segment, export, store and visualize. Store only runs when a storage DSN is
// configured, and visualize is left out in quick or no-plots mode.
//
// RunState: the run status, per-step StepState and the data handed from one
// step to the next.
//
// AnalysisSummary: the report written to analysis_summary.json after a
// successful run.
//
// Example usage:
//
//	opts, err := operations.OptionsFromConfig(cfg, paths)
//	opts.DataFile = "data/raw/data.csv"
//	pipeline, err := operations.NewPipeline(opts, telemetry, logger)
//	result, err := pipeline.Run(ctx)
package operations
