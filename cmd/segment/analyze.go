package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	apperrors "custseg/internal/errors"
	"custseg/internal/operations"
)

func runAnalyze(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, configPath := newFlagSet("analyze", stderr)
	outputDir := fs.String("output-dir", "", "results directory (defaults to paths.results_dir)")
	removeOutliers := fs.Bool("remove-outliers", false, "drop lines above the outlier quantile of Quantity, then UnitPrice, then TotalPrice")
	bins := fs.Int("rfm-bins", 0, "number of RFM score bins (defaults to analysis.rfm_bins)")
	analysisDate := fs.String("analysis-date", "", "reference date YYYY-MM-DD (defaults to the day after the last purchase)")
	noPlots := fs.Bool("no-plots", false, "skip chart rendering")
	quick := fs.Bool("quick", false, "quick analysis: CSV export only, no charts")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: segment analyze [flags] <data_file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperrors.NewValidationError("analyze takes exactly one data file")
	}
	dataFile := fs.Arg(0)

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if *bins != 0 {
		a.cfg.Analysis.RFMBins = *bins
	}
	if *analysisDate != "" {
		a.cfg.Analysis.AnalysisDate = *analysisDate
	}
	if *removeOutliers {
		a.cfg.Analysis.RemoveOutliers = true
	}
	if err := a.cfg.Validate(); err != nil {
		return apperrors.NewConfigError("invalid analyze flags", err)
	}

	paths := a.paths
	if *outputDir != "" {
		paths = paths.WithResultsDir(*outputDir)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	opts, err := operations.OptionsFromConfig(a.cfg, paths)
	if err != nil {
		return apperrors.NewConfigError("invalid analysis options", err)
	}
	opts.DataFile = dataFile
	opts.NoPlots = *noPlots
	opts.Quick = *quick
	opts.ShowProgress = operations.StderrIsTerminal()
	opts.ProgressWriter = stderr

	a.logger.InfoContext(ctx, "Starting analysis",
		slog.String("data_file", dataFile),
		slog.Int("rfm_bins", opts.Bins),
		slog.Bool("quick", opts.Quick),
		slog.Bool("no_plots", opts.NoPlots),
		slog.String("results_dir", paths.ResultsDir))

	pipeline, err := operations.NewPipeline(opts, a.telemetry, a.logger)
	if err != nil {
		return err
	}
	result, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	printAnalysis(stdout, result)
	if len(result.State.Charts) > 0 {
		fmt.Fprintf(stdout, "\nCharts saved to %s\n", opts.PlotsDir)
	}
	return nil
}
