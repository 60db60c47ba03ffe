package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"custseg/internal/config"
	apperrors "custseg/internal/errors"
	"custseg/internal/operations"
	"custseg/internal/visualization"
)

func runPlots(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, configPath := newFlagSet("plots", stderr)
	all := fs.Bool("all", false, "render every chart kind")
	kind := fs.String("type", "", "chart kind to render: "+strings.Join(visualization.ChartKinds(), ", "))
	outputDir := fs.String("output-dir", config.DefaultPlotsOutputDir, "directory for chart files")
	interactive := fs.Bool("interactive", false, "also render the interactive HTML chart")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: segment plots [flags] [data_file]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return apperrors.NewValidationError("plots takes at most one data file")
	}

	kinds, err := selectChartKinds(*all, *kind, *interactive)
	if err != nil {
		return err
	}

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	dataFile := fs.Arg(0)
	if dataFile == "" {
		found, ok := a.paths.FindDataFile()
		if !ok {
			return apperrors.NewNotFoundError(strings.Join(a.paths.DataFileCandidates(), ", "), nil)
		}
		dataFile = found
	}

	opts, err := operations.OptionsFromConfig(a.cfg, a.paths)
	if err != nil {
		return apperrors.NewConfigError("invalid analysis options", err)
	}
	opts.DataFile = dataFile
	opts.NoExport = true
	opts.StorageDSN = ""
	opts.PlotsDir = *outputDir
	if !filepath.IsAbs(opts.PlotsDir) {
		opts.PlotsDir = filepath.Join(a.paths.BaseDir, opts.PlotsDir)
	}
	opts.ChartKinds = kinds
	opts.ShowProgress = operations.StderrIsTerminal()
	opts.ProgressWriter = stderr

	a.logger.InfoContext(ctx, "Generating charts",
		slog.String("data_file", dataFile),
		slog.String("plots_dir", opts.PlotsDir),
		slog.Any("kinds", kinds))

	pipeline, err := operations.NewPipeline(opts, a.telemetry, a.logger)
	if err != nil {
		return err
	}
	result, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("plots: %w", err)
	}

	fmt.Fprintf(stdout, "Generated %d charts in %s\n", len(result.State.Charts), opts.PlotsDir)
	for _, chart := range result.State.Charts {
		fmt.Fprintf(stdout, "  - %s\n", chart)
	}
	return nil
}

// selectChartKinds resolves the chart flags. Without -all or -type every
// static chart is rendered; -interactive adds the HTML chart.
func selectChartKinds(all bool, kind string, interactive bool) ([]string, error) {
	if all {
		return visualization.ChartKinds(), nil
	}

	var kinds []string
	if kind != "" {
		if _, ok := visualization.ChartFile(kind); !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown chart type %q", kind))
		}
		kinds = []string{kind}
	} else {
		kinds = visualization.StaticChartKinds()
	}

	if interactive && kind != visualization.ChartInteractive {
		kinds = append(kinds, visualization.ChartInteractive)
	}
	return kinds, nil
}
