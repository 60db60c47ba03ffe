package main

import (
	"fmt"
	"io"
	"strings"

	apperrors "custseg/internal/errors"
	"custseg/pkg/contracts"
)

func runInfo(args []string, stdout, stderr io.Writer) error {
	fs, configPath := newFlagSet("info", stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: segment info [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return apperrors.NewValidationError("info takes no arguments")
	}

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	paths := a.paths

	fmt.Fprintf(stdout, "%s\n%s\n\n", cfg.ProjectName, contracts.GetFullVersionString())

	tw := newTable(stdout)
	fmt.Fprintln(tw, "Paths")
	fmt.Fprintf(tw, "  Base\t%s\n", paths.BaseDir)
	fmt.Fprintf(tw, "  Raw data\t%s\n", paths.RawDataDir)
	fmt.Fprintf(tw, "  Processed data\t%s\n", paths.ProcessedDataDir)
	fmt.Fprintf(tw, "  Results\t%s\n", paths.ResultsDir)
	fmt.Fprintf(tw, "  Plots\t%s\n", paths.PlotsDir)
	fmt.Fprintf(tw, "  Logs\t%s\n", paths.LogsDir)
	if dataFile, ok := paths.FindDataFile(); ok {
		fmt.Fprintf(tw, "  Data file\t%s\n", dataFile)
	} else {
		fmt.Fprintf(tw, "  Data file\tnot found\n")
	}
	fmt.Fprintln(tw)

	analysisDate := cfg.Analysis.AnalysisDate
	if analysisDate == "" {
		analysisDate = "day after last purchase"
	}
	fmt.Fprintln(tw, "Analysis")
	fmt.Fprintf(tw, "  RFM bins\t%d\n", cfg.Analysis.RFMBins)
	fmt.Fprintf(tw, "  Analysis date\t%s\n", analysisDate)
	fmt.Fprintf(tw, "  Remove outliers\t%t (quantile %.2f)\n", cfg.Analysis.RemoveOutliers, cfg.Analysis.OutlierQuantile)
	fmt.Fprintf(tw, "  Missing customers\t%s\n", cfg.Analysis.MissingCustomers)
	fmt.Fprintf(tw, "  Customer lifespan\t%.0f days\n", cfg.Analysis.LifespanDays)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Output")
	fmt.Fprintf(tw, "  Formats\t%s\n", strings.Join(cfg.Output.Formats, ", "))
	fmt.Fprintf(tw, "  Encoding\t%s\n", cfg.Output.Encoding)
	fmt.Fprintf(tw, "  Chart DPI\t%d\n", cfg.Charts.DPI)
	fmt.Fprintf(tw, "  Interactive chart\t%t\n", cfg.Charts.Interactive)
	fmt.Fprintln(tw)

	storage := "disabled"
	if cfg.Storage.DSN != "" {
		storage = "enabled (table prefix " + cfg.Storage.TablePrefix + ")"
	}
	fmt.Fprintln(tw, "Runtime")
	fmt.Fprintf(tw, "  Log level\t%s\n", cfg.Logging.Level)
	fmt.Fprintf(tw, "  Log output\t%s\n", cfg.Logging.Output)
	fmt.Fprintf(tw, "  Telemetry\t%t\n", cfg.Telemetry.Enabled)
	fmt.Fprintf(tw, "  Storage\t%s\n", storage)
	return tw.Flush()
}
