package operations

import (
	"io"
	"time"

	"custseg/internal/config"
	"custseg/internal/dataprocessing"
	"custseg/internal/exporter"
	"custseg/internal/rfm"
	"custseg/internal/visualization"
)

// Options configures one pipeline run.
type Options struct {
	DataFile     string
	ResultsDir   string
	ProcessedDir string
	PlotsDir     string

	// AnalysisDate is the reference date for recency. The zero value selects
	// the day after the latest purchase.
	AnalysisDate time.Time
	Bins         int
	LifespanDays int
	Clean        dataprocessing.CleanOptions

	Export     exporter.Options
	NoExport   bool
	NoPlots    bool
	Quick      bool
	Charts     visualization.Options
	ChartKinds []string

	StorageDSN  string
	TablePrefix string

	ShowProgress   bool
	ProgressWriter io.Writer
}

// DefaultOptions returns options matching the default configuration.
func DefaultOptions() Options {
	return Options{
		ResultsDir:   "data/results",
		ProcessedDir: "data/processed",
		PlotsDir:     config.DefaultPlotsOutputDir,
		Bins:         rfm.DefaultBins,
		LifespanDays: rfm.DefaultLifespanDays,
		Clean:        dataprocessing.DefaultCleanOptions(),
		Export: exporter.Options{
			Formats:  []string{exporter.FormatCSV},
			Encoding: exporter.EncodingUTF8,
		},
		Charts: visualization.Options{
			DPI:      visualization.DefaultDPI,
			FontDirs: config.DefaultFontDirs(),
		},
		ChartKinds: visualization.ChartKinds(),
	}
}

// OptionsFromConfig builds run options from the loaded configuration and the
// resolved paths.
func OptionsFromConfig(cfg *config.Config, paths *config.Paths) (Options, error) {
	date, _, err := cfg.ParsedAnalysisDate()
	if err != nil {
		return Options{}, err
	}

	kinds := visualization.StaticChartKinds()
	if cfg.Charts.Interactive {
		kinds = append(kinds, visualization.ChartInteractive)
	}

	return Options{
		ResultsDir:   paths.ResultsDir,
		ProcessedDir: paths.ProcessedDataDir,
		PlotsDir:     paths.PlotsDir,
		AnalysisDate: date,
		Bins:         cfg.Analysis.RFMBins,
		LifespanDays: int(cfg.Analysis.LifespanDays),
		Clean: dataprocessing.CleanOptions{
			MissingCustomers: cfg.Analysis.MissingCustomers,
			RemoveOutliers:   cfg.Analysis.RemoveOutliers,
			OutlierQuantile:  cfg.Analysis.OutlierQuantile,
		},
		Export: exporter.Options{
			Formats:   cfg.Output.Formats,
			Encoding:  cfg.Output.Encoding,
			BOMPrefix: cfg.Output.BOMPrefix,
		},
		Charts: visualization.Options{
			DPI:      cfg.Charts.DPI,
			FontDirs: cfg.Charts.FontDirs,
		},
		ChartKinds:  kinds,
		StorageDSN:  cfg.Storage.DSN,
		TablePrefix: cfg.Storage.TablePrefix,
	}, nil
}

// exportOptions returns the export options, reduced to CSV in quick mode.
func (o Options) exportOptions() exporter.Options {
	opts := o.Export
	if o.Quick {
		opts.Formats = []string{exporter.FormatCSV}
	}
	return opts
}

// plotsEnabled reports whether the visualize step runs.
func (o Options) plotsEnabled() bool {
	return !o.NoPlots && !o.Quick && len(o.ChartKinds) > 0
}
