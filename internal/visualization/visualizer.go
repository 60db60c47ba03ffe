package visualization

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	apperrors "custseg/internal/errors"
	"custseg/pkg/contracts/domain"
)

// Chart kinds accepted by Render.
const (
	ChartRFM         = "rfm"
	ChartCorrelation = "correlation"
	ChartSegments    = "segments"
	ChartTimeSeries  = "timeseries"
	ChartGeographic  = "geographic"
	ChartInteractive = "interactive"
)

// Artifact file names.
const (
	DistributionsFile = "rfm_distributions.png"
	CorrelationFile   = "rfm_correlation.png"
	SegmentsFile      = "customer_segments.png"
	TimeSeriesFile    = "time_series_analysis.png"
	GeographicFile    = "geographic_analysis.png"
	InteractiveFile   = "interactive_rfm_plot.html"
)

// DefaultDPI is the PNG resolution used when none is configured.
const DefaultDPI = 300

// ChartKinds returns every chart kind in rendering order.
func ChartKinds() []string {
	return []string{ChartRFM, ChartCorrelation, ChartSegments, ChartTimeSeries, ChartGeographic, ChartInteractive}
}

// StaticChartKinds returns the PNG chart kinds.
func StaticChartKinds() []string {
	return []string{ChartRFM, ChartCorrelation, ChartSegments, ChartTimeSeries, ChartGeographic}
}

// ChartFile returns the artifact name of a chart kind.
func ChartFile(kind string) (string, bool) {
	switch kind {
	case ChartRFM:
		return DistributionsFile, true
	case ChartCorrelation:
		return CorrelationFile, true
	case ChartSegments:
		return SegmentsFile, true
	case ChartTimeSeries:
		return TimeSeriesFile, true
	case ChartGeographic:
		return GeographicFile, true
	case ChartInteractive:
		return InteractiveFile, true
	}
	return "", false
}

// Data is the input of every chart.
type Data struct {
	RFM          []domain.CustomerRFM
	Segments     []domain.ScoredCustomer
	Transactions []domain.Transaction
}

// Options configures a Visualizer.
type Options struct {
	DPI      int
	FontDirs []string
}

// Visualizer renders chart artifacts into an output directory.
type Visualizer struct {
	dpi    int
	logger *slog.Logger
}

// NewVisualizer creates a visualizer and selects the chart font.
func NewVisualizer(opts Options, logger *slog.Logger) *Visualizer {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "visualizer")
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	ConfigureFonts(opts.FontDirs, logger)
	return &Visualizer{dpi: opts.DPI, logger: logger}
}

// Render writes one chart kind into dir and returns the artifact path.
func (v *Visualizer) Render(ctx context.Context, kind, dir string, data *Data) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, ok := ChartFile(kind)
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown chart type %q", kind))
	}
	path := filepath.Join(dir, name)
	start := time.Now()

	var err error
	switch kind {
	case ChartInteractive:
		err = writeInteractive(path, data.Segments)
	default:
		var fig *figure
		fig, err = v.build(kind, data)
		if err == nil {
			err = fig.save(path, v.dpi)
		}
	}
	if err != nil {
		v.logger.ErrorContext(ctx, "Chart rendering failed",
			slog.String("chart", kind),
			slog.String("error", err.Error()))
		return "", apperrors.NewRenderError(kind, err).WithContext("path", path)
	}

	v.logger.InfoContext(ctx, "Chart saved",
		slog.String("chart", kind),
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)))
	return path, nil
}

func (v *Visualizer) build(kind string, data *Data) (*figure, error) {
	switch kind {
	case ChartRFM:
		if len(data.RFM) == 0 {
			return nil, fmt.Errorf("no RFM data")
		}
		return distributionsFigure(data.RFM)
	case ChartCorrelation:
		return correlationFigure(data.RFM)
	case ChartSegments:
		return segmentsFigure(data.Segments)
	case ChartTimeSeries:
		return timeSeriesFigure(data.Transactions)
	case ChartGeographic:
		return geographicFigure(data.Transactions)
	}
	return nil, fmt.Errorf("unknown chart type %q", kind)
}

// RenderAll writes every requested chart kind, or all of them when kinds is
// empty. It stops at the first failure.
func (v *Visualizer) RenderAll(ctx context.Context, dir string, data *Data, kinds ...string) ([]string, error) {
	if len(kinds) == 0 {
		kinds = ChartKinds()
	}
	paths := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		path, err := v.Render(ctx, kind, dir, data)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	v.logger.InfoContext(ctx, "All charts saved",
		slog.Int("charts", len(paths)),
		slog.String("output_dir", dir))
	return paths, nil
}
