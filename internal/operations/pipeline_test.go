package operations_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "custseg/internal/errors"
	"custseg/internal/exporter"
	"custseg/internal/operations"
	"custseg/internal/shared/testutil"
	"custseg/internal/storage"
	"custseg/internal/visualization"
	"custseg/pkg/contracts/domain"
)

// testOptions returns options that run the sample extract with two bins,
// without charts, into temp directories.
func testOptions(t *testing.T) operations.Options {
	t.Helper()
	root := t.TempDir()
	opts := operations.DefaultOptions()
	opts.DataFile = testutil.WriteCSV(t, "data.csv", testutil.TransactionHeader, testutil.SampleTransactionRows()...)
	opts.ResultsDir = filepath.Join(root, "results")
	opts.ProcessedDir = filepath.Join(root, "processed")
	opts.PlotsDir = filepath.Join(root, "plots")
	opts.Bins = 2
	opts.NoPlots = true
	return opts
}

func runPipeline(t *testing.T, opts operations.Options) (*operations.Result, error) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	pipeline, err := operations.NewPipeline(opts, nil, logger)
	require.NoError(t, err)
	return pipeline.Run(context.Background())
}

func TestNewPipeline_StepSelection(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*operations.Options)
		want   []string
	}{
		{
			name:   "no plots",
			modify: func(o *operations.Options) { o.NoPlots = true },
			want:   []string{"load", "clean", "rfm", "segment", "export"},
		},
		{
			name:   "full",
			modify: func(o *operations.Options) {},
			want:   []string{"load", "clean", "rfm", "segment", "export", "visualize"},
		},
		{
			name:   "quick skips charts",
			modify: func(o *operations.Options) { o.Quick = true },
			want:   []string{"load", "clean", "rfm", "segment", "export"},
		},
		{
			name: "storage",
			modify: func(o *operations.Options) {
				o.NoPlots = true
				o.StorageDSN = "sqlite:///tmp/runs.db"
			},
			want: []string{"load", "clean", "rfm", "segment", "export", "store"},
		},
		{
			name: "no export",
			modify: func(o *operations.Options) {
				o.NoPlots = true
				o.NoExport = true
			},
			want: []string{"load", "clean", "rfm", "segment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := operations.DefaultOptions()
			opts.Charts.FontDirs = nil
			tt.modify(&opts)

			pipeline, err := operations.NewPipeline(opts, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pipeline.Registry().IDs())
		})
	}
}

func TestPipeline_Run(t *testing.T) {
	opts := testOptions(t)
	opts.Export.Formats = []string{exporter.FormatCSV, exporter.FormatJSON}

	result, err := runPipeline(t, opts)
	require.NoError(t, err)
	require.NotNil(t, result.Summary)

	state := result.State
	assert.Equal(t, operations.RunStatusCompleted, state.GetStatus())
	for _, id := range []string{"load", "clean", "rfm", "segment", "export"} {
		assert.Equal(t, operations.StepStatusCompleted, state.GetStep(id).GetStatus(), id)
	}

	summary := result.Summary
	assert.Equal(t, result.RunID, summary.RunID)

	overview := summary.DataOverview
	assert.Equal(t, 12, overview.OriginalRecords)
	assert.Equal(t, 7, overview.CleanedRecords)
	assert.InDelta(t, 58.33, overview.RetentionRate, 1e-9)
	assert.Equal(t, 4, overview.CustomersAnalyzed)
	assert.Equal(t, operations.DateRange{Start: "2010-12-01", End: "2011-12-09"}, overview.DateRange)

	stats := summary.RFMStatistics
	assert.Equal(t, "2011-12-10 12:50:00", stats.AnalysisDate)
	assert.InDelta(t, 270.75, stats.AvgRecency, 1e-9)
	assert.InDelta(t, 1.5, stats.AvgFrequency, 1e-9)
	assert.InDelta(t, 57.83, stats.AvgMonetary, 1e-9)
	assert.InDelta(t, 231.32, stats.TotalRevenue, 1e-9)
	assert.Equal(t, 4, stats.Distribution.Monetary.Count)

	seg := summary.SegmentationResults
	assert.Equal(t, 2, seg.Bins)
	assert.Equal(t, 2, seg.TotalSegments)
	require.Len(t, seg.TopSegments, 2)
	assert.Equal(t, domain.SegmentHibernating, seg.TopSegments[0].Segment)
	assert.Equal(t, 3, seg.TopSegments[0].CustomerCount)
	assert.Equal(t, domain.SegmentNeedAttention, seg.TopSegments[1].Segment)

	assert.Nil(t, summary.Insights.Champions)
	assert.Nil(t, summary.Insights.AtRisk)
	assert.NotEmpty(t, summary.CleaningLog)
	require.Len(t, summary.Steps, 5)
	assert.Equal(t, "load", summary.Steps[0].ID)
}

func TestPipeline_RunWritesArtifacts(t *testing.T) {
	opts := testOptions(t)
	opts.Export.Formats = []string{exporter.FormatJSON}

	result, err := runPipeline(t, opts)
	require.NoError(t, err)

	expected := []string{
		filepath.Join(opts.ResultsDir, "customer_segmentation_results.csv"),
		filepath.Join(opts.ResultsDir, "customer_segmentation_results.json"),
		filepath.Join(opts.ResultsDir, "rfm_data.csv"),
		filepath.Join(opts.ResultsDir, "segment_summary.csv"),
		filepath.Join(opts.ProcessedDir, "cleaned_data.csv"),
		filepath.Join(opts.ProcessedDir, "cleaned_data.json"),
		operations.SummaryPath(opts.ResultsDir),
	}
	for _, path := range expected {
		assert.FileExists(t, path)
	}

	files := result.State.ExportedFiles
	assert.Len(t, files["customer_segmentation_results"], 2)
	assert.Equal(t, []string{operations.SummaryPath(opts.ResultsDir)}, files["analysis_summary"])

	data, err := os.ReadFile(operations.SummaryPath(opts.ResultsDir))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"data_overview", "rfm_statistics", "segmentation_results", "insights", "exported_files"} {
		assert.Contains(t, decoded, key)
	}
}

func TestPipeline_QuickExportsCSVOnly(t *testing.T) {
	opts := testOptions(t)
	opts.NoPlots = false
	opts.Quick = true
	opts.Export.Formats = []string{exporter.FormatJSON, exporter.FormatExcel}

	result, err := runPipeline(t, opts)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(opts.ResultsDir, "rfm_data.csv"))
	assert.NoFileExists(t, filepath.Join(opts.ResultsDir, "rfm_data.json"))
	assert.NoFileExists(t, filepath.Join(opts.ResultsDir, "rfm_data.xlsx"))
	assert.Nil(t, result.State.GetStep(operations.StepIDVisualize))
	assert.NoDirExists(t, opts.PlotsDir)
}

func TestPipeline_ExplicitAnalysisDate(t *testing.T) {
	opts := testOptions(t)
	opts.AnalysisDate = time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)

	result, err := runPipeline(t, opts)
	require.NoError(t, err)

	assert.Equal(t, "2012-01-01 00:00:00", result.Summary.RFMStatistics.AnalysisDate)
	for _, v := range result.State.RFM {
		assert.GreaterOrEqual(t, v.Recency, 0)
	}
}

func TestPipeline_SegmentCountsCoverCustomers(t *testing.T) {
	result, err := runPipeline(t, testOptions(t))
	require.NoError(t, err)

	total := 0
	for _, s := range result.State.Summaries {
		total += s.CustomerCount
	}
	assert.Equal(t, len(result.State.Scored), total)
}

func TestPipeline_BinningFailureSkipsLaterSteps(t *testing.T) {
	opts := testOptions(t)
	opts.Bins = 5

	result, err := runPipeline(t, opts)
	require.Error(t, err)

	assert.Equal(t, operations.StepIDSegment, operations.FailedStep(err))
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeBinning))

	state := result.State
	assert.Equal(t, operations.RunStatusFailed, state.GetStatus())
	assert.Equal(t, operations.StepStatusCompleted, state.GetStep(operations.StepIDRFM).GetStatus())
	assert.Equal(t, operations.StepStatusFailed, state.GetStep(operations.StepIDSegment).GetStatus())
	assert.Equal(t, operations.StepStatusSkipped, state.GetStep(operations.StepIDExport).GetStatus())
	assert.Nil(t, result.Summary)
	assert.NoFileExists(t, operations.SummaryPath(opts.ResultsDir))
}

func TestPipeline_Errors(t *testing.T) {
	t.Run("missing data file", func(t *testing.T) {
		opts := testOptions(t)
		opts.DataFile = filepath.Join(t.TempDir(), "absent.csv")

		_, err := runPipeline(t, opts)
		require.Error(t, err)
		assert.Equal(t, operations.StepIDLoad, operations.FailedStep(err))
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	})

	t.Run("no data file", func(t *testing.T) {
		opts := testOptions(t)
		opts.DataFile = ""

		_, err := runPipeline(t, opts)
		require.Error(t, err)
		assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
	})

	t.Run("analysis date before last purchase", func(t *testing.T) {
		opts := testOptions(t)
		opts.AnalysisDate = time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC)

		_, err := runPipeline(t, opts)
		require.Error(t, err)
		assert.Equal(t, operations.StepIDRFM, operations.FailedStep(err))
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestPipeline_Cancelled(t *testing.T) {
	pipeline, err := operations.NewPipeline(testOptions(t), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := pipeline.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
	assert.Equal(t, operations.RunStatusCancelled, result.State.GetStatus())
	assert.Equal(t, operations.StepStatusSkipped, result.State.GetStep(operations.StepIDLoad).GetStatus())
}

func TestPipeline_StoresRun(t *testing.T) {
	opts := testOptions(t)
	opts.StorageDSN = "sqlite://" + filepath.Join(t.TempDir(), "runs.db")

	result, err := runPipeline(t, opts)
	require.NoError(t, err)
	assert.Equal(t, operations.StepStatusCompleted, result.State.GetStep(operations.StepIDStore).GetStatus())

	store, err := storage.Open(context.Background(), opts.StorageDSN, opts.TablePrefix, nil)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.CountRuns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	customers, err := store.LoadCustomers(context.Background(), result.RunID)
	require.NoError(t, err)
	require.Len(t, customers, 4)
	assert.Equal(t, "12347", customers[0].CustomerID)
	assert.Equal(t, domain.SegmentHibernating, customers[0].Segment)
}

func TestPipeline_RendersCharts(t *testing.T) {
	opts := testOptions(t)
	opts.NoPlots = false
	opts.Charts = visualization.Options{DPI: 30}
	opts.ChartKinds = []string{visualization.ChartCorrelation, visualization.ChartInteractive}

	result, err := runPipeline(t, opts)
	require.NoError(t, err)

	assert.Equal(t, operations.StepStatusCompleted, result.State.GetStep(operations.StepIDVisualize).GetStatus())
	assert.FileExists(t, filepath.Join(opts.PlotsDir, visualization.CorrelationFile))
	assert.FileExists(t, filepath.Join(opts.PlotsDir, visualization.InteractiveFile))
	assert.Len(t, result.Summary.Charts, 2)
}

func TestProgressTracker(t *testing.T) {
	progress := operations.NewProgressTracker(nil, 3, false)
	progress.Begin("load")
	progress.Increment()
	progress.Increment()

	current, total, pct := progress.GetProgress()
	assert.Equal(t, 2, current)
	assert.Equal(t, 3, total)
	assert.InDelta(t, 66.67, pct, 0.01)
	assert.False(t, progress.IsComplete())

	progress.Increment()
	progress.Finish()
	assert.True(t, progress.IsComplete())
}
