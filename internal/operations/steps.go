package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"custseg/internal/config"
	"custseg/internal/dataprocessing"
	"custseg/internal/exporter"
	"custseg/internal/infrastructure"
	"custseg/internal/rfm"
	"custseg/internal/storage"
	"custseg/internal/visualization"
)

// stepEnv carries the dependencies shared by every step.
type stepEnv struct {
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
}

// loadStep reads the input extract.
type loadStep struct {
	baseStep
	env    stepEnv
	loader *dataprocessing.Loader
}

// newLoadStep creates the load step.
func newLoadStep(env stepEnv) *loadStep {
	return &loadStep{
		baseStep: baseStep{id: StepIDLoad, name: StepNameLoad},
		env:      env,
		loader:   dataprocessing.NewLoader("", env.logger),
	}
}

// Validate checks that a data file was given.
func (s *loadStep) Validate(state *RunState) error {
	if state.Options.DataFile == "" {
		return fmt.Errorf("no data file given")
	}
	return nil
}

// Execute loads the data file into the run state.
func (s *loadStep) Execute(ctx context.Context, state *RunState) error {
	ds, err := s.loader.Load(ctx, state.Options.DataFile)
	if err != nil {
		return err
	}
	state.Dataset = ds
	s.env.telemetry.Metrics.RowsProcessed.Add(ctx, int64(len(ds.Transactions)))

	st := state.GetStep(s.ID())
	st.SetMetadata("rows", len(ds.Transactions))
	st.SetMetadata("encoding", ds.Encoding)
	return nil
}

// cleanStep runs the cleaning filters.
type cleanStep struct {
	baseStep
	env stepEnv
}

// newCleanStep creates the clean step.
func newCleanStep(env stepEnv) *cleanStep {
	return &cleanStep{
		baseStep: baseStep{id: StepIDClean, name: StepNameClean},
		env:      env,
	}
}

// Validate checks that the extract was loaded.
func (s *cleanStep) Validate(state *RunState) error {
	if state.Dataset == nil {
		return fmt.Errorf("no dataset loaded")
	}
	return nil
}

// Execute cleans the loaded transactions.
func (s *cleanStep) Execute(ctx context.Context, state *RunState) error {
	cleaner := dataprocessing.NewCleaner(state.Options.Clean, s.env.logger)
	cleaned, summary, err := cleaner.CleanAll(ctx, state.Dataset.Transactions)
	if err != nil {
		return err
	}
	state.Cleaned = cleaned
	state.Cleaning = summary

	for _, step := range summary.Steps {
		s.env.telemetry.Metrics.RowsRemoved.Add(ctx, int64(step.Removed),
			metric.WithAttributes(attribute.String("step", step.Name)))
	}

	st := state.GetStep(s.ID())
	st.SetMetadata("final_rows", summary.FinalRows)
	st.SetMetadata("removal_rate", summary.RemovalRate)
	return nil
}

// rfmStep aggregates recency, frequency and monetary per customer.
type rfmStep struct {
	baseStep
	env  stepEnv
	calc *rfm.Calculator
}

// newRFMStep creates the RFM step.
func newRFMStep(env stepEnv, calc *rfm.Calculator) *rfmStep {
	return &rfmStep{
		baseStep: baseStep{id: StepIDRFM, name: StepNameRFM},
		env:      env,
		calc:     calc,
	}
}

// Validate checks that cleaned transactions are available.
func (s *rfmStep) Validate(state *RunState) error {
	if state.Cleaning == nil {
		return fmt.Errorf("data has not been cleaned")
	}
	return nil
}

// Execute computes the RFM values.
func (s *rfmStep) Execute(ctx context.Context, state *RunState) error {
	date := state.Options.AnalysisDate
	if date.IsZero() {
		date = rfm.DefaultAnalysisDate(state.Cleaned)
	}
	values, err := s.calc.CalculateRFM(ctx, state.Cleaned, date)
	if err != nil {
		return err
	}
	state.AnalysisDate = date
	state.RFM = values

	st := state.GetStep(s.ID())
	st.SetMetadata("customers", len(values))
	st.SetMetadata("analysis_date", date.Format(time.DateTime))
	return nil
}

// segmentStep scores customers and assigns segments.
type segmentStep struct {
	baseStep
	env  stepEnv
	calc *rfm.Calculator
}

// newSegmentStep creates the segment step.
func newSegmentStep(env stepEnv, calc *rfm.Calculator) *segmentStep {
	return &segmentStep{
		baseStep: baseStep{id: StepIDSegment, name: StepNameSegment},
		env:      env,
		calc:     calc,
	}
}

// Validate checks that RFM values were computed.
func (s *segmentStep) Validate(state *RunState) error {
	if len(state.RFM) == 0 {
		return fmt.Errorf("no RFM values computed")
	}
	return nil
}

// Execute scores, segments and summarizes the customers.
func (s *segmentStep) Execute(ctx context.Context, state *RunState) error {
	scored, err := s.calc.CalculateScores(ctx, state.RFM)
	if err != nil {
		return err
	}
	state.Scored = scored
	state.Summaries = rfm.SummarizeSegments(scored)
	state.Insights = rfm.BusinessInsights(scored, state.Options.LifespanDays)

	for _, summary := range state.Summaries {
		s.env.telemetry.Metrics.SegmentMembers.Add(ctx, int64(summary.CustomerCount),
			metric.WithAttributes(attribute.String("segment", string(summary.Segment))))
	}

	state.GetStep(s.ID()).SetMetadata("segments", len(state.Summaries))
	return nil
}

// exportStep writes the result tables.
type exportStep struct {
	baseStep
	env      stepEnv
	exporter *exporter.Exporter
}

// newExportStep creates the export step.
func newExportStep(env stepEnv, opts exporter.Options) *exportStep {
	return &exportStep{
		baseStep: baseStep{id: StepIDExport, name: StepNameExport},
		env:      env,
		exporter: exporter.NewExporter(opts, env.logger),
	}
}

// Validate checks that customers were segmented.
func (s *exportStep) Validate(state *RunState) error {
	if len(state.Scored) == 0 {
		return fmt.Errorf("no segmentation results to export")
	}
	return nil
}

// Execute writes segmentation results, RFM values and the segment summary
// to the results directory and the cleaned data to the processed directory.
func (s *exportStep) Execute(ctx context.Context, state *RunState) error {
	opts := state.Options
	jobs := []struct {
		dir   string
		table *exporter.Table
	}{
		{opts.ResultsDir, exporter.SegmentResultsTable(config.SegmentResultsFile, state.Scored, opts.LifespanDays)},
		{opts.ResultsDir, exporter.RFMTable(config.RFMDataFile, state.RFM)},
		{opts.ResultsDir, exporter.SegmentSummaryTable(config.SegmentSummaryFile, state.Summaries)},
		{opts.ProcessedDir, exporter.TransactionsTable(config.CleanedDataFile, state.Cleaned)},
	}

	written := 0
	for _, job := range jobs {
		paths, err := s.exporter.ExportTable(ctx, job.dir, job.table)
		if err != nil {
			return err
		}
		state.AddExported(job.table.Name, paths...)
		written += len(paths)
	}
	s.env.telemetry.Metrics.ArtifactsWritten.Add(ctx, int64(written),
		metric.WithAttributes(attribute.String("kind", "table")))

	state.GetStep(s.ID()).SetMetadata("files", written)
	return nil
}

// storeStep persists the run to the configured SQL database.
type storeStep struct {
	baseStep
	env stepEnv
}

// newStoreStep creates the store step.
func newStoreStep(env stepEnv) *storeStep {
	return &storeStep{
		baseStep: baseStep{id: StepIDStore, name: StepNameStore},
		env:      env,
	}
}

// Validate checks that a DSN is configured and customers were segmented.
func (s *storeStep) Validate(state *RunState) error {
	if state.Options.StorageDSN == "" {
		return fmt.Errorf("no storage DSN configured")
	}
	if len(state.Scored) == 0 {
		return fmt.Errorf("no segmentation results to store")
	}
	return nil
}

// Execute saves the scored customers and segment summary as one run.
func (s *storeStep) Execute(ctx context.Context, state *RunState) error {
	store, err := storage.Open(ctx, state.Options.StorageDSN, state.Options.TablePrefix, s.env.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	run := &storage.Run{
		ID:           state.ID,
		SourceFile:   state.Options.DataFile,
		AnalysisDate: state.AnalysisDate,
		Bins:         state.Options.Bins,
		CreatedAt:    time.Now().UTC(),
		Customers:    state.Scored,
		Summary:      state.Summaries,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}

	state.GetStep(s.ID()).SetMetadata("driver", store.Driver())
	return nil
}

// visualizeStep renders the configured charts.
type visualizeStep struct {
	baseStep
	env        stepEnv
	visualizer *visualization.Visualizer
}

// newVisualizeStep creates the visualize step.
func newVisualizeStep(env stepEnv, opts visualization.Options) *visualizeStep {
	return &visualizeStep{
		baseStep:   baseStep{id: StepIDVisualize, name: StepNameVisualize},
		env:        env,
		visualizer: visualization.NewVisualizer(opts, env.logger),
	}
}

// Validate checks that customers were segmented.
func (s *visualizeStep) Validate(state *RunState) error {
	if len(state.Scored) == 0 {
		return fmt.Errorf("no segmentation results to plot")
	}
	return nil
}

// Execute renders every configured chart kind into the plots directory.
func (s *visualizeStep) Execute(ctx context.Context, state *RunState) error {
	data := &visualization.Data{
		RFM:          state.RFM,
		Segments:     state.Scored,
		Transactions: state.Cleaned,
	}
	paths, err := s.visualizer.RenderAll(ctx, state.Options.PlotsDir, data, state.Options.ChartKinds...)
	state.Charts = append(state.Charts, paths...)
	if len(paths) > 0 {
		s.env.telemetry.Metrics.ArtifactsWritten.Add(ctx, int64(len(paths)),
			metric.WithAttributes(attribute.String("kind", "chart")))
	}
	if err != nil {
		return err
	}

	state.GetStep(s.ID()).SetMetadata("charts", len(paths))
	return nil
}
