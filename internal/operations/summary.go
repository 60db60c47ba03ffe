package operations

import (
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"custseg/internal/config"
	"custseg/internal/rfm"
	"custseg/internal/stats"
	"custseg/pkg/contracts/domain"
)

// topSegmentCount is the number of segments listed in TopSegments.
const topSegmentCount = 3

// DateRange is the first and last invoice day of the cleaned data.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DataOverview describes the input before and after cleaning.
type DataOverview struct {
	SourceFile        string    `json:"source_file"`
	OriginalRecords   int       `json:"original_records"`
	CleanedRecords    int       `json:"cleaned_records"`
	RetentionRate     float64   `json:"retention_rate"`
	CustomersAnalyzed int       `json:"customers_analyzed"`
	DateRange         DateRange `json:"date_range"`
}

// RFMStatistics holds the averages and distribution of the RFM values.
type RFMStatistics struct {
	AnalysisDate string         `json:"analysis_date"`
	AvgRecency   float64        `json:"avg_recency"`
	AvgFrequency float64        `json:"avg_frequency"`
	AvgMonetary  float64        `json:"avg_monetary"`
	TotalRevenue float64        `json:"total_revenue"`
	Distribution rfm.Statistics `json:"distribution"`
}

// SegmentationResults lists the segments found, largest first.
type SegmentationResults struct {
	Bins          int                     `json:"bins"`
	TotalSegments int                     `json:"total_segments"`
	TopSegments   []domain.SegmentSummary `json:"top_segments"`
}

// StepReport is the outcome of one pipeline step.
type StepReport struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Status   StepStatus `json:"status"`
	Duration float64    `json:"duration_seconds"`
	Message  string     `json:"message,omitempty"`
}

// AnalysisSummary is the report of a completed pipeline run.
type AnalysisSummary struct {
	RunID               string              `json:"run_id"`
	GeneratedAt         time.Time           `json:"generated_at"`
	DataOverview        DataOverview        `json:"data_overview"`
	RFMStatistics       RFMStatistics       `json:"rfm_statistics"`
	SegmentationResults SegmentationResults `json:"segmentation_results"`
	Insights            rfm.Insights        `json:"insights"`
	CleaningLog         []string            `json:"cleaning_log"`
	ExportedFiles       map[string][]string `json:"exported_files"`
	Charts              []string            `json:"charts,omitempty"`
	Steps               []StepReport        `json:"steps"`
}

// NewAnalysisSummary builds the summary of a run from its state. stepIDs
// fixes the order of the step reports.
func NewAnalysisSummary(state *RunState, stepIDs []string) *AnalysisSummary {
	summary := &AnalysisSummary{
		RunID:         state.ID,
		GeneratedAt:   time.Now().UTC(),
		Insights:      state.Insights,
		ExportedFiles: make(map[string][]string, len(state.ExportedFiles)),
		Charts:        state.Charts,
	}
	for name, paths := range state.ExportedFiles {
		summary.ExportedFiles[name] = append([]string(nil), paths...)
	}

	summary.DataOverview = DataOverview{
		SourceFile:        state.Options.DataFile,
		CustomersAnalyzed: len(state.RFM),
		DateRange:         dateRange(state.Cleaned),
	}
	if state.Cleaning != nil {
		summary.DataOverview.OriginalRecords = state.Cleaning.OriginalRows
		summary.DataOverview.CleanedRecords = state.Cleaning.FinalRows
		summary.DataOverview.RetentionRate = state.Cleaning.RetentionRate
		summary.CleaningLog = state.Cleaning.Log()
	}

	summary.RFMStatistics = rfmStatistics(state.RFM)
	if !state.AnalysisDate.IsZero() {
		summary.RFMStatistics.AnalysisDate = state.AnalysisDate.Format(time.DateTime)
	}

	top := state.Summaries
	if len(top) > topSegmentCount {
		top = top[:topSegmentCount]
	}
	summary.SegmentationResults = SegmentationResults{
		Bins:          state.Options.Bins,
		TotalSegments: len(state.Summaries),
		TopSegments:   top,
	}

	for _, id := range stepIDs {
		st := state.GetStep(id)
		if st == nil {
			continue
		}
		st.mu.RLock()
		report := StepReport{
			ID:      st.ID,
			Name:    st.Name,
			Status:  st.Status,
			Message: st.Message,
		}
		st.mu.RUnlock()
		report.Duration = stats.Round(st.Duration().Seconds(), 3)
		summary.Steps = append(summary.Steps, report)
	}
	return summary
}

// SummaryPath returns the file the summary of a run is written to.
func SummaryPath(resultsDir string) string {
	return filepath.Join(resultsDir, config.AnalysisSummaryFile+".json")
}

func dateRange(txns []domain.Transaction) DateRange {
	if len(txns) == 0 {
		return DateRange{}
	}
	first, last := txns[0].InvoiceDate, txns[0].InvoiceDate
	for _, t := range txns[1:] {
		if t.InvoiceDate.Before(first) {
			first = t.InvoiceDate
		}
		if t.InvoiceDate.After(last) {
			last = t.InvoiceDate
		}
	}
	return DateRange{
		Start: first.Format(time.DateOnly),
		End:   last.Format(time.DateOnly),
	}
}

func rfmStatistics(values []domain.CustomerRFM) RFMStatistics {
	out := RFMStatistics{Distribution: rfm.Describe(values)}
	if len(values) == 0 {
		return out
	}

	var recency, frequency int
	revenue := decimal.Zero
	for _, v := range values {
		recency += v.Recency
		frequency += v.Frequency
		revenue = revenue.Add(decimal.NewFromFloat(v.Monetary))
	}
	n := float64(len(values))
	total := revenue.InexactFloat64()

	out.AvgRecency = stats.Round(float64(recency)/n, 2)
	out.AvgFrequency = stats.Round(float64(frequency)/n, 2)
	out.AvgMonetary = stats.Round(total/n, 2)
	out.TotalRevenue = stats.Round(total, 2)
	return out
}
