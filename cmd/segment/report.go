package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"custseg/internal/dataprocessing"
	"custseg/internal/operations"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printAnalysis writes the run summary: data overview, RFM averages, the
// segment table, insights and the written files.
func printAnalysis(w io.Writer, result *operations.Result) {
	summary := result.Summary
	state := result.State

	fmt.Fprintf(w, "Analysis completed in %s (run %s)\n\n", result.Duration.Round(time.Millisecond), result.RunID)

	overview := summary.DataOverview
	tw := newTable(w)
	fmt.Fprintln(tw, "Data overview")
	fmt.Fprintf(tw, "  Original records\t%d\n", overview.OriginalRecords)
	fmt.Fprintf(tw, "  Cleaned records\t%d (%.2f%% retained)\n", overview.CleanedRecords, overview.RetentionRate)
	fmt.Fprintf(tw, "  Customers analyzed\t%d\n", overview.CustomersAnalyzed)
	fmt.Fprintf(tw, "  Date range\t%s to %s\n", overview.DateRange.Start, overview.DateRange.End)
	fmt.Fprintln(tw)

	rfmStats := summary.RFMStatistics
	fmt.Fprintln(tw, "RFM statistics")
	fmt.Fprintf(tw, "  Analysis date\t%s\n", rfmStats.AnalysisDate)
	fmt.Fprintf(tw, "  Average recency\t%.2f days\n", rfmStats.AvgRecency)
	fmt.Fprintf(tw, "  Average frequency\t%.2f orders\n", rfmStats.AvgFrequency)
	fmt.Fprintf(tw, "  Average monetary\t%.2f\n", rfmStats.AvgMonetary)
	fmt.Fprintf(tw, "  Total revenue\t%.2f\n", rfmStats.TotalRevenue)
	tw.Flush()

	fmt.Fprintf(w, "\nSegments (%d)\n", summary.SegmentationResults.TotalSegments)
	tw = newTable(w)
	fmt.Fprintln(tw, "  SEGMENT\tCUSTOMERS\tSHARE\tAVG RECENCY\tAVG FREQUENCY\tAVG MONETARY\tTOTAL MONETARY")
	for _, s := range state.Summaries {
		fmt.Fprintf(tw, "  %s\t%d\t%.2f%%\t%.2f\t%.2f\t%.2f\t%.2f\n",
			s.Segment, s.CustomerCount, s.Percentage, s.AvgRecency, s.AvgFrequency, s.AvgMonetary, s.TotalMonetary)
	}
	tw.Flush()

	if c := summary.Insights.Champions; c != nil {
		fmt.Fprintf(w, "\nChampions: %d customers (%.2f%%), revenue %.2f, average CLV %.2f\n",
			c.Count, c.Percentage, c.TotalRevenue, c.AvgCLV)
	}
	if r := summary.Insights.AtRisk; r != nil {
		fmt.Fprintf(w, "At risk: %d customers (%.2f%%), potential lost revenue %.2f\n",
			r.Count, r.Percentage, r.PotentialLostRevenue)
	}

	printFiles(w, state.ExportedFiles)
}

func printFiles(w io.Writer, files map[string][]string) {
	if len(files) == 0 {
		return
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nExported files")
	tw := newTable(w)
	for _, name := range names {
		for _, path := range files[name] {
			fmt.Fprintf(tw, "  %s\t%s\n", name, path)
		}
	}
	tw.Flush()
}

// printValidation writes the data quality report of the validate command.
func printValidation(w io.Writer, info dataprocessing.DataInfo, cleaning *dataprocessing.CleaningSummary) {
	tw := newTable(w)
	fmt.Fprintln(tw, "CHECK\tSTATUS\tDETAILS")
	fmt.Fprintf(tw, "File size\tok\t%d rows, %d columns\n", info.Rows, len(info.Columns))
	fmt.Fprintf(tw, "Required columns\tok\tall required columns present\n")

	missing := 0
	for _, n := range info.MissingValues {
		missing += n
	}
	if missing > 0 {
		fmt.Fprintf(tw, "Missing values\twarning\t%d missing values\n", missing)
	} else {
		fmt.Fprintf(tw, "Missing values\tok\tno missing values\n")
	}
	if info.DuplicateRows > 0 {
		fmt.Fprintf(tw, "Duplicates\twarning\t%d duplicate records\n", info.DuplicateRows)
	} else {
		fmt.Fprintf(tw, "Duplicates\tok\tno duplicate records\n")
	}
	if !info.FirstDate.IsZero() {
		fmt.Fprintf(tw, "Date range\tok\t%s to %s\n",
			info.FirstDate.Format("2006-01-02"), info.LastDate.Format("2006-01-02"))
	}
	tw.Flush()

	if missing > 0 {
		columns := make([]string, 0, len(info.MissingValues))
		for col, n := range info.MissingValues {
			if n > 0 {
				columns = append(columns, col)
			}
		}
		sort.Strings(columns)
		fmt.Fprintln(w, "\nMissing values by column")
		tw = newTable(w)
		for _, col := range columns {
			fmt.Fprintf(tw, "  %s\t%d\n", col, info.MissingValues[col])
		}
		tw.Flush()
	}

	fmt.Fprintln(w, "\nCleaning")
	tw = newTable(w)
	fmt.Fprintf(tw, "  Original records\t%d\n", cleaning.OriginalRows)
	fmt.Fprintf(tw, "  Cleaned records\t%d\n", cleaning.FinalRows)
	fmt.Fprintf(tw, "  Removed records\t%d (%.2f%%)\n", cleaning.RemovedRows, cleaning.RemovalRate)
	tw.Flush()
	for _, line := range cleaning.Log() {
		fmt.Fprintf(w, "  - %s\n", line)
	}
}
