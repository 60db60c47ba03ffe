package exporter

import (
	"custseg/internal/rfm"
	"custseg/pkg/contracts/domain"
)

// Table is a named, rectangular result set ready to be written in any
// output format. Cells keeps typed values for spreadsheet output and
// Records the matching text for CSV.
type Table struct {
	Name    string
	Headers []string
	Cells   [][]any
}

// Records renders every row as CSV text.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.Cells))
	for i, row := range t.Cells {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = formatCell(v)
		}
		out[i] = rec
	}
	return out
}

// Rows returns the records as header-keyed maps in header order.
func (t *Table) Rows() []map[string]any {
	out := make([]map[string]any, len(t.Cells))
	for i, row := range t.Cells {
		m := make(map[string]any, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		out[i] = m
	}
	return out
}

// Column headers of exported tables.
var (
	TransactionHeaders = []string{
		domain.ColInvoiceNo, domain.ColStockCode, domain.ColDescription, domain.ColQuantity,
		domain.ColInvoiceDate, domain.ColUnitPrice, domain.ColCustomerID, domain.ColCountry,
		domain.ColTotalPrice,
	}
	RFMHeaders = []string{"CustomerID", "Recency", "Frequency", "Monetary"}

	SegmentResultHeaders = []string{
		"CustomerID", "Recency", "Frequency", "Monetary",
		"R_Score", "F_Score", "M_Score", "RFM_Score", "Customer_Segment",
		"AOV", "Purchase_Frequency_Yearly", "CLV",
	}
	SegmentSummaryHeaders = []string{
		"Customer_Segment", "Customer_Count", "Avg_Recency", "Avg_Frequency",
		"Avg_Monetary", "Total_Monetary", "Percentage",
	}
)

// TransactionsTable builds the cleaned transaction table.
func TransactionsTable(name string, txns []domain.Transaction) *Table {
	cells := make([][]any, len(txns))
	for i, t := range txns {
		cells[i] = []any{
			t.InvoiceNo, t.StockCode, t.Description, t.Quantity,
			t.InvoiceDate, t.UnitPrice, t.CustomerID, t.Country, money(t.TotalPrice),
		}
	}
	return &Table{Name: name, Headers: TransactionHeaders, Cells: cells}
}

// RFMTable builds the per-customer RFM value table.
func RFMTable(name string, values []domain.CustomerRFM) *Table {
	cells := make([][]any, len(values))
	for i, v := range values {
		cells[i] = []any{v.CustomerID, v.Recency, v.Frequency, money(v.Monetary)}
	}
	return &Table{Name: name, Headers: RFMHeaders, Cells: cells}
}

// SegmentResultsTable joins scores, segments and lifetime value per customer.
func SegmentResultsTable(name string, scored []domain.ScoredCustomer, lifespanDays int) *Table {
	values := rfm.CalculateCLV(scored, lifespanDays)
	cells := make([][]any, len(scored))
	for i, s := range scored {
		cells[i] = []any{
			s.CustomerID, s.Recency, s.Frequency, money(s.Monetary),
			s.RScore, s.FScore, s.MScore, s.RFMScore, string(s.Segment),
			money(values[i].AvgOrderValue), money(values[i].PurchaseFrequencyYearly), money(values[i].CLV),
		}
	}
	return &Table{Name: name, Headers: SegmentResultHeaders, Cells: cells}
}

// SegmentSummaryTable builds the per-segment summary table.
func SegmentSummaryTable(name string, summaries []domain.SegmentSummary) *Table {
	cells := make([][]any, len(summaries))
	for i, s := range summaries {
		cells[i] = []any{
			string(s.Segment), s.CustomerCount, s.AvgRecency, s.AvgFrequency,
			money(s.AvgMonetary), money(s.TotalMonetary), s.Percentage,
		}
	}
	return &Table{Name: name, Headers: SegmentSummaryHeaders, Cells: cells}
}
