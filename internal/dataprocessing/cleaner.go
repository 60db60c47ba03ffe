package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"custseg/internal/stats"
	"custseg/pkg/contracts/domain"
)

// Missing customer handling modes.
const (
	MissingCustomersRemove = "remove"
	MissingCustomersFill   = "fill"
)

// Cleaning step names, as they appear in the cleaning log.
const (
	StepRemoveCancelled  = "remove_cancelled"
	StepRemoveInvalid    = "remove_invalid"
	StepMissingCustomers = "handle_missing_customers"
	StepComputeTotals    = "compute_total_price"
	StepDropDuplicates   = "drop_duplicates"
	StepRemoveOutliers   = "remove_outliers"
)

// CleanOptions configures the cleaning pipeline.
type CleanOptions struct {
	MissingCustomers string
	RemoveOutliers   bool
	OutlierQuantile  float64
}

// DefaultCleanOptions returns the default cleaning options.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		MissingCustomers: MissingCustomersRemove,
		OutlierQuantile:  0.95,
	}
}

// CleaningStep records the effect of one step.
type CleaningStep struct {
	Name      string `json:"name"`
	Removed   int    `json:"removed"`
	Remaining int    `json:"remaining"`
	Detail    string `json:"detail,omitempty"`
}

// CleaningSummary describes a full cleaning run.
type CleaningSummary struct {
	OriginalRows  int            `json:"original_rows"`
	FinalRows     int            `json:"final_rows"`
	RemovedRows   int            `json:"removed_rows"`
	RemovalRate   float64        `json:"removal_rate"`
	RetentionRate float64        `json:"retention_rate"`
	Steps         []CleaningStep `json:"steps"`
}

// Log renders the steps as human-readable lines.
func (s *CleaningSummary) Log() []string {
	lines := make([]string, 0, len(s.Steps))
	for _, step := range s.Steps {
		line := fmt.Sprintf("%s: removed %d rows, %d remaining", step.Name, step.Removed, step.Remaining)
		if step.Detail != "" {
			line += " (" + step.Detail + ")"
		}
		lines = append(lines, line)
	}
	return lines
}

// Cleaner applies the ordered filter pipeline to transactions. Each step
// returns a new slice and leaves its input untouched.
type Cleaner struct {
	opts   CleanOptions
	logger *slog.Logger
}

// NewCleaner creates a cleaner.
func NewCleaner(opts CleanOptions, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MissingCustomers == "" {
		opts.MissingCustomers = MissingCustomersRemove
	}
	if opts.OutlierQuantile <= 0 || opts.OutlierQuantile > 1 {
		opts.OutlierQuantile = 0.95
	}
	return &Cleaner{
		opts:   opts,
		logger: logger.With("component", "cleaner"),
	}
}

// CleanAll runs every step in order: cancelled invoices, invalid quantity or
// price, missing customers, line totals, duplicates and optional outliers.
func (c *Cleaner) CleanAll(ctx context.Context, txns []domain.Transaction) ([]domain.Transaction, *CleaningSummary, error) {
	summary := &CleaningSummary{OriginalRows: len(txns)}

	c.logger.InfoContext(ctx, "Starting data cleaning", slog.Int("rows", len(txns)))

	record := func(name string, before, after []domain.Transaction, detail string) {
		step := CleaningStep{
			Name:      name,
			Removed:   len(before) - len(after),
			Remaining: len(after),
			Detail:    detail,
		}
		summary.Steps = append(summary.Steps, step)
		c.logger.InfoContext(ctx, "Cleaning step complete",
			slog.String("step", name),
			slog.Int("removed", step.Removed),
			slog.Int("remaining", step.Remaining))
	}

	current := txns

	next := RemoveCancelled(current)
	record(StepRemoveCancelled, current, next, "")
	current = next

	next = RemoveInvalid(current)
	record(StepRemoveInvalid, current, next, "")
	current = next

	next, err := HandleMissingCustomers(current, c.opts.MissingCustomers)
	if err != nil {
		return nil, nil, err
	}
	record(StepMissingCustomers, current, next, c.opts.MissingCustomers)
	current = next

	next = ComputeTotals(current)
	record(StepComputeTotals, current, next, "")
	current = next

	next = DropDuplicates(current)
	record(StepDropDuplicates, current, next, "")
	current = next

	if c.opts.RemoveOutliers {
		next = RemoveOutliers(current, c.opts.OutlierQuantile)
		record(StepRemoveOutliers, current, next, fmt.Sprintf("quantile %.2f", c.opts.OutlierQuantile))
		current = next
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	summary.FinalRows = len(current)
	summary.RemovedRows = summary.OriginalRows - summary.FinalRows
	if summary.OriginalRows > 0 {
		summary.RemovalRate = stats.Round(float64(summary.RemovedRows)/float64(summary.OriginalRows)*100, 2)
		summary.RetentionRate = stats.Round(float64(summary.FinalRows)/float64(summary.OriginalRows)*100, 2)
	}

	c.logger.InfoContext(ctx, "Data cleaning complete",
		slog.Int("original_rows", summary.OriginalRows),
		slog.Int("final_rows", summary.FinalRows),
		slog.Float64("removal_rate", summary.RemovalRate))

	return current, summary, nil
}

func filter(txns []domain.Transaction, keep func(domain.Transaction) bool) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// RemoveCancelled drops lines whose InvoiceNo starts with "C".
func RemoveCancelled(txns []domain.Transaction) []domain.Transaction {
	return filter(txns, func(t domain.Transaction) bool { return !t.IsCancelled() })
}

// RemoveInvalid drops lines with non-positive quantity or unit price.
func RemoveInvalid(txns []domain.Transaction) []domain.Transaction {
	return filter(txns, func(t domain.Transaction) bool { return t.Quantity > 0 && t.UnitPrice > 0 })
}

// HandleMissingCustomers removes lines without a CustomerID, or fills the id
// with "-1" when mode is "fill".
func HandleMissingCustomers(txns []domain.Transaction, mode string) ([]domain.Transaction, error) {
	switch mode {
	case MissingCustomersRemove:
		return filter(txns, domain.Transaction.HasCustomer), nil
	case MissingCustomersFill:
		out := make([]domain.Transaction, len(txns))
		for i, t := range txns {
			if !t.HasCustomer() {
				t.CustomerID = domain.FilledCustomerID
			}
			out[i] = t
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown missing customer mode %q", mode)
	}
}

// ComputeTotals sets TotalPrice = Quantity × UnitPrice on every line.
func ComputeTotals(txns []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txns))
	for i, t := range txns {
		t.TotalPrice = LineTotal(t.Quantity, t.UnitPrice)
		out[i] = t
	}
	return out
}

// LineTotal multiplies quantity by price in decimal arithmetic.
func LineTotal(quantity int, unitPrice float64) float64 {
	return decimal.NewFromInt(int64(quantity)).Mul(decimal.NewFromFloat(unitPrice)).InexactFloat64()
}

// DropDuplicates keeps the first occurrence of every identical line.
func DropDuplicates(txns []domain.Transaction) []domain.Transaction {
	seen := make(map[domain.Transaction]struct{}, len(txns))
	return filter(txns, func(t domain.Transaction) bool {
		if _, ok := seen[t]; ok {
			return false
		}
		seen[t] = struct{}{}
		return true
	})
}

// RemoveOutliers keeps lines at or below the q-quantile of Quantity, then of
// UnitPrice, then of TotalPrice, each computed on the rows that remain.
func RemoveOutliers(txns []domain.Transaction, q float64) []domain.Transaction {
	columns := []func(domain.Transaction) float64{
		func(t domain.Transaction) float64 { return float64(t.Quantity) },
		func(t domain.Transaction) float64 { return t.UnitPrice },
		func(t domain.Transaction) float64 { return t.TotalPrice },
	}

	current := txns
	for _, value := range columns {
		if len(current) == 0 {
			break
		}
		xs := make([]float64, len(current))
		for i, t := range current {
			xs[i] = value(t)
		}
		limit := stats.Quantile(xs, q)
		current = filter(current, func(t domain.Transaction) bool { return value(t) <= limit })
	}
	return current
}

// DetectOutliers reports IQR outliers for Quantity, UnitPrice and TotalPrice.
func DetectOutliers(txns []domain.Transaction) map[string]stats.IQRBounds {
	quantities := make([]float64, len(txns))
	prices := make([]float64, len(txns))
	totals := make([]float64, len(txns))
	for i, t := range txns {
		quantities[i] = float64(t.Quantity)
		prices[i] = t.UnitPrice
		totals[i] = t.TotalPrice
	}
	return map[string]stats.IQRBounds{
		domain.ColQuantity:   stats.IQROutliers(quantities),
		domain.ColUnitPrice:  stats.IQROutliers(prices),
		domain.ColTotalPrice: stats.IQROutliers(totals),
	}
}
