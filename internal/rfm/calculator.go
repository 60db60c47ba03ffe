package rfm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	apperrors "custseg/internal/errors"
	"custseg/pkg/contracts/domain"
)

// DefaultBins is the number of quantile groups used for every score.
const DefaultBins = 5

// Calculator computes RFM values, scores and segments.
type Calculator struct {
	bins   int
	logger *slog.Logger
}

// NewCalculator creates a calculator that scores into the given number of
// quantile bins. A non-positive bins value selects DefaultBins.
func NewCalculator(bins int, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	return &Calculator{
		bins:   bins,
		logger: logger.With("component", "rfm_calculator"),
	}
}

// Bins returns the configured bin count.
func (c *Calculator) Bins() int {
	return c.bins
}

// DefaultAnalysisDate returns one day after the latest invoice date.
func DefaultAnalysisDate(txns []domain.Transaction) time.Time {
	var latest time.Time
	for _, t := range txns {
		if t.InvoiceDate.After(latest) {
			latest = t.InvoiceDate
		}
	}
	return latest.Add(24 * time.Hour)
}

type customerAccumulator struct {
	invoices map[string]struct{}
	monetary decimal.Decimal
	last     time.Time
}

// CalculateRFM aggregates transactions per customer. A zero analysisDate
// selects DefaultAnalysisDate. The result is ordered by CustomerID with
// numeric ids first, compared by value.
func (c *Calculator) CalculateRFM(ctx context.Context, txns []domain.Transaction, analysisDate time.Time) ([]domain.CustomerRFM, error) {
	if err := validateTransactions(txns); err != nil {
		c.logger.ErrorContext(ctx, "input validation failed", "error", err)
		return nil, fmt.Errorf("validate inputs: %w", err)
	}

	if analysisDate.IsZero() {
		analysisDate = DefaultAnalysisDate(txns)
	}

	c.logger.InfoContext(ctx, "Calculating RFM metrics",
		slog.Int("transactions", len(txns)),
		slog.String("analysis_date", analysisDate.Format(time.DateOnly)))

	customers := make(map[string]*customerAccumulator)
	for _, t := range txns {
		acc, ok := customers[t.CustomerID]
		if !ok {
			acc = &customerAccumulator{invoices: make(map[string]struct{})}
			customers[t.CustomerID] = acc
		}
		acc.invoices[t.InvoiceNo] = struct{}{}
		acc.monetary = acc.monetary.Add(decimal.NewFromFloat(t.TotalPrice))
		if t.InvoiceDate.After(acc.last) {
			acc.last = t.InvoiceDate
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(customers))
	for id := range customers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return CompareCustomerIDs(ids[i], ids[j]) < 0 })

	result := make([]domain.CustomerRFM, 0, len(ids))
	for _, id := range ids {
		acc := customers[id]
		if analysisDate.Before(acc.last) {
			return nil, apperrors.NewValidationError(fmt.Sprintf(
				"analysis date %s precedes last purchase %s of customer %s",
				analysisDate.Format(time.DateOnly), acc.last.Format(time.DateTime), id)).
				WithContext("customer_id", id)
		}
		result = append(result, domain.CustomerRFM{
			CustomerID:   id,
			Recency:      int(analysisDate.Sub(acc.last) / (24 * time.Hour)),
			Frequency:    len(acc.invoices),
			Monetary:     acc.monetary.InexactFloat64(),
			LastPurchase: acc.last,
		})
	}

	c.logger.InfoContext(ctx, "RFM metrics calculated", slog.Int("customers", len(result)))
	return result, nil
}

// SegmentCustomers runs CalculateRFM, CalculateScores and segment labeling.
func (c *Calculator) SegmentCustomers(ctx context.Context, txns []domain.Transaction, analysisDate time.Time) ([]domain.ScoredCustomer, error) {
	values, err := c.CalculateRFM(ctx, txns, analysisDate)
	if err != nil {
		return nil, err
	}
	return c.CalculateScores(ctx, values)
}

func validateTransactions(txns []domain.Transaction) error {
	if len(txns) == 0 {
		return apperrors.NewValidationError("no transactions to analyze")
	}

	var missing []string
	seen := make(map[string]bool)
	mark := func(col string) {
		if !seen[col] {
			seen[col] = true
			missing = append(missing, col)
		}
	}
	for _, t := range txns {
		if t.CustomerID == "" {
			mark(domain.ColCustomerID)
		}
		if t.InvoiceNo == "" {
			mark(domain.ColInvoiceNo)
		}
		if t.InvoiceDate.IsZero() {
			mark(domain.ColInvoiceDate)
		}
		// TotalPrice is only set by the cleaner.
		if t.TotalPrice <= 0 {
			mark(domain.ColTotalPrice)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewMissingColumnsError(missing)
	}
	return nil
}

// CompareCustomerIDs orders ids numerically when both parse as numbers,
// places numeric ids before other ids and otherwise compares lexically.
func CompareCustomerIDs(a, b string) int {
	af, aErr := strconv.ParseFloat(a, 64)
	bf, bErr := strconv.ParseFloat(b, 64)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
