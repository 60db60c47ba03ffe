package rfm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	apperrors "custseg/internal/errors"
	"custseg/internal/stats"
	"custseg/pkg/contracts/domain"
)

// Metric names used in binning errors and logs.
const (
	MetricRecency   = "Recency"
	MetricFrequency = "Frequency"
	MetricMonetary  = "Monetary"
)

// CalculateScores bins recency, frequency and monetary into quantile scores
// and labels each customer with its segment. Recency labels run from bins
// down to 1; frequency and monetary labels run from 1 up to bins.
func (c *Calculator) CalculateScores(ctx context.Context, values []domain.CustomerRFM) ([]domain.ScoredCustomer, error) {
	if len(values) == 0 {
		return nil, apperrors.NewValidationError("no customers to score")
	}

	recency := make([]float64, len(values))
	frequency := make([]float64, len(values))
	monetary := make([]float64, len(values))
	for i, v := range values {
		recency[i] = float64(v.Recency)
		frequency[i] = float64(v.Frequency)
		monetary[i] = v.Monetary
	}

	rBins, err := qcut(MetricRecency, recency, c.bins)
	if err != nil {
		c.logger.ErrorContext(ctx, "recency binning failed", "error", err)
		return nil, err
	}
	fBins, err := qcut(MetricFrequency, rankFirst(frequency), c.bins)
	if err != nil {
		c.logger.ErrorContext(ctx, "frequency binning failed", "error", err)
		return nil, err
	}
	mBins, err := qcut(MetricMonetary, rankFirst(monetary), c.bins)
	if err != nil {
		c.logger.ErrorContext(ctx, "monetary binning failed", "error", err)
		return nil, err
	}

	scored := make([]domain.ScoredCustomer, len(values))
	for i, v := range values {
		r := c.bins - rBins[i]
		f := fBins[i] + 1
		m := mBins[i] + 1
		scored[i] = domain.ScoredCustomer{
			CustomerRFM: v,
			RScore:      r,
			FScore:      f,
			MScore:      m,
			RFMScore:    fmt.Sprintf("%d%d%d", r, f, m),
			Segment:     Segment(r, f, m),
		}
	}

	c.logger.InfoContext(ctx, "RFM scores calculated",
		slog.Int("customers", len(scored)),
		slog.Int("bins", c.bins))
	return scored, nil
}

// qcut assigns every value to a zero-based quantile bin. Intervals are
// closed on the right and the lowest edge belongs to the first bin.
func qcut(metric string, xs []float64, bins int) ([]int, error) {
	edges := stats.QuantileEdges(xs, bins)
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			return nil, apperrors.NewBinningError(metric, bins, edges)
		}
	}

	upper := edges[1:]
	out := make([]int, len(xs))
	for i, x := range xs {
		idx := sort.SearchFloat64s(upper, x)
		if idx >= bins {
			idx = bins - 1
		}
		out[i] = idx
	}
	return out, nil
}

// rankFirst returns 1-based ranks where ties are ranked in input order.
func rankFirst(xs []float64) []float64 {
	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return xs[order[a]] < xs[order[b]] })

	ranks := make([]float64, len(xs))
	for rank, idx := range order {
		ranks[idx] = float64(rank + 1)
	}
	return ranks
}
