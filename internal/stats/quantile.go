// Package stats holds the small numeric helpers shared by cleaning, scoring
// and charting: linear-interpolation quantiles and descriptive summaries.
package stats

import (
	"math"
	"sort"
)

// Quantile returns the q-quantile of xs using linear interpolation between
// closest ranks (Hyndman-Fan type 7). xs need not be sorted. It returns NaN
// for an empty input.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return SortedQuantile(sorted, q)
}

// SortedQuantile is Quantile for input already sorted in ascending order.
func SortedQuantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// QuantileEdges returns the bins+1 edges at 0, 1/bins, ..., 1.
func QuantileEdges(xs []float64, bins int) []float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	edges := make([]float64, bins+1)
	for i := 0; i <= bins; i++ {
		edges[i] = SortedQuantile(sorted, float64(i)/float64(bins))
	}
	return edges
}

// Round rounds x to the given number of decimals, half away from zero.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
