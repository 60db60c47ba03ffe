// Package rfm aggregates cleaned transactions into per-customer recency,
// frequency and monetary values, scores them by quantile and labels every
// customer with one of the fixed segments.
//
// Scoring follows quantile binning semantics: recency is binned on its raw
// values with inverted labels, while frequency and monetary are binned on
// their first-occurrence ranks so that ties never collapse bin edges.
// Segment assignment is a pure function of the three scores.
//
// Usage:
//
//	calc := rfm.NewCalculator(5, logger)
//	scored, err := calc.SegmentCustomers(ctx, txns, time.Time{})
//	summary := rfm.SummarizeSegments(scored)
package rfm
