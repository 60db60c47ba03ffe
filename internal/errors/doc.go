// Package errors defines the typed AppError used across the segmentation
// pipeline. Every fatal condition (missing input file, missing columns,
// unparsable dates, degenerate quantile binning) surfaces as an *AppError
// so the CLI can report it with a stable type prefix.
package errors
