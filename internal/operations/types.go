package operations

import (
	"time"
)

// Pipeline step identifiers
const (
	StepIDLoad      = "load"
	StepIDClean     = "clean"
	StepIDRFM       = "rfm"
	StepIDSegment   = "segment"
	StepIDExport    = "export"
	StepIDStore     = "store"
	StepIDVisualize = "visualize"
)

// Pipeline step names
const (
	StepNameLoad      = "Data Loading"
	StepNameClean     = "Data Cleaning"
	StepNameRFM       = "RFM Calculation"
	StepNameSegment   = "Customer Segmentation"
	StepNameExport    = "Result Export"
	StepNameStore     = "Result Storage"
	StepNameVisualize = "Chart Rendering"
)

// Default timeouts
const (
	DefaultStepTimeout      = 30 * time.Minute
	DefaultStoreTimeout     = 5 * time.Minute
	DefaultVisualizeTimeout = 15 * time.Minute
)

// StepTimeout returns the execution timeout of a step.
func StepTimeout(id string) time.Duration {
	switch id {
	case StepIDStore:
		return DefaultStoreTimeout
	case StepIDVisualize:
		return DefaultVisualizeTimeout
	default:
		return DefaultStepTimeout
	}
}
