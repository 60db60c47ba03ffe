package operations

import (
	"sync"
	"time"

	"custseg/internal/dataprocessing"
	"custseg/internal/rfm"
	"custseg/pkg/contracts/domain"
)

// RunStatus represents the overall status of a pipeline run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState holds the status of a pipeline run and the data passed between
// its steps. Data fields are written by the step that produces them and only
// read by later steps.
type RunState struct {
	mu sync.RWMutex

	ID        string                `json:"id"`
	Status    RunStatus             `json:"status"`
	StartTime time.Time             `json:"start_time"`
	EndTime   *time.Time            `json:"end_time,omitempty"`
	Steps     map[string]*StepState `json:"steps"`
	Error     error                 `json:"-"`

	Options Options `json:"-"`

	Dataset       *dataprocessing.Dataset         `json:"-"`
	Cleaned       []domain.Transaction            `json:"-"`
	Cleaning      *dataprocessing.CleaningSummary `json:"-"`
	AnalysisDate  time.Time                       `json:"-"`
	RFM           []domain.CustomerRFM            `json:"-"`
	Scored        []domain.ScoredCustomer         `json:"-"`
	Summaries     []domain.SegmentSummary         `json:"-"`
	Insights      rfm.Insights                    `json:"-"`
	ExportedFiles map[string][]string             `json:"-"`
	Charts        []string                        `json:"-"`
}

// NewRunState creates a new run state
func NewRunState(id string, opts Options) *RunState {
	return &RunState{
		ID:            id,
		Status:        RunStatusPending,
		StartTime:     time.Now(),
		Steps:         make(map[string]*StepState),
		Options:       opts,
		ExportedFiles: make(map[string][]string),
	}
}

// Start marks the run as running
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (r *RunState) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Error = err
}

// Cancel marks the run as cancelled
func (r *RunState) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCancelled
}

// GetStatus returns the current run status.
func (r *RunState) GetStatus() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

// GetStep returns the state of a specific step
func (r *RunState) GetStep(id string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Steps[id]
}

// SetStep updates the state of a specific step
func (r *RunState) SetStep(id string, state *StepState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Steps[id] = state
}

// AddExported records the files written for one artifact.
func (r *RunState) AddExported(artifact string, paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ExportedFiles[artifact] = append(r.ExportedFiles[artifact], paths...)
}

// Elapsed returns the run duration so far.
func (r *RunState) Elapsed() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}
