package operations

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// ProgressTracker shows step progress of a pipeline run on a terminal
type ProgressTracker struct {
	bar       *progressbar.ProgressBar
	total     int
	current   int
	startTime time.Time
	mu        sync.Mutex
}

// NewProgressTracker creates a tracker for total steps writing to w. The bar
// is only drawn when visible is true.
func NewProgressTracker(w io.Writer, total int, visible bool) *ProgressTracker {
	if w == nil {
		w = io.Discard
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	return &ProgressTracker{
		bar:       bar,
		total:     total,
		startTime: time.Now(),
	}
}

// StderrIsTerminal reports whether stderr is attached to a terminal.
func StderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Begin shows the name of the step about to run
func (p *ProgressTracker) Begin(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Describe(name)
}

// Increment advances the tracker by one finished step
func (p *ProgressTracker) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	_ = p.bar.Add(1)
}

// Finish completes the bar
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}

// GetProgress returns the finished and total step counts and the percentage done
func (p *ProgressTracker) GetProgress() (current, total int, percentage float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100
	}
	return p.current, p.total, percentage
}

// IsComplete returns true once every step has finished
func (p *ProgressTracker) IsComplete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current >= p.total
}

// GetElapsedTime returns the elapsed time since start
func (p *ProgressTracker) GetElapsedTime() time.Duration {
	return time.Since(p.startTime)
}
