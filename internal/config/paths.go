package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Well-known artifact names written by the pipeline.
const (
	CleanedDataFile       = "cleaned_data"
	RFMDataFile           = "rfm_data"
	SegmentResultsFile    = "customer_segmentation_results"
	SegmentSummaryFile    = "segment_summary"
	AnalysisSummaryFile   = "analysis_summary"
	DefaultRawDataFile    = "data.csv"
	DefaultPlotsOutputDir = "plots"
)

// Paths contains all the resolved application paths
type Paths struct {
	BaseDir          string
	DataDir          string
	RawDataDir       string
	ProcessedDataDir string
	ResultsDir       string
	PlotsDir         string
	LogsDir          string
}

// NewPaths resolves the configured directories against baseDir. Absolute
// configured paths are kept as they are.
func NewPaths(cfg PathsConfig, baseDir string) *Paths {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	return &Paths{
		BaseDir:          baseDir,
		DataDir:          resolve(cfg.DataDir),
		RawDataDir:       resolve(cfg.RawDataDir),
		ProcessedDataDir: resolve(cfg.ProcessedDataDir),
		ResultsDir:       resolve(cfg.ResultsDir),
		PlotsDir:         resolve(cfg.PlotsDir),
		LogsDir:          resolve(cfg.LogsDir),
	}
}

// GetPaths resolves the configured directories against the working directory.
func (c *Config) GetPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewPaths(c.Paths, wd), nil
}

// WithResultsDir returns a copy of p whose results directory is dir.
func (p *Paths) WithResultsDir(dir string) *Paths {
	cp := *p
	if filepath.IsAbs(dir) {
		cp.ResultsDir = dir
	} else {
		cp.ResultsDir = filepath.Join(p.BaseDir, dir)
	}
	return &cp
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawDataDir,
		p.ProcessedDataDir,
		p.ResultsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetResultPath returns the path of a results artifact with the given extension.
func (p *Paths) GetResultPath(name, ext string) string {
	return filepath.Join(p.ResultsDir, name+"."+ext)
}

// GetProcessedPath returns the path of a processed-data artifact.
func (p *Paths) GetProcessedPath(name, ext string) string {
	return filepath.Join(p.ProcessedDataDir, name+"."+ext)
}

// GetPlotPath returns the path of a chart inside dir, or inside PlotsDir when dir is empty.
func (p *Paths) GetPlotPath(dir, filename string) string {
	if dir == "" {
		dir = p.PlotsDir
	}
	return filepath.Join(dir, filename)
}

// DataFileCandidates lists, in order, the files probed when no data file is given.
func (p *Paths) DataFileCandidates() []string {
	return []string{
		filepath.Join(p.RawDataDir, DefaultRawDataFile),
		filepath.Join(p.BaseDir, DefaultRawDataFile),
		p.GetProcessedPath(CleanedDataFile, "csv"),
	}
}

// FindDataFile returns the first existing candidate data file.
func (p *Paths) FindDataFile() (string, bool) {
	for _, candidate := range p.DataFileCandidates() {
		if FileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("raw", p.RawDataDir),
			slog.String("processed", p.ProcessedDataDir),
			slog.String("results", p.ResultsDir),
			slog.String("plots", p.PlotsDir),
			slog.String("logs", p.LogsDir),
		))
}

// FileExists checks if a regular file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
