package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default().Paths
	cfg.PlotsDir = filepath.Join(base, "elsewhere", "plots")

	p := NewPaths(cfg, base)

	assert.Equal(t, filepath.Join(base, "data", "raw"), p.RawDataDir)
	assert.Equal(t, filepath.Join(base, "data", "results"), p.ResultsDir)
	assert.Equal(t, cfg.PlotsDir, p.PlotsDir, "absolute paths are kept")
	assert.Equal(t, filepath.Join(p.ResultsDir, "rfm_data.csv"), p.GetResultPath(RFMDataFile, "csv"))
	assert.Equal(t, filepath.Join(p.ProcessedDataDir, "cleaned_data.xlsx"), p.GetProcessedPath(CleanedDataFile, "xlsx"))
	assert.Equal(t, filepath.Join(p.PlotsDir, "a.png"), p.GetPlotPath("", "a.png"))
	assert.Equal(t, filepath.Join("out", "a.png"), p.GetPlotPath("out", "a.png"))
}

func TestPaths_WithResultsDir(t *testing.T) {
	base := t.TempDir()
	p := NewPaths(Default().Paths, base)

	custom := p.WithResultsDir("custom")

	assert.Equal(t, filepath.Join(base, "custom"), custom.ResultsDir)
	assert.Equal(t, filepath.Join(base, "data", "results"), p.ResultsDir, "original untouched")
}

func TestPaths_EnsureDirectories(t *testing.T) {
	base := t.TempDir()
	p := NewPaths(Default().Paths, base)

	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.DataDir, p.RawDataDir, p.ProcessedDataDir, p.ResultsDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPaths_FindDataFile(t *testing.T) {
	base := t.TempDir()
	p := NewPaths(Default().Paths, base)

	_, ok := p.FindDataFile()
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(base, "data.csv"), []byte("x"), 0644))
	found, ok := p.FindDataFile()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(base, "data.csv"), found)

	require.NoError(t, os.MkdirAll(p.RawDataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(p.RawDataDir, "data.csv"), []byte("x"), 0644))
	found, ok = p.FindDataFile()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(p.RawDataDir, "data.csv"), found, "raw data dir has priority")
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}
