package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custseg/internal/config"
)

func TestInitializeTelemetry_Disabled(t *testing.T) {
	tel, err := InitializeTelemetry(config.TelemetryConfig{Enabled: false}, "test", nil)
	require.NoError(t, err)

	assert.Nil(t, tel.TracerProvider)
	assert.Nil(t, tel.MeterProvider)
	require.NotNil(t, tel.Metrics)

	ctx, span := tel.Tracer.Start(context.Background(), "noop")
	tel.RecordStage(ctx, "load", time.Millisecond, nil)
	span.End()

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitializeTelemetry_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := config.TelemetryConfig{
		Enabled:     true,
		ServiceName: "custseg-test",
		TraceFile:   filepath.Join(dir, "traces.json"),
		MetricsFile: filepath.Join(dir, "metrics", "custseg.prom"),
		SampleRatio: 1.0,
	}

	tel, err := InitializeTelemetry(cfg, "0.0.1", nil)
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	require.NotNil(t, tel.MeterProvider)

	ctx, span := tel.Tracer.Start(context.Background(), "stage.clean")
	tel.RecordStage(ctx, "clean", 20*time.Millisecond, nil)
	tel.RecordStage(ctx, "rfm", 5*time.Millisecond, errors.New("degenerate"))
	RecordError(ctx, errors.New("degenerate"))
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))

	traces, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(traces), "stage.clean")

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "custseg_stage_runs")
	assert.Contains(t, string(metrics), `stage="clean"`)
	assert.Contains(t, string(metrics), `status="failure"`)
}

func TestNoopTelemetry(t *testing.T) {
	tel := NoopTelemetry()
	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Metrics)
	assert.NoError(t, tel.Shutdown(context.Background()))
}
