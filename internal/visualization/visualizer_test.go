package visualization

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custseg/internal/dataprocessing"
	apperrors "custseg/internal/errors"
	"custseg/internal/rfm"
	"custseg/internal/shared/testutil"
	"custseg/pkg/contracts/domain"
)

const testDPI = 30

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleData(t *testing.T) *Data {
	t.Helper()
	ctx := context.Background()
	path := testutil.WriteCSV(t, "data.csv", testutil.TransactionHeader, testutil.SampleTransactionRows()...)
	ds, err := dataprocessing.NewLoader("", nil).Load(ctx, path)
	require.NoError(t, err)
	cleaned, _, err := dataprocessing.NewCleaner(dataprocessing.DefaultCleanOptions(), nil).CleanAll(ctx, ds.Transactions)
	require.NoError(t, err)
	scored, err := rfm.NewCalculator(2, nil).SegmentCustomers(ctx, cleaned, time.Time{})
	require.NoError(t, err)
	return &Data{
		RFM:          rfm.ScoredValues(scored),
		Segments:     scored,
		Transactions: cleaned,
	}
}

func TestVisualizer_RenderAll(t *testing.T) {
	dir := t.TempDir()
	viz := NewVisualizer(Options{DPI: testDPI}, nil)

	paths, err := viz.RenderAll(context.Background(), dir, sampleData(t))
	require.NoError(t, err)
	require.Len(t, paths, len(ChartKinds()))

	for _, kind := range ChartKinds() {
		name, ok := ChartFile(kind)
		require.True(t, ok)
		path := filepath.Join(dir, name)
		assert.Contains(t, paths, path)

		content, err := os.ReadFile(path)
		require.NoError(t, err, kind)
		if kind == ChartInteractive {
			assert.Contains(t, string(content), "echarts")
			assert.Contains(t, string(content), "Hibernating")
		} else {
			assert.True(t, bytes.HasPrefix(content, pngMagic), "%s is not a PNG", name)
		}
	}
}

func TestVisualizer_RenderSelected(t *testing.T) {
	dir := t.TempDir()
	viz := NewVisualizer(Options{DPI: testDPI}, nil)

	paths, err := viz.RenderAll(context.Background(), dir, sampleData(t), ChartGeographic)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, GeographicFile)}, paths)

	_, err = os.Stat(filepath.Join(dir, DistributionsFile))
	assert.True(t, os.IsNotExist(err))
}

func TestVisualizer_RenderErrors(t *testing.T) {
	viz := NewVisualizer(Options{DPI: testDPI}, nil)
	ctx := context.Background()

	_, err := viz.Render(ctx, "pie", t.TempDir(), &Data{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	for _, kind := range ChartKinds() {
		_, err := viz.Render(ctx, kind, t.TempDir(), &Data{})
		require.Error(t, err, kind)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender), kind)
	}
}

func TestMonthlySeries(t *testing.T) {
	series := MonthlySeries(sampleData(t).Transactions)
	require.Len(t, series, 3)

	assert.Equal(t, "2010-12", series[0].Month)
	assert.InDelta(t, 190.82, series[0].Sales, 1e-9)
	assert.Equal(t, 5, series[0].Transactions)
	assert.Equal(t, 3, series[0].NewCustomers)

	assert.Equal(t, "2011-01", series[1].Month)
	assert.Equal(t, 0, series[1].NewCustomers)
	assert.InDelta(t, 25.5, series[1].AvgLineTotal, 1e-9)

	assert.Equal(t, "2011-12", series[2].Month)
	assert.Equal(t, 1, series[2].NewCustomers)
}

func TestTopCountries(t *testing.T) {
	bySales, byCustomers := TopCountries(sampleData(t).Transactions, 10)

	require.Len(t, bySales, 3)
	assert.Equal(t, "United Kingdom", bySales[0].Country)
	assert.InDelta(t, 126.32, bySales[0].Value, 1e-9)
	assert.Equal(t, "France", bySales[1].Country)
	assert.Equal(t, "Iceland", bySales[2].Country)

	require.Len(t, byCustomers, 3)
	assert.Equal(t, CountryStat{Country: "United Kingdom", Value: 2}, byCustomers[0])
	assert.Equal(t, CountryStat{Country: "France", Value: 1}, byCustomers[1])
	assert.Equal(t, CountryStat{Country: "Iceland", Value: 1}, byCustomers[2])

	top, _ := TopCountries(sampleData(t).Transactions, 1)
	assert.Len(t, top, 1)
}

func TestStandardizedSegmentMeans(t *testing.T) {
	segments, z := StandardizedSegmentMeans(sampleData(t).Segments)
	assert.Equal(t, []domain.Segment{domain.SegmentHibernating, domain.SegmentNeedAttention}, segments)

	for k := range z {
		require.Len(t, z[k], 2)
		assert.InDelta(t, 0, z[k][0]+z[k][1], 1e-9)
	}
	assert.InDelta(t, -0.70710678, z[0][0], 1e-6)
	assert.InDelta(t, 0.70710678, z[1][1], 1e-6)

	single := []domain.ScoredCustomer{{Segment: domain.SegmentLost, CustomerRFM: domain.CustomerRFM{Frequency: 1}}}
	_, z = StandardizedSegmentMeans(single)
	assert.Equal(t, []float64{0}, z[0])
}

func TestCorrelationMatrix(t *testing.T) {
	values := []domain.CustomerRFM{
		{Recency: 1, Frequency: 10, Monetary: 100},
		{Recency: 2, Frequency: 8, Monetary: 200},
		{Recency: 3, Frequency: 6, Monetary: 300},
	}
	corr := CorrelationMatrix(values)
	assert.InDelta(t, 1.0, corr.At(0, 0), 1e-9)
	assert.InDelta(t, -1.0, corr.At(0, 1), 1e-9)
	assert.InDelta(t, 1.0, corr.At(0, 2), 1e-9)
	assert.InDelta(t, corr.At(1, 2), corr.At(2, 1), 1e-12)
}

func TestNewPieChart(t *testing.T) {
	_, err := newPieChart([]float64{1, 2}, []string{"a"})
	assert.Error(t, err)
	_, err = newPieChart([]float64{0, 0}, []string{"a", "b"})
	assert.Error(t, err)
	_, err = newPieChart([]float64{-1, 2}, []string{"a", "b"})
	assert.Error(t, err)

	pie, err := newPieChart([]float64{3, 1}, []string{"a", "b"})
	require.NoError(t, err)
	xmin, xmax, ymin, ymax := pie.DataRange()
	assert.Equal(t, []float64{-1, 1, -1, 1}, []float64{xmin, xmax, ymin, ymax})
}

func TestConfigureFonts_FallsBackToBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("no fonts here"), 0644))

	assert.Equal(t, BuiltinFamily, ConfigureFonts([]string{dir, filepath.Join(dir, "missing")}, nil))
	assert.Equal(t, BuiltinFamily, ActiveFontFamily())
}

func TestConfigureFonts_SkipsUnreadableFont(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DejaVuSans.ttf"), []byte("not a font"), 0644))

	assert.Equal(t, BuiltinFamily, ConfigureFonts([]string{dir}, nil))
}

func TestFindFontFile(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "truetype", "wqy")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "WQY-MicroHei.ttc"), []byte{}, 0644))

	path, ok := findFontFile([]string{dir}, []string{"wqy-microhei.ttc"})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(nested, "WQY-MicroHei.ttc"), path)

	_, ok = findFontFile([]string{dir}, []string{"simhei.ttf"})
	assert.False(t, ok)
}
