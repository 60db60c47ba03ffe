package visualization

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"

	"custseg/pkg/contracts/domain"
)

// RFMMetricNames are the correlation matrix axes, in order.
var RFMMetricNames = []string{"Recency", "Frequency", "Monetary"}

// CorrelationMatrix returns the Pearson correlation of recency, frequency and
// monetary. Entries involving a constant column are NaN.
func CorrelationMatrix(values []domain.CustomerRFM) *mat.SymDense {
	recency, frequency, monetary := rfmColumns(values)
	data := mat.NewDense(len(values), 3, nil)
	for i := range values {
		data.Set(i, 0, recency[i])
		data.Set(i, 1, frequency[i])
		data.Set(i, 2, monetary[i])
	}

	corr := mat.NewSymDense(3, nil)
	stat.CorrelationMatrix(corr, data, nil)
	return corr
}

// correlationGrid adapts a symmetric matrix to plotter.GridXYZ.
type correlationGrid struct {
	m *mat.SymDense
}

func (g correlationGrid) Dims() (c, r int)   { n := g.m.SymmetricDim(); return n, n }
func (g correlationGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g correlationGrid) X(c int) float64    { return float64(c) }
func (g correlationGrid) Y(r int) float64    { return float64(r) }

func correlationFigure(values []domain.CustomerRFM) (*figure, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("correlation needs at least two customers, got %d", len(values))
	}
	corr := CorrelationMatrix(values)
	grid := correlationGrid{m: corr}

	p := newPlot("RFM Metrics Correlation Analysis", "", "")
	heat := plotter.NewHeatMap(grid, palette.Heat(64, 1))
	heat.Min = -1
	heat.Max = 1
	heat.NaN = color.Gray{Y: 200}
	p.Add(heat)

	n := corr.SymmetricDim()
	labels := plotter.XYLabels{}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			v := corr.At(r, c)
			if math.IsNaN(v) {
				labels.Labels = append(labels.Labels, "n/a")
			} else {
				labels.Labels = append(labels.Labels, fmt.Sprintf("%.3f", v))
			}
		}
	}
	text, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("correlation labels: %w", err)
	}
	p.Add(text)

	p.NominalX(RFMMetricNames...)
	p.NominalY(RFMMetricNames...)

	return &figure{
		width:  correlationSizeW,
		height: correlationSizeH,
		plots:  [][]*plot.Plot{{p}},
	}, nil
}
