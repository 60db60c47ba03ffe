package visualization

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"custseg/internal/stats"
	"custseg/pkg/contracts/domain"
)

const (
	histogramBins    = 50
	boxPlotQuantile  = 0.95
	boxPlotWidth     = vg.Length(60)
	distributionsW   = 18 * vg.Inch
	distributionsH   = 12 * vg.Inch
	correlationSizeW = 10 * vg.Inch
	correlationSizeH = 8 * vg.Inch
)

// rfmColumns extracts the recency, frequency and monetary columns.
func rfmColumns(values []domain.CustomerRFM) (recency, frequency, monetary []float64) {
	recency = make([]float64, len(values))
	frequency = make([]float64, len(values))
	monetary = make([]float64, len(values))
	for i, v := range values {
		recency[i] = float64(v.Recency)
		frequency[i] = float64(v.Frequency)
		monetary[i] = v.Monetary
	}
	return recency, frequency, monetary
}

// distributionsFigure lays out histograms of R, F and M on the top row and
// box plots on the bottom row. The monetary box plot only shows values up to
// the 95% quantile.
func distributionsFigure(values []domain.CustomerRFM) (*figure, error) {
	recency, frequency, monetary := rfmColumns(values)

	histograms := []struct {
		title, xLabel string
		xs            []float64
	}{
		{"Recency Distribution", "Recency (days since last purchase)", recency},
		{"Frequency Distribution", "Frequency (transactions)", frequency},
		{"Monetary Distribution", "Monetary (total spent)", monetary},
	}

	limit := stats.Quantile(monetary, boxPlotQuantile)
	trimmed := make([]float64, 0, len(monetary))
	for _, m := range monetary {
		if m <= limit {
			trimmed = append(trimmed, m)
		}
	}
	boxes := []struct {
		title string
		xs    []float64
	}{
		{"Recency Box Plot", recency},
		{"Frequency Box Plot", frequency},
		{"Monetary Box Plot (95% quantile)", trimmed},
	}

	top := make([]*plot.Plot, len(histograms))
	for i, h := range histograms {
		p := newPlot(h.title, h.xLabel, "Customers")
		hist, err := plotter.NewHist(plotter.Values(h.xs), histogramBins)
		if err != nil {
			return nil, fmt.Errorf("%s histogram: %w", h.title, err)
		}
		hist.FillColor = plotutil.Color(i)
		p.Add(hist)
		top[i] = p
	}

	bottom := make([]*plot.Plot, len(boxes))
	for i, b := range boxes {
		p := newPlot(b.title, "", "")
		box, err := plotter.NewBoxPlot(boxPlotWidth, 0, plotter.Values(b.xs))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.title, err)
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
		p.HideX()
		bottom[i] = p
	}

	return &figure{
		title:  "RFM Metrics Distribution Analysis",
		width:  distributionsW,
		height: distributionsH,
		plots:  [][]*plot.Plot{top, bottom},
	}, nil
}
