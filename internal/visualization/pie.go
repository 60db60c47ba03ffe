package visualization

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart draws labelled wedges proportional to Values, starting at twelve
// o'clock and running clockwise.
type pieChart struct {
	Values []float64
	Labels []string
}

func newPieChart(values []float64, labels []string) (*pieChart, error) {
	if len(values) != len(labels) {
		return nil, fmt.Errorf("pie chart has %d values and %d labels", len(values), len(labels))
	}
	total := 0.0
	for _, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid pie value %v", v)
		}
		total += v
	}
	if total == 0 {
		return nil, fmt.Errorf("pie chart has no data")
	}
	return &pieChart{Values: values, Labels: labels}, nil
}

// Plot implements plot.Plotter.
func (pc *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	total := 0.0
	for _, v := range pc.Values {
		total += v
	}

	size := c.Size()
	radius := vg.Length(math.Min(float64(size.X), float64(size.Y))) * 0.35
	center := c.Center()

	sty := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(9)),
		XAlign:  text.XCenter,
		YAlign:  text.YCenter,
		Handler: plot.DefaultTextHandler,
	}

	start := math.Pi / 2
	for i, v := range pc.Values {
		if v == 0 {
			continue
		}
		sweep := -2 * math.Pi * v / total

		var path vg.Path
		path.Move(center)
		path.Arc(center, radius, start, sweep)
		path.Close()
		c.SetColor(plotutil.Color(i))
		c.Fill(path)

		c.SetColor(color.White)
		c.SetLineWidth(vg.Points(1))
		c.Stroke(path)

		mid := start + sweep/2
		at := vg.Point{
			X: center.X + radius*1.3*vg.Length(math.Cos(mid)),
			Y: center.Y + radius*1.3*vg.Length(math.Sin(mid)),
		}
		c.FillText(sty, at, fmt.Sprintf("%s\n%.1f%%", pc.Labels[i], v/total*100))

		start += sweep
	}
}

// DataRange implements plot.DataRanger so the wedges sit in a square box.
func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1, 1, -1, 1
}
