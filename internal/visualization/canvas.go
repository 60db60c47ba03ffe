package visualization

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	titleHeight  = vg.Length(36)
	titleSize    = vg.Length(16)
	tickRotation = math.Pi / 4
)

// figure is a titled grid of plots rendered to one PNG.
type figure struct {
	title  string
	width  vg.Length
	height vg.Length
	plots  [][]*plot.Plot
}

// save renders the figure at dpi and writes it to path.
func (f *figure) save(path string, dpi int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}

	img := vgimg.NewWith(vgimg.UseWH(f.width, f.height), vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))
	dc := draw.New(img)

	body := dc
	if f.title != "" {
		sty := text.Style{
			Color:   color.Black,
			Font:    font.From(plot.DefaultFont, titleSize),
			XAlign:  text.XCenter,
			YAlign:  text.YTop,
			Handler: plot.DefaultTextHandler,
		}
		top := vg.Point{X: dc.Center().X, Y: dc.Max.Y - vg.Points(8)}
		dc.FillText(sty, top, f.title)
		body = draw.Crop(dc, 0, 0, 0, -titleHeight)
	}

	rows := len(f.plots)
	cols := 0
	for _, row := range f.plots {
		if len(row) > cols {
			cols = len(row)
		}
	}
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(f.plots, tiles, body)
	for j := range f.plots {
		for i, p := range f.plots[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return out.Close()
}

// newPlot creates a plot with a title and axis labels.
func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// rotateXTicks tilts category labels so long names do not overlap.
func rotateXTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = tickRotation
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}
