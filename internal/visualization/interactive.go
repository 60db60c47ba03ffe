package visualization

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"custseg/pkg/contracts/domain"
)

const (
	interactiveWidth  = "1200px"
	interactiveHeight = "600px"
	interactiveSymbol = 6
)

// rfmPairs are the 2D projections shown under the 3D scatter.
var rfmPairs = []struct {
	x, y int
}{
	{0, 1},
	{1, 2},
	{0, 2},
}

func rfmTriple(c domain.ScoredCustomer) [3]float64 {
	return [3]float64{float64(c.Recency), float64(c.Frequency), c.Monetary}
}

// interactivePage builds an HTML page with a 3D recency/frequency/monetary
// scatter and the three 2D projections, one series per segment.
func interactivePage(scored []domain.ScoredCustomer) (*components.Page, error) {
	groups := groupBySegment(scored)
	if len(groups) == 0 {
		return nil, fmt.Errorf("no segmented customers")
	}

	initOpts := charts.WithInitializationOpts(opts.Initialization{
		PageTitle: "Interactive RFM Analysis",
		Width:     interactiveWidth,
		Height:    interactiveHeight,
	})

	scatter3D := charts.NewScatter3D()
	scatter3D.SetGlobalOptions(
		initOpts,
		charts.WithTitleOpts(opts.Title{Title: "RFM 3D Scatter"}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: RFMMetricNames[0]}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: RFMMetricNames[1]}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: RFMMetricNames[2]}),
	)
	for _, g := range groups {
		data := make([]opts.Chart3DData, len(g.customers))
		for i, c := range g.customers {
			v := rfmTriple(c)
			data[i] = opts.Chart3DData{
				Name:  c.CustomerID,
				Value: []interface{}{v[0], v[1], v[2]},
			}
		}
		scatter3D.AddSeries(string(g.segment), data)
	}

	page := components.NewPage()
	page.PageTitle = "Interactive RFM Analysis"
	page.AddCharts(scatter3D)

	for _, pair := range rfmPairs {
		xName, yName := RFMMetricNames[pair.x], RFMMetricNames[pair.y]
		scatter := charts.NewScatter()
		scatter.SetGlobalOptions(
			initOpts,
			charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s vs %s", xName, yName)}),
			charts.WithXAxisOpts(opts.XAxis{Name: xName, Type: "value"}),
			charts.WithYAxisOpts(opts.YAxis{Name: yName, Type: "value"}),
		)
		for _, g := range groups {
			data := make([]opts.ScatterData, len(g.customers))
			for i, c := range g.customers {
				v := rfmTriple(c)
				data[i] = opts.ScatterData{
					Name:       c.CustomerID,
					Value:      []interface{}{v[pair.x], v[pair.y]},
					SymbolSize: interactiveSymbol,
				}
			}
			scatter.AddSeries(string(g.segment), data)
		}
		page.AddCharts(scatter)
	}

	return page, nil
}

func writeInteractive(path string, scored []domain.ScoredCustomer) error {
	page, err := interactivePage(scored)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render page: %w", err)
	}
	return f.Close()
}
