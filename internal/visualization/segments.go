package visualization

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"custseg/pkg/contracts/domain"
)

const (
	segmentsW   = 16 * vg.Inch
	segmentsH   = 12 * vg.Inch
	barWidth    = vg.Length(14)
	scatterSize = vg.Length(2.5)
)

// segmentGroup collects the customers of one segment.
type segmentGroup struct {
	segment   domain.Segment
	customers []domain.ScoredCustomer
}

// groupBySegment returns segments ordered by customer count descending, then name.
func groupBySegment(scored []domain.ScoredCustomer) []segmentGroup {
	index := make(map[domain.Segment]int)
	var groups []segmentGroup
	for _, s := range scored {
		i, ok := index[s.Segment]
		if !ok {
			i = len(groups)
			index[s.Segment] = i
			groups = append(groups, segmentGroup{segment: s.Segment})
		}
		groups[i].customers = append(groups[i].customers, s)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].customers) != len(groups[j].customers) {
			return len(groups[i].customers) > len(groups[j].customers)
		}
		return groups[i].segment < groups[j].segment
	})
	return groups
}

// StandardizedSegmentMeans returns, per segment in groups order, the mean
// R, F and M standardized across segments: (mean - mean of means) / sample
// std of means. Metrics with fewer than two segments or zero spread are 0.
func StandardizedSegmentMeans(scored []domain.ScoredCustomer) (segments []domain.Segment, z [3][]float64) {
	groups := groupBySegment(scored)
	var means [3][]float64
	for _, g := range groups {
		segments = append(segments, g.segment)
		var r, f, m float64
		for _, c := range g.customers {
			r += float64(c.Recency)
			f += float64(c.Frequency)
			m += c.Monetary
		}
		n := float64(len(g.customers))
		means[0] = append(means[0], r/n)
		means[1] = append(means[1], f/n)
		means[2] = append(means[2], m/n)
	}

	for k := range means {
		z[k] = make([]float64, len(means[k]))
		if len(means[k]) < 2 {
			continue
		}
		mu, sd := stat.MeanStdDev(means[k], nil)
		if sd == 0 {
			continue
		}
		for i, v := range means[k] {
			z[k][i] = (v - mu) / sd
		}
	}
	return segments, z
}

func segmentNames(segments []domain.Segment) []string {
	names := make([]string, len(segments))
	for i, s := range segments {
		names[i] = string(s)
	}
	return names
}

func segmentsFigure(scored []domain.ScoredCustomer) (*figure, error) {
	groups := groupBySegment(scored)
	if len(groups) == 0 {
		return nil, fmt.Errorf("no segmented customers")
	}

	// Share of customers per segment.
	counts := make([]float64, len(groups))
	labels := make([]string, len(groups))
	for i, g := range groups {
		counts[i] = float64(len(g.customers))
		labels[i] = string(g.segment)
	}
	share := newPlot("Customer Segment Distribution", "", "")
	pie, err := newPieChart(counts, labels)
	if err != nil {
		return nil, err
	}
	share.Add(pie)
	share.HideAxes()

	// Standardized R, F, M means per segment.
	segments, z := StandardizedSegmentMeans(scored)
	means := newPlot("Average RFM by Segment (Standardized)", "Customer Segment", "Standardized mean")
	for k, name := range RFMMetricNames {
		bars, err := plotter.NewBarChart(plotter.Values(z[k]), barWidth)
		if err != nil {
			return nil, fmt.Errorf("standardized %s bars: %w", name, err)
		}
		bars.Color = plotutil.Color(k)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(k-1) * barWidth
		means.Add(bars)
		means.Legend.Add(name, bars)
	}
	means.Legend.Top = true
	means.NominalX(segmentNames(segments)...)
	rotateXTicks(means)
	means.Add(plotter.NewGrid())

	// Revenue per segment, largest first.
	type revenue struct {
		segment domain.Segment
		total   float64
	}
	revenues := make([]revenue, len(groups))
	for i, g := range groups {
		revenues[i].segment = g.segment
		for _, c := range g.customers {
			revenues[i].total += c.Monetary
		}
	}
	sort.SliceStable(revenues, func(i, j int) bool { return revenues[i].total > revenues[j].total })
	totals := make(plotter.Values, len(revenues))
	revenueNames := make([]string, len(revenues))
	for i, r := range revenues {
		totals[i] = r.total
		revenueNames[i] = string(r.segment)
	}
	revenuePlot := newPlot("Revenue Contribution by Segment", "Customer Segment", "Revenue")
	revenueBars, err := plotter.NewBarChart(totals, barWidth*2)
	if err != nil {
		return nil, fmt.Errorf("revenue bars: %w", err)
	}
	revenueBars.Color = plotutil.Color(3)
	revenuePlot.Add(revenueBars)
	revenuePlot.NominalX(revenueNames...)
	rotateXTicks(revenuePlot)

	// Frequency against monetary, one colour per segment.
	scatterPlot := newPlot("Customer Segment Scatter Plot", "Frequency (transactions)", "Monetary (total spent)")
	for i, g := range groups {
		xys := make(plotter.XYs, len(g.customers))
		for j, c := range g.customers {
			xys[j] = plotter.XY{X: float64(c.Frequency), Y: c.Monetary}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("%s scatter: %w", g.segment, err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Radius = scatterSize
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		scatterPlot.Add(sc)
		scatterPlot.Legend.Add(string(g.segment), sc)
	}
	scatterPlot.Legend.Top = true

	return &figure{
		title:  "Customer Segmentation Analysis",
		width:  segmentsW,
		height: segmentsH,
		plots: [][]*plot.Plot{
			{share, means},
			{revenuePlot, scatterPlot},
		},
	}, nil
}
