package visualization

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"custseg/pkg/contracts/domain"
)

const (
	timeSeriesW = 16 * vg.Inch
	timeSeriesH = 12 * vg.Inch
	monthLayout = "2006-01"
)

// MonthlyStats aggregates transactions per calendar month.
type MonthlyStats struct {
	Month        string
	Sales        float64
	Transactions int
	NewCustomers int
	AvgLineTotal float64
}

// MonthlySeries aggregates sales, line count, first-time customers and the
// average line total for every month present in txns, in calendar order.
func MonthlySeries(txns []domain.Transaction) []MonthlyStats {
	type acc struct {
		sales decimal.Decimal
		lines int
		fresh int
	}
	months := make(map[string]*acc)
	get := func(m string) *acc {
		a, ok := months[m]
		if !ok {
			a = &acc{}
			months[m] = a
		}
		return a
	}

	first := make(map[string]string)
	for _, t := range txns {
		m := t.InvoiceDate.Format(monthLayout)
		a := get(m)
		a.sales = a.sales.Add(decimal.NewFromFloat(t.TotalPrice))
		a.lines++
		if prev, ok := first[t.CustomerID]; !ok || m < prev {
			first[t.CustomerID] = m
		}
	}
	for _, m := range first {
		get(m).fresh++
	}

	keys := make([]string, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Strings(keys)

	out := make([]MonthlyStats, len(keys))
	for i, m := range keys {
		a := months[m]
		sales := a.sales.InexactFloat64()
		out[i] = MonthlyStats{
			Month:        m,
			Sales:        sales,
			Transactions: a.lines,
			NewCustomers: a.fresh,
			AvgLineTotal: sales / float64(a.lines),
		}
	}
	return out
}

func timeSeriesFigure(txns []domain.Transaction) (*figure, error) {
	series := MonthlySeries(txns)
	if len(series) == 0 {
		return nil, fmt.Errorf("no transactions to chart")
	}

	months := make([]string, len(series))
	for i, s := range series {
		months[i] = s.Month
	}

	panels := []struct {
		title, yLabel string
		value         func(MonthlyStats) float64
	}{
		{"Monthly Sales Trend", "Sales", func(s MonthlyStats) float64 { return s.Sales }},
		{"Monthly Transaction Count", "Transactions", func(s MonthlyStats) float64 { return float64(s.Transactions) }},
		{"Monthly New Customers", "New customers", func(s MonthlyStats) float64 { return float64(s.NewCustomers) }},
		{"Monthly Average Order Value", "Average line total", func(s MonthlyStats) float64 { return s.AvgLineTotal }},
	}

	plots := make([]*plot.Plot, len(panels))
	for i, panel := range panels {
		xys := make(plotter.XYs, len(series))
		for j, s := range series {
			xys[j] = plotter.XY{X: float64(j), Y: panel.value(s)}
		}
		p := newPlot(panel.title, "Year-Month", panel.yLabel)
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", panel.title, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		points.GlyphStyle.Color = plotutil.Color(i)
		p.Add(line, points, plotter.NewGrid())
		p.NominalX(months...)
		rotateXTicks(p)
		plots[i] = p
	}

	return &figure{
		title:  "Time Series Analysis",
		width:  timeSeriesW,
		height: timeSeriesH,
		plots:  [][]*plot.Plot{plots[:2], plots[2:]},
	}, nil
}
