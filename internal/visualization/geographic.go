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
	geographicW  = 16 * vg.Inch
	geographicH  = 6 * vg.Inch
	topCountries = 10
)

// CountryStat is one country's value in a ranking.
type CountryStat struct {
	Country string
	Value   float64
}

// TopCountries ranks countries by total sales and by unique customers,
// keeping the n largest of each. Ties are ordered by country name.
func TopCountries(txns []domain.Transaction, n int) (bySales, byCustomers []CountryStat) {
	sales := make(map[string]decimal.Decimal)
	customers := make(map[string]map[string]struct{})
	for _, t := range txns {
		sales[t.Country] = sales[t.Country].Add(decimal.NewFromFloat(t.TotalPrice))
		set, ok := customers[t.Country]
		if !ok {
			set = make(map[string]struct{})
			customers[t.Country] = set
		}
		set[t.CustomerID] = struct{}{}
	}

	for c, v := range sales {
		bySales = append(bySales, CountryStat{Country: c, Value: v.InexactFloat64()})
	}
	for c, set := range customers {
		byCustomers = append(byCustomers, CountryStat{Country: c, Value: float64(len(set))})
	}
	return rankCountries(bySales, n), rankCountries(byCustomers, n)
}

func rankCountries(xs []CountryStat, n int) []CountryStat {
	sort.Slice(xs, func(i, j int) bool {
		if xs[i].Value != xs[j].Value {
			return xs[i].Value > xs[j].Value
		}
		return xs[i].Country < xs[j].Country
	})
	if len(xs) > n {
		xs = xs[:n]
	}
	return xs
}

// horizontalBars charts a ranking with the largest value on top.
func horizontalBars(title, xLabel string, ranking []CountryStat, colour int) (*plot.Plot, error) {
	values := make(plotter.Values, len(ranking))
	names := make([]string, len(ranking))
	for i, r := range ranking {
		at := len(ranking) - 1 - i
		values[at] = r.Value
		names[at] = r.Country
	}

	p := newPlot(title, xLabel, "")
	bars, err := plotter.NewBarChart(values, barWidth*1.5)
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(colour)
	p.Add(bars)
	p.NominalY(names...)
	return p, nil
}

func geographicFigure(txns []domain.Transaction) (*figure, error) {
	bySales, byCustomers := TopCountries(txns, topCountries)
	if len(bySales) == 0 {
		return nil, fmt.Errorf("no transactions to chart")
	}

	sales, err := horizontalBars("Top 10 Countries by Sales", "Sales amount", bySales, 0)
	if err != nil {
		return nil, fmt.Errorf("sales bars: %w", err)
	}
	customers, err := horizontalBars("Top 10 Countries by Customer Count", "Customer count", byCustomers, 1)
	if err != nil {
		return nil, fmt.Errorf("customer bars: %w", err)
	}

	return &figure{
		title:  "Geographic Analysis",
		width:  geographicW,
		height: geographicH,
		plots:  [][]*plot.Plot{{sales, customers}},
	}, nil
}
