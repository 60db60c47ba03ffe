package rfm

import (
	"sort"

	"github.com/shopspring/decimal"

	"custseg/internal/stats"
	"custseg/pkg/contracts/domain"
)

// DefaultLifespanDays is the customer lifespan assumed by CalculateCLV.
const DefaultLifespanDays = 365

// SummarizeSegments aggregates scored customers per segment, ordered by
// customer count descending and then by segment name.
func SummarizeSegments(scored []domain.ScoredCustomer) []domain.SegmentSummary {
	type totals struct {
		count     int
		recency   int
		frequency int
		monetary  decimal.Decimal
	}

	groups := make(map[domain.Segment]*totals)
	for _, s := range scored {
		g, ok := groups[s.Segment]
		if !ok {
			g = &totals{}
			groups[s.Segment] = g
		}
		g.count++
		g.recency += s.Recency
		g.frequency += s.Frequency
		g.monetary = g.monetary.Add(decimal.NewFromFloat(s.Monetary))
	}

	out := make([]domain.SegmentSummary, 0, len(groups))
	for seg, g := range groups {
		n := float64(g.count)
		total := g.monetary.InexactFloat64()
		out = append(out, domain.SegmentSummary{
			Segment:       seg,
			CustomerCount: g.count,
			AvgRecency:    stats.Round(float64(g.recency)/n, 2),
			AvgFrequency:  stats.Round(float64(g.frequency)/n, 2),
			AvgMonetary:   stats.Round(total/n, 2),
			TotalMonetary: stats.Round(total, 2),
			Percentage:    stats.Round(n/float64(len(scored))*100, 2),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CustomerCount != out[j].CustomerCount {
			return out[i].CustomerCount > out[j].CustomerCount
		}
		return out[i].Segment < out[j].Segment
	})
	return out
}

// CalculateCLV estimates the lifetime value of every customer:
// average order value times yearly purchase frequency, scaled by the
// lifespan in years. When 365-R+1 is not positive the yearly frequency
// falls back to the raw frequency.
func CalculateCLV(scored []domain.ScoredCustomer, lifespanDays int) []domain.CustomerValue {
	if lifespanDays <= 0 {
		lifespanDays = DefaultLifespanDays
	}

	out := make([]domain.CustomerValue, len(scored))
	for i, s := range scored {
		aov := s.Monetary / float64(s.Frequency)
		pfy := float64(s.Frequency)
		if denom := 365 - s.Recency + 1; denom > 0 {
			pfy = float64(s.Frequency) * 365 / float64(denom)
		}
		out[i] = domain.CustomerValue{
			CustomerID:              s.CustomerID,
			AvgOrderValue:           aov,
			PurchaseFrequencyYearly: pfy,
			CLV:                     aov * pfy * float64(lifespanDays) / 365,
		}
	}
	return out
}

// ChampionInsight describes the Champions segment.
type ChampionInsight struct {
	Count        int     `json:"count"`
	Percentage   float64 `json:"percentage"`
	AvgMonetary  float64 `json:"avg_monetary"`
	TotalRevenue float64 `json:"total_revenue"`
	AvgCLV       float64 `json:"avg_clv"`
}

// AtRiskInsight describes the At Risk and Cannot Lose Them segments.
type AtRiskInsight struct {
	Count                int     `json:"count"`
	Percentage           float64 `json:"percentage"`
	PotentialLostRevenue float64 `json:"potential_lost_revenue"`
}

// Insights groups the business highlights of a segmentation run. Sections
// with no customers are nil.
type Insights struct {
	Champions *ChampionInsight `json:"champions,omitempty"`
	AtRisk    *AtRiskInsight   `json:"at_risk,omitempty"`
}

// BusinessInsights summarizes the high-value and at-risk customers.
func BusinessInsights(scored []domain.ScoredCustomer, lifespanDays int) Insights {
	var insights Insights
	if len(scored) == 0 {
		return insights
	}
	total := float64(len(scored))

	values := CalculateCLV(scored, lifespanDays)
	var (
		champCount   int
		champRevenue decimal.Decimal
		champCLV     float64
		riskCount    int
		riskRevenue  decimal.Decimal
	)
	for i, s := range scored {
		switch s.Segment {
		case domain.SegmentChampions:
			champCount++
			champRevenue = champRevenue.Add(decimal.NewFromFloat(s.Monetary))
			champCLV += values[i].CLV
		case domain.SegmentAtRisk, domain.SegmentCannotLoseThem:
			riskCount++
			riskRevenue = riskRevenue.Add(decimal.NewFromFloat(s.Monetary))
		}
	}

	if champCount > 0 {
		revenue := champRevenue.InexactFloat64()
		insights.Champions = &ChampionInsight{
			Count:        champCount,
			Percentage:   stats.Round(float64(champCount)/total*100, 2),
			AvgMonetary:  stats.Round(revenue/float64(champCount), 2),
			TotalRevenue: stats.Round(revenue, 2),
			AvgCLV:       stats.Round(champCLV/float64(champCount), 2),
		}
	}
	if riskCount > 0 {
		insights.AtRisk = &AtRiskInsight{
			Count:                riskCount,
			Percentage:           stats.Round(float64(riskCount)/total*100, 2),
			PotentialLostRevenue: stats.Round(riskRevenue.InexactFloat64(), 2),
		}
	}
	return insights
}

// Statistics holds descriptive statistics of the three RFM columns.
type Statistics struct {
	Recency   stats.Description `json:"recency"`
	Frequency stats.Description `json:"frequency"`
	Monetary  stats.Description `json:"monetary"`
}

// Describe computes descriptive statistics for recency, frequency and monetary.
func Describe(values []domain.CustomerRFM) Statistics {
	recency := make([]float64, len(values))
	frequency := make([]float64, len(values))
	monetary := make([]float64, len(values))
	for i, v := range values {
		recency[i] = float64(v.Recency)
		frequency[i] = float64(v.Frequency)
		monetary[i] = v.Monetary
	}
	return Statistics{
		Recency:   stats.Describe(recency),
		Frequency: stats.Describe(frequency),
		Monetary:  stats.Describe(monetary),
	}
}

// ScoredValues strips scores and returns the underlying RFM values.
func ScoredValues(scored []domain.ScoredCustomer) []domain.CustomerRFM {
	out := make([]domain.CustomerRFM, len(scored))
	for i, s := range scored {
		out[i] = s.CustomerRFM
	}
	return out
}
