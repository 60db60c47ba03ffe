package domain

import "time"

// Segment is one of the eleven fixed customer cohorts.
type Segment string

const (
	SegmentChampions          Segment = "Champions"
	SegmentLoyalCustomers     Segment = "Loyal Customers"
	SegmentPotentialLoyalists Segment = "Potential Loyalists"
	SegmentNewCustomers       Segment = "New Customers"
	SegmentPromising          Segment = "Promising"
	SegmentNeedAttention      Segment = "Need Attention"
	SegmentAboutToSleep       Segment = "About to Sleep"
	SegmentAtRisk             Segment = "At Risk"
	SegmentCannotLoseThem     Segment = "Cannot Lose Them"
	SegmentHibernating        Segment = "Hibernating"
	SegmentLost               Segment = "Lost"
)

// AllSegments returns every segment in rule order.
func AllSegments() []Segment {
	return []Segment{
		SegmentChampions,
		SegmentLoyalCustomers,
		SegmentPotentialLoyalists,
		SegmentNewCustomers,
		SegmentPromising,
		SegmentNeedAttention,
		SegmentAboutToSleep,
		SegmentAtRisk,
		SegmentCannotLoseThem,
		SegmentHibernating,
		SegmentLost,
	}
}

// CustomerRFM holds the raw recency, frequency and monetary values of one customer.
type CustomerRFM struct {
	CustomerID   string    `json:"customer_id" db:"customer_id"`
	Recency      int       `json:"recency" db:"recency"`
	Frequency    int       `json:"frequency" db:"frequency"`
	Monetary     float64   `json:"monetary" db:"monetary"`
	LastPurchase time.Time `json:"last_purchase" db:"last_purchase"`
}

// ScoredCustomer adds quantile scores and the derived segment.
type ScoredCustomer struct {
	CustomerRFM
	RScore   int     `json:"r_score" db:"r_score"`
	FScore   int     `json:"f_score" db:"f_score"`
	MScore   int     `json:"m_score" db:"m_score"`
	RFMScore string  `json:"rfm_score" db:"rfm_score"`
	Segment  Segment `json:"segment" db:"segment"`
}

// SegmentSummary aggregates the customers of one segment.
type SegmentSummary struct {
	Segment       Segment `json:"segment" db:"segment"`
	CustomerCount int     `json:"customer_count" db:"customer_count"`
	AvgRecency    float64 `json:"avg_recency" db:"avg_recency"`
	AvgFrequency  float64 `json:"avg_frequency" db:"avg_frequency"`
	AvgMonetary   float64 `json:"avg_monetary" db:"avg_monetary"`
	TotalMonetary float64 `json:"total_monetary" db:"total_monetary"`
	Percentage    float64 `json:"percentage" db:"percentage"`
}

// CustomerValue is the lifetime value estimate of one customer.
type CustomerValue struct {
	CustomerID              string  `json:"customer_id"`
	AvgOrderValue           float64 `json:"avg_order_value"`
	PurchaseFrequencyYearly float64 `json:"purchase_frequency_yearly"`
	CLV                     float64 `json:"clv"`
}
