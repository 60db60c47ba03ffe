package stats

import (
	"encoding/json"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// Description summarizes a numeric column.
type Description struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"25%"`
	Q50   float64 `json:"50%"`
	Q75   float64 `json:"75%"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

// MarshalJSON writes undefined statistics, such as the deviation of a single
// value, as null.
func (d Description) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Count int      `json:"count"`
		Mean  *float64 `json:"mean"`
		Std   *float64 `json:"std"`
		Min   *float64 `json:"min"`
		Q25   *float64 `json:"25%"`
		Q50   *float64 `json:"50%"`
		Q75   *float64 `json:"75%"`
		Max   *float64 `json:"max"`
		Sum   float64  `json:"sum"`
	}{
		Count: d.Count,
		Mean:  finite(d.Mean),
		Std:   finite(d.Std),
		Min:   finite(d.Min),
		Q25:   finite(d.Q25),
		Q50:   finite(d.Q50),
		Q75:   finite(d.Q75),
		Max:   finite(d.Max),
		Sum:   d.Sum,
	})
}

func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

// Describe computes count, mean, sample standard deviation, quartiles and
// bounds of xs. Quartiles use the same interpolation as Quantile.
func Describe(xs []float64) Description {
	if len(xs) == 0 {
		nan := math.NaN()
		return Description{Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	}

	sample := stats.Sample{Xs: append([]float64(nil), xs...)}
	sample.Sort()
	lo, hi := sample.Bounds()

	std := math.NaN()
	if len(xs) > 1 {
		std = sample.StdDev()
	}

	return Description{
		Count: len(xs),
		Mean:  sample.Mean(),
		Std:   std,
		Min:   lo,
		Q25:   SortedQuantile(sample.Xs, 0.25),
		Q50:   SortedQuantile(sample.Xs, 0.50),
		Q75:   SortedQuantile(sample.Xs, 0.75),
		Max:   hi,
		Sum:   sample.Sum(),
	}
}

// IQRBounds holds an interquartile-range outlier report for one column.
type IQRBounds struct {
	Q1           float64 `json:"Q1"`
	Q3           float64 `json:"Q3"`
	IQR          float64 `json:"IQR"`
	LowerBound   float64 `json:"lower_bound"`
	UpperBound   float64 `json:"upper_bound"`
	OutlierCount int     `json:"outlier_count"`
	Percentage   float64 `json:"outlier_percentage"`
}

// IQROutliers flags values outside [Q1-1.5*IQR, Q3+1.5*IQR].
func IQROutliers(xs []float64) IQRBounds {
	if len(xs) == 0 {
		return IQRBounds{}
	}
	sample := stats.Sample{Xs: append([]float64(nil), xs...)}
	sample.Sort()

	q1 := SortedQuantile(sample.Xs, 0.25)
	q3 := SortedQuantile(sample.Xs, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	count := 0
	for _, x := range xs {
		if x < lower || x > upper {
			count++
		}
	}

	return IQRBounds{
		Q1:           q1,
		Q3:           q3,
		IQR:          iqr,
		LowerBound:   lower,
		UpperBound:   upper,
		OutlierCount: count,
		Percentage:   float64(count) / float64(len(xs)) * 100,
	}
}
