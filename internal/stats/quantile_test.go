package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		q    float64
		want float64
	}{
		{name: "median odd", xs: []float64{3, 1, 2}, q: 0.5, want: 2},
		{name: "median even", xs: []float64{1, 2, 3, 4}, q: 0.5, want: 2.5},
		{name: "interpolated", xs: []float64{1, 2, 3, 4, 5}, q: 0.2, want: 1.8},
		{name: "95th", xs: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, q: 0.95, want: 9.55},
		{name: "min", xs: []float64{5, 4}, q: 0, want: 4},
		{name: "max", xs: []float64{5, 4}, q: 1, want: 5},
		{name: "single", xs: []float64{7}, q: 0.3, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.xs, tt.q), 1e-9)
		})
	}
}

func TestQuantile_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestQuantile_DoesNotMutateInput(t *testing.T) {
	xs := []float64{3, 1, 2}
	Quantile(xs, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, xs)
}

func TestQuantileEdges(t *testing.T) {
	edges := QuantileEdges([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5)

	want := []float64{1, 2.8, 4.6, 6.4, 8.2, 10}
	assert.Len(t, edges, 6)
	for i := range want {
		assert.InDelta(t, want[i], edges[i], 1e-9)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.2345, 2))
	assert.Equal(t, 2.5, Round(2.45, 1))
	assert.Equal(t, -1.26, Round(-1.256, 2))
	assert.Equal(t, 3.0, Round(3, 2))
}
