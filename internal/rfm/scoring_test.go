package rfm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "custseg/internal/errors"
	"custseg/pkg/contracts/domain"
)

// tenCustomers has strictly increasing recency and monetary and a constant
// frequency, so frequency scores depend only on row order.
func tenCustomers() []domain.CustomerRFM {
	values := make([]domain.CustomerRFM, 10)
	for i := range values {
		values[i] = domain.CustomerRFM{
			CustomerID: fmt.Sprintf("%d", i+1),
			Recency:    (i + 1) * 10,
			Frequency:  1,
			Monetary:   float64(i+1) * 100,
		}
	}
	return values
}

func TestCalculateScores_FiveBins(t *testing.T) {
	scored, err := NewCalculator(5, nil).CalculateScores(context.Background(), tenCustomers())
	require.NoError(t, err)
	require.Len(t, scored, 10)

	for i, s := range scored {
		level := i/2 + 1
		assert.Equal(t, 6-level, s.RScore, "customer %s recency", s.CustomerID)
		assert.Equal(t, level, s.FScore, "customer %s frequency", s.CustomerID)
		assert.Equal(t, level, s.MScore, "customer %s monetary", s.CustomerID)
		assert.Equal(t, fmt.Sprintf("%d%d%d", s.RScore, s.FScore, s.MScore), s.RFMScore)
		assert.Equal(t, Segment(s.RScore, s.FScore, s.MScore), s.Segment)
	}

	assert.Equal(t, "511", scored[0].RFMScore)
	assert.Equal(t, domain.SegmentNewCustomers, scored[0].Segment)
	assert.Equal(t, domain.SegmentPotentialLoyalists, scored[2].Segment)
	assert.Equal(t, domain.SegmentPotentialLoyalists, scored[4].Segment)
	assert.Equal(t, domain.SegmentNeedAttention, scored[6].Segment)
	assert.Equal(t, domain.SegmentAboutToSleep, scored[8].Segment)
}

func TestCalculateScores_ScoreRange(t *testing.T) {
	for bins := 2; bins <= 10; bins++ {
		scored, err := NewCalculator(bins, nil).CalculateScores(context.Background(), tenCustomers())
		require.NoError(t, err, "bins=%d", bins)
		for _, s := range scored {
			for _, score := range []int{s.RScore, s.FScore, s.MScore} {
				assert.GreaterOrEqual(t, score, 1)
				assert.LessOrEqual(t, score, bins)
			}
		}
	}
}

func TestCalculateScores_DegenerateRecency(t *testing.T) {
	values := tenCustomers()
	for i := range values {
		values[i].Recency = 7
	}

	_, err := NewCalculator(5, nil).CalculateScores(context.Background(), values)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeBinning))
	assert.Contains(t, err.Error(), MetricRecency)
	assert.Contains(t, err.Error(), "bin edges must be unique")
}

func TestCalculateScores_SingleCustomer(t *testing.T) {
	values := []domain.CustomerRFM{{CustomerID: "1", Recency: 3, Frequency: 1, Monetary: 10}}
	_, err := NewCalculator(5, nil).CalculateScores(context.Background(), values)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeBinning))
}

func TestCalculateScores_Empty(t *testing.T) {
	_, err := NewCalculator(5, nil).CalculateScores(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestSegmentCustomers_Sample(t *testing.T) {
	scored, err := NewCalculator(2, nil).SegmentCustomers(context.Background(), cleanedSample(t), time.Time{})
	require.NoError(t, err)
	require.Len(t, scored, 4)

	want := map[string]struct {
		score   string
		segment domain.Segment
	}{
		"12347": {"211", domain.SegmentHibernating},
		"12583": {"112", domain.SegmentHibernating},
		"13047": {"222", domain.SegmentNeedAttention},
		"17850": {"121", domain.SegmentHibernating},
	}
	for _, s := range scored {
		w, ok := want[s.CustomerID]
		require.True(t, ok, s.CustomerID)
		assert.Equal(t, w.score, s.RFMScore, s.CustomerID)
		assert.Equal(t, w.segment, s.Segment, s.CustomerID)
	}
}

func TestSegmentCustomers_SampleDegeneratesAtFiveBins(t *testing.T) {
	_, err := NewCalculator(5, nil).SegmentCustomers(context.Background(), cleanedSample(t), time.Time{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeBinning))
}

func TestQcut(t *testing.T) {
	bins, err := qcut("x", []float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1}, bins)

	bins, err = qcut("x", []float64{4, 1, 3, 2}, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 0, 2, 1}, bins)

	_, err = qcut("x", []float64{1, 1, 1, 2}, 4)
	require.Error(t, err)
}

func TestRankFirst(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3, 4}, rankFirst([]float64{1, 1, 1, 1}))
	assert.Equal(t, []float64{3, 1, 4, 2}, rankFirst([]float64{5, 2, 5, 2}))
	assert.Empty(t, rankFirst(nil))
}
