package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "custseg/internal/errors"
	"custseg/pkg/contracts/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "db", "runs.db")
	store, err := Open(context.Background(), dsn, "custseg_", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRun() *Run {
	last := time.Date(2011, 12, 9, 12, 50, 0, 0, time.UTC)
	return &Run{
		ID:           uuid.NewString(),
		SourceFile:   "data/raw/data.csv",
		AnalysisDate: last.Add(24 * time.Hour),
		Bins:         2,
		CreatedAt:    time.Now(),
		Customers: []domain.ScoredCustomer{
			{
				CustomerRFM: domain.CustomerRFM{CustomerID: "13047", Recency: 334, Frequency: 2, Monetary: 79.58, LastPurchase: last.AddDate(0, -11, 0)},
				RScore:      2, FScore: 2, MScore: 2, RFMScore: "222", Segment: domain.SegmentNeedAttention,
			},
			{
				CustomerRFM: domain.CustomerRFM{CustomerID: "12347", Recency: 1, Frequency: 1, Monetary: 15, LastPurchase: last},
				RScore:      2, FScore: 1, MScore: 1, RFMScore: "211", Segment: domain.SegmentHibernating,
			},
		},
		Summary: []domain.SegmentSummary{
			{Segment: domain.SegmentHibernating, CustomerCount: 1, AvgRecency: 1, AvgFrequency: 1, AvgMonetary: 15, TotalMonetary: 15, Percentage: 50},
			{Segment: domain.SegmentNeedAttention, CustomerCount: 1, AvgRecency: 334, AvgFrequency: 2, AvgMonetary: 79.58, TotalMonetary: 79.58, Percentage: 50},
		},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	assert.Equal(t, DriverSQLite, store.Driver())

	run := testRun()
	require.NoError(t, store.SaveRun(ctx, run))

	n, err := store.CountRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	customers, err := store.LoadCustomers(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, customers, 2)

	assert.Equal(t, "12347", customers[0].CustomerID)
	assert.Equal(t, run.Customers[1], customers[0])
	assert.Equal(t, run.Customers[0], customers[1])
}

func TestStore_DuplicateRunRollsBack(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	run := testRun()
	require.NoError(t, store.SaveRun(ctx, run))

	err := store.SaveRun(ctx, run)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))

	n, err := store.CountRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "runs.db")

	store, err := Open(ctx, dsn, "", nil)
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(ctx, testRun()))
	require.NoError(t, store.Close())

	store, err = Open(ctx, dsn, "", nil)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.CountRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "x.db"), "bad-prefix;", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))

	_, err = Open(ctx, "oracle://nowhere", "", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
