package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custseg/internal/shared/testutil"
	"custseg/pkg/contracts/domain"
)

func TestInfo(t *testing.T) {
	path := testutil.WriteCSV(t, "data.csv", testutil.TransactionHeader, testutil.SampleTransactionRows()...)
	ds, err := NewLoader("", nil).Load(context.Background(), path)
	require.NoError(t, err)

	info := Info(ds)

	assert.Equal(t, 12, info.Rows)
	assert.Len(t, info.Columns, 8)
	assert.Equal(t, 1, info.DuplicateRows)
	assert.Equal(t, 1, info.MissingValues[domain.ColCustomerID])
	assert.Equal(t, 5, info.UniqueCustomers)
	assert.Equal(t, 3, info.UniqueCountries)
	assert.Equal(t, time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC), info.FirstDate)
	assert.Equal(t, time.Date(2011, 12, 9, 12, 50, 0, 0, time.UTC), info.LastDate)
	assert.Len(t, info.Preview, 5)

	quantity := info.Numeric[domain.ColQuantity]
	assert.Equal(t, 12, quantity.Count)
	assert.Equal(t, -1.0, quantity.Min)
	assert.Equal(t, 32.0, quantity.Max)
}

func TestInfo_Empty(t *testing.T) {
	info := Info(&Dataset{})

	assert.Zero(t, info.Rows)
	assert.Empty(t, info.Preview)
	assert.Zero(t, info.DuplicateRows)
}

func TestCountDuplicates(t *testing.T) {
	a := domain.Transaction{InvoiceNo: "1", Quantity: 1}
	b := domain.Transaction{InvoiceNo: "2", Quantity: 1}

	assert.Equal(t, 0, CountDuplicates([]domain.Transaction{a, b}))
	assert.Equal(t, 2, CountDuplicates([]domain.Transaction{a, b, a, a}))
}
