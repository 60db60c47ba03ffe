package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllSegments(t *testing.T) {
	segments := AllSegments()

	assert.Len(t, segments, 11)
	assert.Equal(t, SegmentChampions, segments[0])
	assert.Equal(t, SegmentLost, segments[len(segments)-1])

	seen := make(map[Segment]bool)
	for _, s := range segments {
		assert.False(t, seen[s], "duplicate segment %s", s)
		seen[s] = true
	}
}

func TestTransaction_IsCancelled(t *testing.T) {
	tests := []struct {
		invoice string
		want    bool
	}{
		{"C536379", true},
		{"536365", false},
		{"", false},
		{"A563185", false},
	}

	for _, tt := range tests {
		t.Run(tt.invoice, func(t *testing.T) {
			assert.Equal(t, tt.want, Transaction{InvoiceNo: tt.invoice}.IsCancelled())
		})
	}
}

func TestTransaction_HasCustomer(t *testing.T) {
	assert.True(t, Transaction{CustomerID: "17850"}.HasCustomer())
	assert.False(t, Transaction{}.HasCustomer())
}
