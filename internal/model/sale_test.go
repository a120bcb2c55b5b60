package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSaleTotalPrice(t *testing.T) {
	s := Sale{Quantity: 3, UnitPriceSnapshot: decimal.RequireFromString("19.99")}
	assert.Equal(t, "59.97", s.TotalPrice().StringFixed(2))

	// Exactness where float math would drift.
	s = Sale{Quantity: 10, UnitPriceSnapshot: decimal.RequireFromString("0.10")}
	assert.True(t, s.TotalPrice().Equal(decimal.RequireFromString("1")))
}

func TestSaleCancelled(t *testing.T) {
	assert.False(t, (&Sale{Status: SaleStatusActive}).Cancelled())
	assert.True(t, (&Sale{Status: SaleStatusCancelled}).Cancelled())
}
