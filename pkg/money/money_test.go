package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(123456), Cents(dec("1234.56")))
	assert.Equal(t, int64(-50), Cents(dec("-0.50")))
	assert.Equal(t, int64(0), Cents(decimal.Zero))
	// Sub-cent noise rounds half away from zero.
	assert.Equal(t, int64(101), Cents(dec("1.005")))
	assert.Equal(t, int64(-101), Cents(dec("-1.005")))
}

func TestFromCents(t *testing.T) {
	assert.Equal(t, "1234.56", FromCents(123456).StringFixed(2))
	assert.Equal(t, "-0.50", FromCents(-50).StringFixed(2))
}

func TestDisplayEUR(t *testing.T) {
	assert.Equal(t, "€1,234.56", DisplayEUR(dec("1234.56")))
	assert.Equal(t, "€0.00", DisplayEUR(decimal.Zero))
	assert.Equal(t, "-€500.00", DisplayEUR(dec("-500")))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(dec("1.00"), dec("2.00")))
	assert.Equal(t, 1, Compare(dec("2.00"), dec("1.00")))
	assert.Equal(t, 0, Compare(dec("1.00"), dec("1.001")))
}

func TestWithinTolerance(t *testing.T) {
	tol := dec("0.01")
	assert.True(t, WithinTolerance(dec("100.00"), dec("100.01"), tol))
	assert.True(t, WithinTolerance(dec("100.00"), dec("100.00"), tol))
	assert.False(t, WithinTolerance(dec("100.00"), dec("100.02"), tol))
}
