// Package money bridges the engine's exact decimal amounts and
// human-facing euro formatting for reports and exports. Arithmetic stays
// in shopspring/decimal; go-money only renders.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// EUR is the only currency a liquidation document carries.
const EUR = "EUR"

var centMultiplier = decimal.New(1, 2)

// Cents converts an exact decimal amount to integer euro cents, rounding
// half away from zero at the second fraction digit.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(centMultiplier).Round(0).IntPart()
}

// FromCents converts integer euro cents back to an exact decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centMultiplier)
}

// DisplayEUR renders an amount with the euro symbol and grouping, e.g.
// "€1,234.56".
func DisplayEUR(d decimal.Decimal) string {
	return money.New(Cents(d), EUR).Display()
}

// Compare orders two amounts at cent precision, ignoring sub-cent noise
// introduced upstream.
func Compare(a, b decimal.Decimal) int {
	ca, cb := Cents(a), Cents(b)
	switch {
	case ca < cb:
		return -1
	case ca > cb:
		return 1
	default:
		return 0
	}
}

// WithinTolerance reports whether two amounts differ by at most tol.
func WithinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}
