// Package extract turns raw page/table cell grids into a typed
// liquidation document: row classification, locale-aware amount parsing,
// partial-row merging, exercise summaries and grand totals.
package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Dialect biases amount parsing when a lone separator is ambiguous.
type Dialect int

const (
	// DialectUnknown applies the positional rules only.
	DialectUnknown Dialect = iota
	// DialectEuropean treats ',' as the decimal separator (1.234,56).
	DialectEuropean
	// DialectAmerican treats '.' as the decimal separator (1,234.56).
	DialectAmerican
)

func (d Dialect) String() string {
	switch d {
	case DialectEuropean:
		return "european"
	case DialectAmerican:
		return "american"
	default:
		return "unknown"
	}
}

// AmountParseError reports a cell that was expected to hold currency but
// contained non-numeric garbage. The row carrying it is dropped, never
// coerced to zero.
type AmountParseError struct {
	Raw    string
	Reason string
}

func (e *AmountParseError) Error() string {
	return fmt.Sprintf("unparseable amount %q: %s", e.Raw, e.Reason)
}

var currencyMarkers = []string{"€", "EUR", "$", "£"}

// IsBlank reports whether a cell holds no amount at all. A blank cell is
// a valid "no amount" result, distinct from zero: it sums as zero but
// counts as evidence of a partial row during classification.
func IsBlank(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || s == "-"
}

// ParseAmount converts a raw cell string into an exact decimal amount.
// The second return is false for blank cells. Thousands/decimal separator
// ambiguity resolves by position: a separator followed by exactly three
// digits and then another separator or end-of-string groups thousands; a
// separator followed by one or two trailing digits is the decimal mark.
// The dialect hint breaks the residual tie for a lone separator with
// three trailing digits. Trailing-minus and parentheses negatives are
// preserved in sign.
func ParseAmount(raw string, dialect Dialect) (decimal.Decimal, bool, error) {
	if IsBlank(raw) {
		return decimal.Zero, false, nil
	}

	s := strings.TrimSpace(raw)
	for _, sym := range currencyMarkers {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false, nil
	}

	negative := false
	switch {
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	case strings.HasSuffix(s, "-"):
		negative = true
		s = strings.TrimSuffix(s, "-")
	case strings.HasPrefix(s, "-"):
		negative = true
		s = strings.TrimPrefix(s, "-")
	}
	if s == "" {
		return decimal.Zero, false, &AmountParseError{Raw: raw, Reason: "sign with no digits"}
	}

	normalized, err := normalizeSeparators(s, dialect)
	if err != nil {
		return decimal.Zero, false, &AmountParseError{Raw: raw, Reason: err.Error()}
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, false, &AmountParseError{Raw: raw, Reason: "not a number"}
	}
	if negative {
		d = d.Neg()
	}
	return d, true, nil
}

// normalizeSeparators rewrites a digit string with '.'/',' separators into
// decimal's canonical dot form.
func normalizeSeparators(s string, dialect Dialect) (string, error) {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		// The separator appearing last is the decimal mark.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		s = resolveSingleSeparator(s, ',', dialect == DialectEuropean)
	case hasDot:
		s = resolveSingleSeparator(s, '.', dialect == DialectAmerican)
	}

	if s == "" || !digitsOnlyWithDot(s) {
		return "", fmt.Errorf("unexpected characters after normalization")
	}
	return s, nil
}

// resolveSingleSeparator decides whether a lone separator kind marks
// thousands grouping or the decimal position. decimalBias is true when
// the dialect declares this separator the decimal mark.
func resolveSingleSeparator(s string, sep rune, decimalBias bool) string {
	parts := strings.Split(s, string(sep))
	last := parts[len(parts)-1]

	switch {
	case len(parts) > 2:
		// Repeated separator can only be grouping.
		return strings.Join(parts, "")
	case len(last) == 3 && !decimalBias:
		return parts[0] + last
	case len(last) >= 1 && len(last) <= 3:
		return parts[0] + "." + last
	default:
		// More than three trailing digits never groups; treat as decimal
		// and let decimal.NewFromString rule on validity.
		return parts[0] + "." + last
	}
}

func digitsOnlyWithDot(s string) bool {
	dots := 0
	for _, r := range s {
		if r == '.' {
			dots++
			if dots > 1 {
				return false
			}
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return strings.Trim(s, ".") != ""
}

// FormatAmount renders an amount in the canonical two-fraction-digit form
// accepted back by ParseAmount, so parse(format(parse(s))) == parse(s).
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
