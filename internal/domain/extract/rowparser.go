package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
)

// RowParseError reports a structural mismatch between a classified data
// row and the expected column layout. The row is dropped.
type RowParseError struct {
	Column  string
	Message string
	RawData string
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("column %s: %s", e.Column, e.Message)
}

var claveYearRe = regexp.MustCompile(`/(\d{4})/`)

// RowParser maps a data row's cells to the eight fields of a tribute
// record. It is a pure function of (cells, fiscal year context, layout);
// blank optional amount cells become zero, non-empty unparseable cells
// fail the row.
type RowParser struct {
	cfg Config
}

// NewRowParser builds a row parser for one extraction run.
func NewRowParser(cfg Config) *RowParser {
	return &RowParser{cfg: cfg}
}

// ParseRow converts a Data-classified row into a TributeRecord.
// yearContext is the fiscal year currently in scope; it is used only when
// no year token is recoverable from the clave cells.
func (p *RowParser) ParseRow(cells []string, yearContext int) (liquidation.TributeRecord, error) {
	layout := p.cfg.Layout

	concepto := collapseWhitespace(cell(cells, layout.Concepto))
	if concepto == "" {
		return liquidation.TributeRecord{}, &RowParseError{
			Column:  "concepto",
			Message: "data row with empty concept",
		}
	}

	rec := liquidation.TributeRecord{
		Concepto: concepto,
		ClaveC:   cell(cells, layout.ClaveC),
		ClaveR:   cell(cells, layout.ClaveR),
	}

	amounts := []struct {
		name string
		idx  int
		dst  *decimal.Decimal
	}{
		{"cargo", layout.Cargo, &rec.Cargo},
		{"datas", layout.Datas, &rec.Datas},
		{"voluntaria", layout.Voluntaria, &rec.Voluntaria},
		{"ejecutiva", layout.Ejecutiva, &rec.Ejecutiva},
		{"pendiente", layout.Pendiente, &rec.Pendiente},
	}
	for _, a := range amounts {
		raw := cell(cells, a.idx)
		d, ok, err := ParseAmount(raw, p.cfg.Dialect)
		if err != nil {
			return liquidation.TributeRecord{}, &RowParseError{
				Column:  a.name,
				Message: err.Error(),
				RawData: raw,
			}
		}
		if !ok {
			// Genuinely empty optional cell sums as zero.
			d = decimal.Zero
		}
		*a.dst = d
	}

	rec.Ejercicio = p.resolveYear(rec.ClaveR, rec.ClaveC, yearContext)
	return rec, nil
}

// resolveYear prefers the year embedded in the collection key (the most
// reliable source in this layout), then the accounting key, then the
// surrounding fiscal year context.
func (p *RowParser) resolveYear(claveR, claveC string, yearContext int) int {
	for _, clave := range []string{claveR, claveC} {
		if y, ok := p.yearFromClave(clave); ok {
			return y
		}
	}
	return yearContext
}

func (p *RowParser) yearFromClave(clave string) (int, bool) {
	if clave == "" {
		return 0, false
	}
	if m := claveYearRe.FindStringSubmatch(clave); m != nil {
		if y := atoiYear(m[1]); p.plausibleYear(y) {
			return y, true
		}
	}
	for _, m := range yearRe.FindAllString(clave, -1) {
		if y := atoiYear(m); p.plausibleYear(y) {
			return y, true
		}
	}
	return 0, false
}

func (p *RowParser) plausibleYear(y int) bool {
	return y >= p.cfg.YearMin && y <= p.cfg.YearMax
}

func atoiYear(s string) int {
	y, _ := strconv.Atoi(s)
	return y
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// parseAmountRow reads the five amount columns of a total or summary row.
// Shared by the summary extractor and the grand-totals parser.
func (p *RowParser) parseAmountRow(cells []string) (cargo, datas, voluntaria, ejecutiva, pendiente decimal.Decimal, err error) {
	layout := p.cfg.Layout
	vals := make([]decimal.Decimal, 5)
	for i, idx := range []int{layout.Cargo, layout.Datas, layout.Voluntaria, layout.Ejecutiva, layout.Pendiente} {
		raw := cell(cells, idx)
		d, ok, perr := ParseAmount(raw, p.cfg.Dialect)
		if perr != nil {
			return cargo, datas, voluntaria, ejecutiva, pendiente, perr
		}
		if !ok {
			d = decimal.Zero
		}
		vals[i] = d
	}
	return vals[0], vals[1], vals[2], vals[3], vals[4], nil
}
