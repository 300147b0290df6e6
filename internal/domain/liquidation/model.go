// Package liquidation defines the typed record set extracted from a
// provincial tax-collection liquidation document, plus the reconciliation
// logic that certifies it against the totals the document itself prints.
package liquidation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TributeRecord is one line item of collection activity for one fiscal
// year and one accounting concept. Records are immutable after extraction.
type TributeRecord struct {
	Ejercicio  int             `csv:"ejercicio"`
	Concepto   string          `csv:"concepto"`
	ClaveC     string          `csv:"clave_contabilidad"`
	ClaveR     string          `csv:"clave_recaudacion"`
	Cargo      decimal.Decimal `csv:"cargo"`
	Datas      decimal.Decimal `csv:"datas_total"`
	Voluntaria decimal.Decimal `csv:"voluntaria_total"`
	Ejecutiva  decimal.Decimal `csv:"ejecutiva_total"`
	Pendiente  decimal.Decimal `csv:"pendiente_total"`
}

// TotalCollected returns datas + voluntaria + ejecutiva.
func (r TributeRecord) TotalCollected() decimal.Decimal {
	return r.Datas.Add(r.Voluntaria).Add(r.Ejecutiva)
}

// ExerciseSummary is the document's own printed subtotal row for one
// fiscal year. At most one summary exists per year.
type ExerciseSummary struct {
	Ejercicio  int
	Cargo      decimal.Decimal
	Datas      decimal.Decimal
	Voluntaria decimal.Decimal
	Ejecutiva  decimal.Decimal
	Pendiente  decimal.Decimal
}

// GrandTotals holds the document-declared grand totals across all years.
// Declared is false when no document-total row was found; validation then
// skips the document-level comparison.
type GrandTotals struct {
	Declared   bool
	Cargo      decimal.Decimal
	Datas      decimal.Decimal
	Voluntaria decimal.Decimal
	Ejecutiva  decimal.Decimal
	Pendiente  decimal.Decimal
}

// Header carries the identifying metadata printed on page one. All fields
// are optional; a document with no recognizable header still extracts.
type Header struct {
	Ejercicio          int
	MandamientoPago    string
	FechaMandamiento   time.Time
	NumeroLiquidacion  string
	Entidad            string
	CodigoEntidad      string
	CodigoVerificacion string
	FirmadoPor         string
	FechaFirma         time.Time
}

// WarningCode identifies a non-fatal extraction anomaly.
type WarningCode string

const (
	WarnDuplicateSummary WarningCode = "duplicate_summary"
	WarnOrphanedPartial  WarningCode = "orphaned_partial"
	WarnPartialConflict  WarningCode = "partial_conflict"
	WarnUnrecognizedRow  WarningCode = "unrecognized_row"
	WarnDroppedRow       WarningCode = "dropped_row"
)

// Warning records an anomaly that did not abort extraction. Warnings are
// attached to the document so the back office can review them alongside
// the figures.
type Warning struct {
	Code    WarningCode
	Message string
}

// Document is the aggregate root produced by one extraction run. It owns
// its records and summaries and is read-only for all consumers; nothing
// mutates it after construction, so concurrent reads are safe.
type Document struct {
	Header    Header
	Records   []TributeRecord
	Summaries map[int]ExerciseSummary
	Totals    GrandTotals
	Warnings  []Warning

	// DroppedRows counts rows that classified as data but failed to
	// parse. They are never coerced into zero-amount records.
	DroppedRows int
}

// NewDocument builds a document from extraction output. The record slice
// keeps extraction order.
func NewDocument(header Header, records []TributeRecord, summaries map[int]ExerciseSummary, totals GrandTotals, warnings []Warning, dropped int) *Document {
	if summaries == nil {
		summaries = make(map[int]ExerciseSummary)
	}
	return &Document{
		Header:      header,
		Records:     records,
		Summaries:   summaries,
		Totals:      totals,
		Warnings:    warnings,
		DroppedRows: dropped,
	}
}

// RecordsForYear returns the records belonging to one fiscal year, in
// extraction order. The returned slice is a fresh copy of the references;
// callers cannot disturb document ordering through it.
func (d *Document) RecordsForYear(ejercicio int) []TributeRecord {
	var out []TributeRecord
	for _, r := range d.Records {
		if r.Ejercicio == ejercicio {
			out = append(out, r)
		}
	}
	return out
}

// RecordsForConcept returns the records matching one concept label.
func (d *Document) RecordsForConcept(concepto string) []TributeRecord {
	var out []TributeRecord
	for _, r := range d.Records {
		if r.Concepto == concepto {
			out = append(out, r)
		}
	}
	return out
}

// Years returns every fiscal year present in records or summaries,
// ascending.
func (d *Document) Years() []int {
	seen := make(map[int]struct{})
	for _, r := range d.Records {
		seen[r.Ejercicio] = struct{}{}
	}
	for y := range d.Summaries {
		seen[y] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// TotalRecords returns the number of extracted tribute records.
func (d *Document) TotalRecords() int {
	return len(d.Records)
}

// ValidateTotals reconciles the summed records against the document's
// declared grand totals using the default tolerance. An empty result
// means the document is internally consistent at the top level.
func (d *Document) ValidateTotals() []string {
	return NewValidator(DefaultTolerance()).ValidateTotals(d)
}

// ValidateExerciseSummaries reconciles each fiscal year against its
// printed exercise total using the default tolerance. Results are
// recomputed on every call; nothing is cached.
func (d *Document) ValidateExerciseSummaries() map[int]ExerciseValidationResult {
	return NewValidator(DefaultTolerance()).ValidateExerciseSummaries(d)
}

// HasExerciseValidationErrors reports whether any fiscal year failed
// reconciliation.
func (d *Document) HasExerciseValidationErrors() bool {
	for _, res := range d.ValidateExerciseSummaries() {
		if !res.IsValid {
			return true
		}
	}
	return false
}
