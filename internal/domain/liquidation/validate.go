package liquidation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExerciseStatus classifies the reconciliation outcome for one fiscal year.
type ExerciseStatus string

const (
	// StatusReconciled means records and summary were both present and compared.
	StatusReconciled ExerciseStatus = "reconciled"
	// StatusMissingSummary means the year has records but the document
	// printed no total row for it; field comparison is skipped.
	StatusMissingSummary ExerciseStatus = "missing_summary"
	// StatusOrphanSummary means the document printed a total row for a
	// year with no extracted records.
	StatusOrphanSummary ExerciseStatus = "orphan_summary"
)

// ExerciseValidationResult is the outcome of reconciling one fiscal year.
// Calc values are sums over that year's records; Doc values come from the
// matching ExerciseSummary. Results are built fresh on every validation
// run and never mutated.
type ExerciseValidationResult struct {
	Ejercicio int
	IsValid   bool
	Status    ExerciseStatus

	CalcCargo      decimal.Decimal
	CalcDatas      decimal.Decimal
	CalcVoluntaria decimal.Decimal
	CalcEjecutiva  decimal.Decimal
	CalcPendiente  decimal.Decimal

	DocCargo      decimal.Decimal
	DocDatas      decimal.Decimal
	DocVoluntaria decimal.Decimal
	DocEjecutiva  decimal.Decimal
	DocPendiente  decimal.Decimal

	Errors []string
}

// DefaultTolerance is one cent, accommodating compounded rounding across
// many line items.
func DefaultTolerance() decimal.Decimal {
	return decimal.RequireFromString("0.01")
}

// Validator reconciles a document against its own declared subtotals.
// It holds no state across calls; every validation recomputes from the
// document's current records and summaries.
type Validator struct {
	tolerance decimal.Decimal
}

// NewValidator returns a validator with the given absolute tolerance.
func NewValidator(tolerance decimal.Decimal) *Validator {
	return &Validator{tolerance: tolerance}
}

type fieldSums struct {
	cargo, datas, voluntaria, ejecutiva, pendiente decimal.Decimal
}

func sumRecords(records []TributeRecord) fieldSums {
	var s fieldSums
	for _, r := range records {
		s.cargo = s.cargo.Add(r.Cargo)
		s.datas = s.datas.Add(r.Datas)
		s.voluntaria = s.voluntaria.Add(r.Voluntaria)
		s.ejecutiva = s.ejecutiva.Add(r.Ejecutiva)
		s.pendiente = s.pendiente.Add(r.Pendiente)
	}
	return s
}

func (v *Validator) withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(v.tolerance)
}

// ValidateTotals compares the sum of every amount field across all
// records against the document's declared grand totals, and checks the
// algebraic relation cargo - datas - voluntaria - ejecutiva ~ pendiente
// on the aggregates. The relation check is a consistency signal, not a
// guaranteed identity. An empty slice means valid.
func (v *Validator) ValidateTotals(doc *Document) []string {
	errs := make([]string, 0)
	calc := sumRecords(doc.Records)

	if doc.Totals.Declared {
		checks := []struct {
			field string
			calc  decimal.Decimal
			docd  decimal.Decimal
		}{
			{"cargo", calc.cargo, doc.Totals.Cargo},
			{"datas", calc.datas, doc.Totals.Datas},
			{"voluntaria", calc.voluntaria, doc.Totals.Voluntaria},
			{"ejecutiva", calc.ejecutiva, doc.Totals.Ejecutiva},
			{"pendiente", calc.pendiente, doc.Totals.Pendiente},
		}
		for _, c := range checks {
			if !v.withinTolerance(c.calc, c.docd) {
				errs = append(errs, fmt.Sprintf(
					"%s mismatch: calculated %s vs documented %s",
					c.field, c.calc.StringFixed(2), c.docd.StringFixed(2)))
			}
		}
	}

	expectedPendiente := calc.cargo.Sub(calc.datas).Sub(calc.voluntaria).Sub(calc.ejecutiva)
	if !v.withinTolerance(expectedPendiente, calc.pendiente) {
		errs = append(errs, fmt.Sprintf(
			"pendiente relation check: cargo-datas-voluntaria-ejecutiva = %s vs pendiente %s",
			expectedPendiente.StringFixed(2), calc.pendiente.StringFixed(2)))
	}

	return errs
}

// ValidateExerciseSummaries reconciles every fiscal year present in
// either records or summaries. Years with records but no summary report
// MissingSummary and stay valid (there is nothing to compare). Years with
// a summary but no records report OrphanSummary and compare against zero
// sums.
func (v *Validator) ValidateExerciseSummaries(doc *Document) map[int]ExerciseValidationResult {
	results := make(map[int]ExerciseValidationResult)

	for _, year := range doc.Years() {
		records := doc.RecordsForYear(year)
		calc := sumRecords(records)
		summary, hasSummary := doc.Summaries[year]

		res := ExerciseValidationResult{
			Ejercicio:      year,
			IsValid:        true,
			Status:         StatusReconciled,
			CalcCargo:      calc.cargo,
			CalcDatas:      calc.datas,
			CalcVoluntaria: calc.voluntaria,
			CalcEjecutiva:  calc.ejecutiva,
			CalcPendiente:  calc.pendiente,
			Errors:         make([]string, 0),
		}

		if !hasSummary {
			res.Status = StatusMissingSummary
			res.Errors = append(res.Errors, fmt.Sprintf(
				"ejercicio %d has %d records but no printed total row", year, len(records)))
			results[year] = res
			continue
		}

		res.DocCargo = summary.Cargo
		res.DocDatas = summary.Datas
		res.DocVoluntaria = summary.Voluntaria
		res.DocEjecutiva = summary.Ejecutiva
		res.DocPendiente = summary.Pendiente

		if len(records) == 0 {
			res.Status = StatusOrphanSummary
			res.Errors = append(res.Errors, fmt.Sprintf(
				"ejercicio %d has a printed total row but no records", year))
		}

		checks := []struct {
			field string
			calc  decimal.Decimal
			docd  decimal.Decimal
		}{
			{"cargo", calc.cargo, summary.Cargo},
			{"datas", calc.datas, summary.Datas},
			{"voluntaria", calc.voluntaria, summary.Voluntaria},
			{"ejecutiva", calc.ejecutiva, summary.Ejecutiva},
			{"pendiente", calc.pendiente, summary.Pendiente},
		}
		for _, c := range checks {
			if !v.withinTolerance(c.calc, c.docd) {
				res.IsValid = false
				res.Errors = append(res.Errors, fmt.Sprintf(
					"%s: calculado %s vs documentado %s",
					c.field, c.calc.StringFixed(2), c.docd.StringFixed(2)))
			}
		}

		results[year] = res
	}

	return results
}
