// Package export renders a liquidation document for the back office:
// Excel workbook with validation coloring, flat CSV, and a grouped HTML
// report. Everything here reads the document surface only; nothing
// mutates it.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
)

const (
	sheetRecords   = "Registros"
	sheetExercises = "Resumen Ejercicios"
	sheetTotals    = "Totales"
)

const amountNumFmt = "#,##0.00"

// WriteExcel renders the document into an XLSX workbook: one sheet of
// records, one per-exercise reconciliation sheet with green/red row
// coloring, and a totals sheet.
func WriteExcel(doc *liquidation.Document, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRecordsSheet(f, doc); err != nil {
		return err
	}
	if err := writeExerciseSheet(f, doc); err != nil {
		return err
	}
	if err := writeTotalsSheet(f, doc); err != nil {
		return err
	}

	// The default sheet excelize creates is replaced by ours.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheetRecords); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func amountStyle(f *excelize.File) (int, error) {
	fmtStr := amountNumFmt
	return f.NewStyle(&excelize.Style{CustomNumFmt: &fmtStr})
}

func fillStyle(f *excelize.File, color string) (int, error) {
	fmtStr := amountNumFmt
	return f.NewStyle(&excelize.Style{
		CustomNumFmt: &fmtStr,
		Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
}

func writeRecordsSheet(f *excelize.File, doc *liquidation.Document) error {
	if _, err := f.NewSheet(sheetRecords); err != nil {
		return err
	}

	headers := []string{"Ejercicio", "Concepto", "Clave C", "Clave R", "Cargo", "Datas", "Voluntaria", "Ejecutiva", "Pendiente"}
	for i, h := range headers {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetRecords, cellRef, h); err != nil {
			return err
		}
	}

	style, err := amountStyle(f)
	if err != nil {
		return err
	}

	for rowIdx, rec := range doc.Records {
		row := rowIdx + 2
		values := []any{
			rec.Ejercicio, rec.Concepto, rec.ClaveC, rec.ClaveR,
			toFloat(rec.Cargo), toFloat(rec.Datas), toFloat(rec.Voluntaria),
			toFloat(rec.Ejecutiva), toFloat(rec.Pendiente),
		}
		for colIdx, v := range values {
			cellRef, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			if err := f.SetCellValue(sheetRecords, cellRef, v); err != nil {
				return err
			}
		}
		first, _ := excelize.CoordinatesToCellName(5, row)
		last, _ := excelize.CoordinatesToCellName(9, row)
		if err := f.SetCellStyle(sheetRecords, first, last, style); err != nil {
			return err
		}
	}
	return nil
}

func writeExerciseSheet(f *excelize.File, doc *liquidation.Document) error {
	if _, err := f.NewSheet(sheetExercises); err != nil {
		return err
	}

	headers := []string{
		"Ejercicio", "Estado",
		"Cargo calc.", "Cargo doc.",
		"Datas calc.", "Datas doc.",
		"Voluntaria calc.", "Voluntaria doc.",
		"Ejecutiva calc.", "Ejecutiva doc.",
		"Pendiente calc.", "Pendiente doc.",
		"Errores",
	}
	for i, h := range headers {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetExercises, cellRef, h); err != nil {
			return err
		}
	}

	validStyle, err := fillStyle(f, "C6EFCE")
	if err != nil {
		return err
	}
	invalidStyle, err := fillStyle(f, "FFC7CE")
	if err != nil {
		return err
	}

	results := doc.ValidateExerciseSummaries()
	years := make([]int, 0, len(results))
	for y := range results {
		years = append(years, y)
	}
	sort.Ints(years)

	for i, year := range years {
		res := results[year]
		row := i + 2
		values := []any{
			res.Ejercicio, string(res.Status),
			toFloat(res.CalcCargo), toFloat(res.DocCargo),
			toFloat(res.CalcDatas), toFloat(res.DocDatas),
			toFloat(res.CalcVoluntaria), toFloat(res.DocVoluntaria),
			toFloat(res.CalcEjecutiva), toFloat(res.DocEjecutiva),
			toFloat(res.CalcPendiente), toFloat(res.DocPendiente),
			joinErrors(res.Errors),
		}
		for colIdx, v := range values {
			cellRef, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			if err := f.SetCellValue(sheetExercises, cellRef, v); err != nil {
				return err
			}
		}

		style := validStyle
		if !res.IsValid {
			style = invalidStyle
		}
		first, _ := excelize.CoordinatesToCellName(3, row)
		last, _ := excelize.CoordinatesToCellName(12, row)
		if err := f.SetCellStyle(sheetExercises, first, last, style); err != nil {
			return err
		}
	}
	return nil
}

func writeTotalsSheet(f *excelize.File, doc *liquidation.Document) error {
	if _, err := f.NewSheet(sheetTotals); err != nil {
		return err
	}

	rows := []struct {
		label string
		value any
	}{
		{"Registros extraídos", doc.TotalRecords()},
		{"Filas descartadas", doc.DroppedRows},
		{"Totales declarados", doc.Totals.Declared},
		{"Cargo", toFloat(doc.Totals.Cargo)},
		{"Datas", toFloat(doc.Totals.Datas)},
		{"Voluntaria", toFloat(doc.Totals.Voluntaria)},
		{"Ejecutiva", toFloat(doc.Totals.Ejecutiva)},
		{"Pendiente", toFloat(doc.Totals.Pendiente)},
	}
	for i, r := range rows {
		labelRef, _ := excelize.CoordinatesToCellName(1, i+1)
		valueRef, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(sheetTotals, labelRef, r.label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetTotals, valueRef, r.value); err != nil {
			return err
		}
	}

	for i, msg := range doc.ValidateTotals() {
		cellRef, _ := excelize.CoordinatesToCellName(1, len(rows)+2+i)
		if err := f.SetCellValue(sheetTotals, cellRef, msg); err != nil {
			return err
		}
	}
	return nil
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func joinErrors(errs []string) string {
	out := ""
	for i, e := range errs {
		if i > 0 {
			out += "; "
		}
		out += e
	}
	return out
}
