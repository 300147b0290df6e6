package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
)

func sampleDocument() *liquidation.Document {
	dec := decimal.RequireFromString
	return liquidation.NewDocument(
		liquidation.Header{
			Ejercicio:         2023,
			Entidad:           "AYUNTAMIENTO DE EJEMPLO",
			CodigoEntidad:     "041",
			NumeroLiquidacion: "987654",
		},
		[]liquidation.TributeRecord{
			{Ejercicio: 2023, Concepto: "IBI URBANA", ClaveC: "112", ClaveR: "04/2023/400100",
				Cargo: dec("1500.00"), Voluntaria: dec("800.00"), Ejecutiva: dec("200.00"), Pendiente: dec("500.00")},
			{Ejercicio: 2023, Concepto: "IBI URBANA", ClaveC: "112", ClaveR: "04/2023/400200",
				Cargo: dec("100.00"), Voluntaria: dec("50.00"), Pendiente: dec("50.00")},
			{Ejercicio: 2022, Concepto: "TASA BASURA", ClaveC: "310", ClaveR: "04/2022/310200",
				Cargo: dec("900.00"), Voluntaria: dec("600.00"), Ejecutiva: dec("100.00"), Pendiente: dec("200.00")},
		},
		map[int]liquidation.ExerciseSummary{
			2023: {Ejercicio: 2023, Cargo: dec("1600.00"), Voluntaria: dec("850.00"), Ejecutiva: dec("200.00"), Pendiente: dec("550.00")},
			2022: {Ejercicio: 2022, Cargo: dec("999.99"), Voluntaria: dec("600.00"), Ejecutiva: dec("100.00"), Pendiente: dec("200.00")},
		},
		liquidation.GrandTotals{
			Declared: true,
			Cargo:    dec("2500.00"), Voluntaria: dec("1450.00"), Ejecutiva: dec("300.00"), Pendiente: dec("750.00"),
		},
		[]liquidation.Warning{{Code: liquidation.WarnDuplicateSummary, Message: "page 3: duplicate document total row ignored"}},
		1,
	)
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(sampleDocument(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{sheetRecords, sheetExercises, sheetTotals}, f.GetSheetList())

	t.Run("records sheet", func(t *testing.T) {
		v, err := f.GetCellValue(sheetRecords, "A1")
		require.NoError(t, err)
		assert.Equal(t, "Ejercicio", v)

		v, err = f.GetCellValue(sheetRecords, "B2")
		require.NoError(t, err)
		assert.Equal(t, "IBI URBANA", v)

		rows, err := f.GetRows(sheetRecords)
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("exercise sheet flags the discrepant year", func(t *testing.T) {
		rows, err := f.GetRows(sheetExercises)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		// Row 2 is 2022, which disagrees with its summary by 99.99.
		assert.Equal(t, "2022", rows[1][0])
		assert.Contains(t, rows[1][len(rows[1])-1], "cargo")

		assert.Equal(t, "2023", rows[2][0])
	})

	t.Run("totals sheet", func(t *testing.T) {
		v, err := f.GetCellValue(sheetTotals, "A1")
		require.NoError(t, err)
		assert.Equal(t, "Registros extraídos", v)

		v, err = f.GetCellValue(sheetTotals, "B1")
		require.NoError(t, err)
		assert.Equal(t, "3", v)
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(sampleDocument(), &buf))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)

	assert.Contains(t, lines[0], "ejercicio")
	assert.Contains(t, lines[0], "clave_recaudacion")
	assert.Contains(t, lines[0], "pendiente_total")
	assert.Contains(t, lines[1], "IBI URBANA")
	assert.Contains(t, lines[1], "04/2023/400100")
	assert.Contains(t, lines[3], "TASA BASURA")
}

func TestWriteCSV_EmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	doc := liquidation.NewDocument(liquidation.Header{}, nil, nil, liquidation.GrandTotals{}, nil, 0)
	require.NoError(t, WriteCSV(doc, &buf))
	assert.Contains(t, buf.String(), "ejercicio")
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(sampleDocument(), &buf))

	out := buf.String()
	assert.Contains(t, out, "AYUNTAMIENTO DE EJEMPLO")
	assert.Contains(t, out, "IBI URBANA")
	assert.Contains(t, out, "TASA BASURA")
	assert.Contains(t, out, "€1,500.00")
	assert.Contains(t, out, `class="invalid"`)
	assert.Contains(t, out, `class="valid"`)
	assert.Contains(t, out, "duplicate document total row ignored")

	// Grouping: both IBI URBANA records sit under one caption.
	assert.Equal(t, 1, strings.Count(out, "<caption>IBI URBANA</caption>"))
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	path := t.TempDir() + "/out.bin"
	err := WriteFile(sampleDocument(), "pdf", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}
