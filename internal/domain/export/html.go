package export

import (
	"fmt"
	"html/template"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
	"github.com/FACorreiaa/liquidation-engine/pkg/money"
)

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"eur": func(d decimal.Decimal) string { return money.DisplayEUR(d) },
}).Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>Liquidación {{.Header.Ejercicio}} {{.Header.Entidad}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 2rem; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
caption { font-weight: bold; text-align: left; padding: 6px 0; }
tr.valid td { background: #e7f6e7; }
tr.invalid td { background: #fbe3e4; }
.warnings li { color: #8a6d3b; }
</style>
</head>
<body>
<h1>Liquidación de recaudación</h1>
{{with .Header}}
<p>
{{if .Entidad}}{{.Entidad}} ({{.CodigoEntidad}})<br>{{end}}
{{if .MandamientoPago}}Mandamiento de pago: {{.MandamientoPago}}<br>{{end}}
{{if .NumeroLiquidacion}}Número de liquidación: {{.NumeroLiquidacion}}<br>{{end}}
{{if .FirmadoPor}}Firmado por: {{.FirmadoPor}}{{end}}
</p>
{{end}}

{{range .Concepts}}
<table>
<caption>{{.Name}}</caption>
<tr><th>Ejercicio</th><th>Clave R</th><th>Cargo</th><th>Datas</th><th>Voluntaria</th><th>Ejecutiva</th><th>Pendiente</th></tr>
{{range .Records}}
<tr>
<td>{{.Ejercicio}}</td><td>{{.ClaveR}}</td>
<td>{{eur .Cargo}}</td><td>{{eur .Datas}}</td><td>{{eur .Voluntaria}}</td>
<td>{{eur .Ejecutiva}}</td><td>{{eur .Pendiente}}</td>
</tr>
{{end}}
</table>
{{end}}

<table>
<caption>Conciliación por ejercicio</caption>
<tr><th>Ejercicio</th><th>Estado</th><th>Cargo</th><th>Datas</th><th>Voluntaria</th><th>Ejecutiva</th><th>Pendiente</th><th>Errores</th></tr>
{{range .Exercises}}
<tr class="{{if .IsValid}}valid{{else}}invalid{{end}}">
<td>{{.Ejercicio}}</td><td>{{.Status}}</td>
<td>{{eur .CalcCargo}}</td><td>{{eur .CalcDatas}}</td><td>{{eur .CalcVoluntaria}}</td>
<td>{{eur .CalcEjecutiva}}</td><td>{{eur .CalcPendiente}}</td>
<td>{{range .Errors}}{{.}}<br>{{end}}</td>
</tr>
{{end}}
</table>

{{if .Warnings}}
<h2>Avisos</h2>
<ul class="warnings">
{{range .Warnings}}<li>[{{.Code}}] {{.Message}}</li>{{end}}
</ul>
{{end}}
</body>
</html>
`))

type conceptGroup struct {
	Name    string
	Records []liquidation.TributeRecord
}

type reportData struct {
	Header    liquidation.Header
	Concepts  []conceptGroup
	Exercises []liquidation.ExerciseValidationResult
	Warnings  []liquidation.Warning
}

// WriteHTML renders a standalone, self-styled reconciliation report with
// records grouped by accounting concept.
func WriteHTML(doc *liquidation.Document, w io.Writer) error {
	data := reportData{
		Header:   doc.Header,
		Concepts: groupByConcept(doc.Records),
		Warnings: doc.Warnings,
	}

	results := doc.ValidateExerciseSummaries()
	years := make([]int, 0, len(results))
	for y := range results {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		data.Exercises = append(data.Exercises, results[y])
	}

	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}

// groupByConcept preserves first-appearance order of concepts and
// extraction order of records within each concept.
func groupByConcept(records []liquidation.TributeRecord) []conceptGroup {
	index := make(map[string]int)
	var groups []conceptGroup
	for _, r := range records {
		i, ok := index[r.Concepto]
		if !ok {
			i = len(groups)
			index[r.Concepto] = i
			groups = append(groups, conceptGroup{Name: r.Concepto})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
