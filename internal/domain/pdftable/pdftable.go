// Package pdftable is the table-detection collaborator: it reads a
// native-text PDF and yields pages of raw cell grids for the extraction
// engine. Scanned (image-only) documents are out of scope; they produce
// no rows and surface as ErrNoTables.
package pdftable

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Table is one detected grid of raw cell strings.
type Table [][]string

// Page carries the tables detected on one PDF page plus its plain text,
// which the engine uses for header metadata.
type Page struct {
	Number int
	Text   string
	Tables []Table
}

// Strategy selects the column-clustering heuristic. The token is opaque
// to the extraction engine and forwarded here untouched.
type Strategy string

const (
	// StrategyText clusters words into cells by horizontal gaps within
	// each row independently.
	StrategyText Strategy = "text"
	// StrategyLines derives global column edges from the densest row of
	// the page and snaps every row to them.
	StrategyLines Strategy = "lines"
)

// ErrNoTables means no table structure was recognized on any page.
var ErrNoTables = errors.New("no tables detected in document")

// ErrUnknownStrategy rejects strategy tokens this detector cannot honor.
var ErrUnknownStrategy = errors.New("unknown table detection strategy")

// gapThreshold is the horizontal distance, in text-space units, that
// separates two words into different cells.
const gapThreshold = 18.0

// Detector turns a PDF file into pages of cell grids.
type Detector struct {
	strategy Strategy
	logger   *slog.Logger
}

// NewDetector builds a detector for the given strategy.
func NewDetector(strategy Strategy, logger *slog.Logger) (*Detector, error) {
	switch strategy {
	case StrategyText, StrategyLines:
		return &Detector{strategy: strategy, logger: logger}, nil
	case "":
		return &Detector{strategy: StrategyText, logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// DetectFile reads and analyzes a PDF from disk.
func (d *Detector) DetectFile(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()
	return d.detect(reader)
}

// word is a positioned text fragment on a page.
type word struct {
	x float64
	s string
}

type textRow struct {
	y     float64
	words []word
}

func (d *Detector) detect(reader *pdf.Reader) ([]Page, error) {
	numPages := reader.NumPage()
	pages := make([]Page, 0, numPages)
	tablesFound := 0

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		p := reader.Page(pageNum)
		if p.V.IsNull() {
			continue
		}

		rows := collectRows(p)
		page := Page{
			Number: pageNum,
			Text:   joinText(rows),
			Tables: d.buildTables(rows),
		}
		tablesFound += len(page.Tables)
		pages = append(pages, page)

		if d.logger != nil {
			d.logger.Debug("page analyzed",
				slog.Int("page", pageNum),
				slog.Int("rows", len(rows)),
				slog.Int("tables", len(page.Tables)))
		}
	}

	if tablesFound == 0 {
		return nil, ErrNoTables
	}
	return pages, nil
}

// collectRows groups the page's positioned text into visual rows ordered
// top to bottom, words ordered left to right.
func collectRows(p pdf.Page) []textRow {
	pdfRows, err := p.GetTextByRow()
	if err != nil {
		return nil
	}

	rows := make([]textRow, 0, len(pdfRows))
	for _, r := range pdfRows {
		tr := textRow{y: float64(r.Position)}
		for _, t := range r.Content {
			s := strings.TrimSpace(t.S)
			if s == "" {
				continue
			}
			tr.words = append(tr.words, word{x: t.X, s: s})
		}
		if len(tr.words) == 0 {
			continue
		}
		sort.Slice(tr.words, func(i, j int) bool { return tr.words[i].x < tr.words[j].x })
		rows = append(rows, tr)
	}
	// GetTextByRow yields rows ordered by descending position (PDF origin
	// is bottom-left); flip to reading order.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })
	return rows
}

// buildTables converts rows into cell grids. A contiguous run of rows
// with at least two cells forms one table; isolated single-cell rows are
// narrative text and stay out of the grids.
func (d *Detector) buildTables(rows []textRow) []Table {
	var edges []float64
	if d.strategy == StrategyLines {
		edges = columnEdges(rows)
	}

	var tables []Table
	var current Table
	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, row := range rows {
		var cells []string
		if d.strategy == StrategyLines && len(edges) >= 2 {
			cells = snapToEdges(row.words, edges)
		} else {
			cells = clusterByGap(row.words)
		}
		if len(cells) >= 2 {
			current = append(current, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}

// clusterByGap splits a row's words into cells wherever the horizontal
// distance between consecutive words exceeds the gap threshold.
func clusterByGap(words []word) []string {
	if len(words) == 0 {
		return nil
	}
	var cells []string
	var sb strings.Builder
	sb.WriteString(words[0].s)
	prevEnd := words[0].x + approxWidth(words[0].s)

	for _, w := range words[1:] {
		if w.x-prevEnd > gapThreshold {
			cells = append(cells, sb.String())
			sb.Reset()
		} else if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(w.s)
		prevEnd = w.x + approxWidth(w.s)
	}
	cells = append(cells, sb.String())
	return cells
}

// columnEdges derives global column start positions from the densest row
// of the page, quantized so nearby starts collapse into one edge.
func columnEdges(rows []textRow) []float64 {
	var densest []string
	var densestWords []word
	for _, r := range rows {
		cells := clusterByGap(r.words)
		if len(cells) > len(densest) {
			densest = cells
			densestWords = r.words
		}
	}
	if len(densest) < 2 {
		return nil
	}

	edges := make([]float64, 0, len(densest))
	prevEnd := -1.0
	for _, w := range densestWords {
		if prevEnd < 0 || w.x-prevEnd > gapThreshold {
			edges = append(edges, w.x)
		}
		prevEnd = w.x + approxWidth(w.s)
	}
	sort.Float64s(edges)
	return edges
}

// snapToEdges assigns each word to the column whose edge is closest on
// the left, producing a fixed-width cell row.
func snapToEdges(words []word, edges []float64) []string {
	cells := make([]string, len(edges))
	for _, w := range words {
		col := 0
		for i, e := range edges {
			if w.x+2 >= e {
				col = i
			}
		}
		if cells[col] != "" {
			cells[col] += " "
		}
		cells[col] += w.s
	}
	return cells
}

// approxWidth estimates rendered width from rune count. Good enough for
// gap detection; exact glyph metrics are not required.
func approxWidth(s string) float64 {
	return float64(len([]rune(s))) * 5.5
}

func joinText(rows []textRow) string {
	var sb strings.Builder
	for _, r := range rows {
		for i, w := range r.words {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(w.s)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
