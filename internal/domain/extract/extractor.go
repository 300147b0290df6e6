package extract

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
	"github.com/FACorreiaa/liquidation-engine/internal/domain/pdftable"
)

// ErrMalformedDocument means no table was recognized on any page;
// extraction aborts and nothing is returned.
var ErrMalformedDocument = errors.New("malformed document: no tables recognized on any page")

// Extractor drives one extraction run: classification, partial-row
// merging, record parsing, exercise summaries and grand totals. It is
// synchronous and single-threaded; the merger carries one row of state
// forward, which forbids reordering or parallel row consumption.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// NewExtractor builds an extractor. The config is the complete parameter
// object for the run; nothing else is read.
func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// ExtractDocument consumes the detected pages and materializes the
// liquidation document. Per-row failures drop the row and continue;
// only a document with no tables at all is fatal.
func (e *Extractor) ExtractDocument(pages []pdftable.Page) (*liquidation.Document, error) {
	if !hasTables(pages) {
		return nil, ErrMalformedDocument
	}

	cfg := e.cfg
	if cfg.Dialect == DialectUnknown {
		cfg.Dialect = ProbeDialect(sampleAmountCells(pages, cfg.Layout))
		e.logger.Info("amount dialect probed", slog.String("dialect", cfg.Dialect.String()))
	}

	classifier := NewClassifier(cfg)
	rows := NewRowParser(cfg)
	merger := NewMerger(cfg, e.logger)
	summaries := NewSummaryExtractor(rows)

	var (
		records  []liquidation.TributeRecord
		totals   liquidation.GrandTotals
		warnings []liquidation.Warning
		dropped  int
	)

	var header liquidation.Header
	if len(pages) > 0 {
		header = ParseHeader(pages[0].Text)
	}
	// Rows with no recoverable year in their clave cells fall back to the
	// document's header year. Section totals close the year above them;
	// they say nothing about the rows that follow.
	yearContext := header.Ejercicio

	for _, page := range pages {
		for _, table := range page.Tables {
			for _, rawRow := range table {
				classified := classifier.Classify(rawRow)

				switch classified.Kind {
				case KindUnrecognized:
					warnings = append(warnings, liquidation.Warning{
						Code:    liquidation.WarnUnrecognizedRow,
						Message: fmt.Sprintf("page %d: unrecognized row %q", page.Number, rawRow),
					})
					e.logger.Warn("dropping unrecognized row",
						slog.Int("page", page.Number),
						slog.Any("cells", rawRow))
					merger.Push(classified)
					continue

				case KindEmpty:
					merger.Push(classified)
					continue

				case KindHeader:
					merger.Push(classified)
					continue

				case KindExerciseTotal:
					merger.Push(classified)
					if err := summaries.Add(classified.Year, classified.Cells); err != nil {
						var dup *DuplicateSummaryError
						if errors.As(err, &dup) {
							warnings = append(warnings, liquidation.Warning{
								Code:    liquidation.WarnDuplicateSummary,
								Message: err.Error(),
							})
							e.logger.Warn("ignoring duplicate exercise total",
								slog.Int("ejercicio", dup.Ejercicio))
						} else {
							dropped++
							warnings = append(warnings, liquidation.Warning{
								Code:    liquidation.WarnDroppedRow,
								Message: fmt.Sprintf("page %d: %v", page.Number, err),
							})
						}
					}
					continue

				case KindDocumentTotal:
					merger.Push(classified)
					e.parseGrandTotals(rows, classified.Cells, page.Number, &totals, &warnings)
					continue

				case KindData, KindPartialConcept:
					complete := merger.Push(classified)
					if complete == nil {
						continue
					}
					rec, err := rows.ParseRow(complete, yearContext)
					if err != nil {
						dropped++
						warnings = append(warnings, liquidation.Warning{
							Code:    liquidation.WarnDroppedRow,
							Message: fmt.Sprintf("page %d: %v", page.Number, err),
						})
						e.logger.Warn("dropping unparseable data row",
							slog.Int("page", page.Number),
							slog.String("reason", err.Error()))
						continue
					}
					records = append(records, rec)
				}
			}
		}
	}

	merger.Flush()
	warnings = append(warnings, merger.Warnings()...)

	doc := liquidation.NewDocument(header, records, summaries.Summaries(), totals, warnings, dropped)
	e.logger.Info("extraction complete",
		slog.Int("records", len(doc.Records)),
		slog.Int("summaries", len(doc.Summaries)),
		slog.Int("dropped_rows", doc.DroppedRows),
		slog.Int("warnings", len(doc.Warnings)))
	return doc, nil
}

// parseGrandTotals reads the document-level total row. The first
// recognized row wins; later ones are reported, mirroring duplicate
// exercise totals.
func (e *Extractor) parseGrandTotals(rows *RowParser, cells []string, pageNum int, totals *liquidation.GrandTotals, warnings *[]liquidation.Warning) {
	if totals.Declared {
		*warnings = append(*warnings, liquidation.Warning{
			Code:    liquidation.WarnDuplicateSummary,
			Message: fmt.Sprintf("page %d: duplicate document total row ignored", pageNum),
		})
		return
	}
	cargo, datas, voluntaria, ejecutiva, pendiente, err := rows.parseAmountRow(cells)
	if err != nil {
		*warnings = append(*warnings, liquidation.Warning{
			Code:    liquidation.WarnDroppedRow,
			Message: fmt.Sprintf("page %d: document total row: %v", pageNum, err),
		})
		return
	}
	totals.Declared = true
	totals.Cargo = cargo
	totals.Datas = datas
	totals.Voluntaria = voluntaria
	totals.Ejecutiva = ejecutiva
	totals.Pendiente = pendiente
}

func hasTables(pages []pdftable.Page) bool {
	for _, p := range pages {
		for _, t := range p.Tables {
			if len(t) > 0 {
				return true
			}
		}
	}
	return false
}

// sampleAmountCells gathers figure-region cells from the first pages for
// dialect probing.
func sampleAmountCells(pages []pdftable.Page, layout ColumnLayout) []string {
	const maxSamples = 200
	first := layout.FirstAmountColumn()
	var samples []string
	for _, page := range pages {
		for _, table := range page.Tables {
			for _, row := range table {
				if first >= len(row) {
					continue
				}
				samples = append(samples, row[first:]...)
				if len(samples) >= maxSamples {
					return samples
				}
			}
		}
	}
	return samples
}
