package extract

import (
	"fmt"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
)

// DuplicateSummaryError reports a second exercise-total row for a year
// that already has one. The later occurrence is ignored; this is recorded
// on the document, not fatal.
type DuplicateSummaryError struct {
	Ejercicio int
}

func (e *DuplicateSummaryError) Error() string {
	return fmt.Sprintf("duplicate exercise total for ejercicio %d", e.Ejercicio)
}

// SummaryExtractor materializes exercise-total rows into one
// ExerciseSummary per fiscal year.
type SummaryExtractor struct {
	rows      *RowParser
	summaries map[int]liquidation.ExerciseSummary
}

// NewSummaryExtractor builds a summary extractor sharing the run's row
// parser.
func NewSummaryExtractor(rows *RowParser) *SummaryExtractor {
	return &SummaryExtractor{
		rows:      rows,
		summaries: make(map[int]liquidation.ExerciseSummary),
	}
}

// Add parses the amount cells of an exercise-total row keyed by year.
// Returns DuplicateSummaryError when the year already has a summary; the
// existing summary is kept.
func (s *SummaryExtractor) Add(year int, cells []string) error {
	if _, exists := s.summaries[year]; exists {
		return &DuplicateSummaryError{Ejercicio: year}
	}

	cargo, datas, voluntaria, ejecutiva, pendiente, err := s.rows.parseAmountRow(cells)
	if err != nil {
		return fmt.Errorf("exercise total for %d: %w", year, err)
	}

	s.summaries[year] = liquidation.ExerciseSummary{
		Ejercicio:  year,
		Cargo:      cargo,
		Datas:      datas,
		Voluntaria: voluntaria,
		Ejecutiva:  ejecutiva,
		Pendiente:  pendiente,
	}
	return nil
}

// Summaries returns the extracted map, keyed by fiscal year.
func (s *SummaryExtractor) Summaries() map[int]liquidation.ExerciseSummary {
	return s.summaries
}
