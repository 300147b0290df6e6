package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// RowKind is the closed set of row classifications. Every consumer
// switches exhaustively over it; nothing falls through to a silent
// default.
type RowKind int

const (
	KindUnrecognized RowKind = iota
	KindHeader
	KindDocumentTotal
	KindExerciseTotal
	KindData
	KindPartialConcept
	KindEmpty
)

func (k RowKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindDocumentTotal:
		return "document_total"
	case KindExerciseTotal:
		return "exercise_total"
	case KindData:
		return "data"
	case KindPartialConcept:
		return "partial_concept"
	case KindEmpty:
		return "empty"
	default:
		return "unrecognized"
	}
}

// Classified pairs a raw row with its kind. Year is set only for
// exercise-total rows.
type Classified struct {
	Kind  RowKind
	Year  int
	Cells []string
}

var yearRe = regexp.MustCompile(`(\d{4})`)

// Classifier assigns a RowKind to each raw table row. It keys off
// semantic markers and data density rather than fixed column indices, so
// it tolerates column-count drift between pages.
type Classifier struct {
	cfg Config
}

// NewClassifier builds a classifier for one extraction run.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify tags one row of cell strings.
func (c *Classifier) Classify(cells []string) Classified {
	out := Classified{Kind: KindUnrecognized, Cells: cells}

	if allBlank(cells) {
		out.Kind = KindEmpty
		return out
	}

	conceptRegion := c.conceptRegion(cells)
	upperConcept := strings.ToUpper(conceptRegion)

	if strings.Contains(upperConcept, strings.ToUpper(c.cfg.ExerciseTotalMarker)) {
		if year, ok := c.extractYear(cells); ok {
			out.Kind = KindExerciseTotal
			out.Year = year
			return out
		}
		// A total marker without a year token is a layout we don't know.
		return out
	}

	if strings.Contains(upperConcept, strings.ToUpper(c.cfg.DocumentTotalMarker)) {
		out.Kind = KindDocumentTotal
		return out
	}

	if c.isHeader(cells) {
		out.Kind = KindHeader
		return out
	}

	concept := cell(cells, c.cfg.Layout.Concepto)
	hasConcept := !IsBlank(concept)
	parsed, blank := c.amountDensity(cells)

	switch {
	case parsed > 0:
		// A wrapped concept can leave the continuation's concept cell
		// empty; the merger fills it from the pending row, and the row
		// parser rejects figures-only rows that arrive with nothing
		// pending.
		out.Kind = KindData
	case hasConcept && blank:
		out.Kind = KindPartialConcept
	}
	return out
}

// isHeader reports whether enough configured keyword cells appear. Two
// fuzzy keyword hits are required so a data row whose concept happens to
// contain one keyword is not misread.
func (c *Classifier) isHeader(cells []string) bool {
	hits := 0
	for _, raw := range cells {
		s := strings.ToUpper(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		for _, kw := range c.cfg.HeaderKeywords {
			if fuzzy.MatchNormalizedFold(kw, s) {
				hits++
				break
			}
		}
	}
	return hits >= 2
}

// amountDensity counts figure cells that parse as amounts and reports
// whether every figure cell is blank.
func (c *Classifier) amountDensity(cells []string) (parsed int, allFiguresBlank bool) {
	first := c.cfg.Layout.FirstAmountColumn()
	if first >= len(cells) {
		return 0, true
	}
	allFiguresBlank = true
	for _, raw := range cells[first:] {
		if IsBlank(raw) {
			continue
		}
		allFiguresBlank = false
		if _, ok, err := ParseAmount(raw, c.cfg.Dialect); err == nil && ok {
			parsed++
		}
	}
	return parsed, allFiguresBlank
}

// conceptRegion joins the non-figure cells, where total markers print.
func (c *Classifier) conceptRegion(cells []string) string {
	first := c.cfg.Layout.FirstAmountColumn()
	if first > len(cells) {
		first = len(cells)
	}
	return strings.Join(cells[:first], " ")
}

// extractYear scans the concept region cells for a plausible fiscal year
// token.
func (c *Classifier) extractYear(cells []string) (int, bool) {
	limit := c.cfg.Layout.FirstAmountColumn()
	if limit > len(cells) {
		limit = len(cells)
	}
	for _, raw := range cells[:limit] {
		for _, m := range yearRe.FindAllString(raw, -1) {
			year, err := strconv.Atoi(m)
			if err != nil {
				continue
			}
			if year >= c.cfg.YearMin && year <= c.cfg.YearMax {
				return year, true
			}
		}
	}
	return 0, false
}

func allBlank(cells []string) bool {
	for _, raw := range cells {
		if !IsBlank(raw) {
			return false
		}
	}
	return true
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}
