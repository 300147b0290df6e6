package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
)

// Merger stitches concept-only rows (wrapped text, no figures) together
// with the following figures-only row. The pending buffer holds exactly
// one row; a continuation may cross a table or page boundary, so one
// merger instance serves the whole document stream.
type Merger struct {
	cfg     Config
	logger  *slog.Logger
	pending []string

	warnings []liquidation.Warning
}

// NewMerger builds a merger for one extraction run.
func NewMerger(cfg Config, logger *slog.Logger) *Merger {
	return &Merger{cfg: cfg, logger: logger}
}

// Push feeds one classified row through the merger and returns the cells
// of a complete row ready for parsing, or nil when the row was absorbed
// or skipped. Structural rows (header, totals) flush an orphaned pending
// concept, since a continuation never spans a structural boundary.
func (m *Merger) Push(row Classified) []string {
	switch row.Kind {
	case KindPartialConcept:
		if m.pending != nil {
			// Two concepts with no intervening figures is a malformed
			// document; keep the newer one.
			m.warn(liquidation.WarnPartialConflict, fmt.Sprintf(
				"partial concept %q superseded by %q before any figures arrived",
				cell(m.pending, m.cfg.Layout.Concepto), cell(row.Cells, m.cfg.Layout.Concepto)))
		}
		m.pending = row.Cells
		return nil

	case KindData:
		if m.pending == nil {
			return row.Cells
		}
		merged := m.merge(m.pending, row.Cells)
		m.pending = nil
		return merged

	case KindHeader, KindExerciseTotal, KindDocumentTotal:
		m.dropOrphan(row.Kind.String())
		return row.Cells

	case KindEmpty, KindUnrecognized:
		// Inter-row spacing and noise never disturb the pending buffer.
		return nil

	default:
		return nil
	}
}

// Flush discards a pending concept left over at end of input.
func (m *Merger) Flush() {
	m.dropOrphan("end of document")
}

// Warnings returns the anomalies observed so far, in order.
func (m *Merger) Warnings() []liquidation.Warning {
	return m.warnings
}

// merge combines a pending concept row with its continuation: the pending
// row contributes the leading concept text, the continuation contributes
// its figures and any trailing concept text. For every other column the
// continuation wins when non-blank.
func (m *Merger) merge(pending, continuation []string) []string {
	size := len(pending)
	if len(continuation) > size {
		size = len(continuation)
	}
	merged := make([]string, size)

	conceptIdx := m.cfg.Layout.Concepto
	pc := cell(pending, conceptIdx)
	cc := cell(continuation, conceptIdx)
	switch {
	case pc != "" && cc != "":
		merged[conceptIdx] = pc + " " + cc
	case pc != "":
		merged[conceptIdx] = pc
	default:
		merged[conceptIdx] = cc
	}

	for i := 0; i < size; i++ {
		if i == conceptIdx {
			continue
		}
		cv := cell(continuation, i)
		pv := cell(pending, i)
		if cv != "" {
			merged[i] = cv
		} else {
			merged[i] = pv
		}
	}
	return merged
}

func (m *Merger) dropOrphan(boundary string) {
	if m.pending == nil {
		return
	}
	m.warn(liquidation.WarnOrphanedPartial, fmt.Sprintf(
		"discarding orphaned partial concept %q at %s",
		cell(m.pending, m.cfg.Layout.Concepto), boundary))
	m.pending = nil
}

func (m *Merger) warn(code liquidation.WarningCode, msg string) {
	m.warnings = append(m.warnings, liquidation.Warning{Code: code, Message: msg})
	if m.logger != nil {
		m.logger.Warn("partial row anomaly",
			slog.String("code", string(code)),
			slog.String("detail", msg))
	}
}

// HasPending reports whether a concept is waiting for its figures.
func (m *Merger) HasPending() bool {
	return m.pending != nil
}

// PendingConcept returns the buffered concept text for diagnostics.
func (m *Merger) PendingConcept() string {
	if m.pending == nil {
		return ""
	}
	return strings.TrimSpace(cell(m.pending, m.cfg.Layout.Concepto))
}
