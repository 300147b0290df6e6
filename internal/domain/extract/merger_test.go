package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
)

func classify(t *testing.T, cells []string) Classified {
	t.Helper()
	return NewClassifier(DefaultConfig()).Classify(cells)
}

func TestMerger_Push(t *testing.T) {
	t.Run("complete data row passes through untouched", func(t *testing.T) {
		m := NewMerger(DefaultConfig(), nil)
		row := []string{"IBI URBANA", "112", "04/2023/400100", "1.500,00", "0,00", "800,00", "200,00", "500,00"}

		out := m.Push(classify(t, row))
		assert.Equal(t, row, out)
		assert.False(t, m.HasPending())
	})

	t.Run("partial concept merges with following figures row", func(t *testing.T) {
		m := NewMerger(DefaultConfig(), nil)

		out := m.Push(classify(t, []string{"IMPUESTO SOBRE VEHICULOS DE", "", "", "", "", "", "", ""}))
		assert.Nil(t, out)
		require.True(t, m.HasPending())
		assert.Equal(t, "IMPUESTO SOBRE VEHICULOS DE", m.PendingConcept())

		out = m.Push(classify(t, []string{"TRACCION MECANICA", "130", "04/2023/130100", "900,00", "", "600,00", "100,00", "200,00"}))
		require.NotNil(t, out)
		assert.Equal(t, "IMPUESTO SOBRE VEHICULOS DE TRACCION MECANICA", out[0])
		assert.Equal(t, "130", out[1])
		assert.Equal(t, "900,00", out[3])
		assert.False(t, m.HasPending())
		assert.Empty(t, m.Warnings())
	})

	t.Run("partial concept merges with a figures-only continuation", func(t *testing.T) {
		m := NewMerger(DefaultConfig(), nil)

		m.Push(classify(t, []string{"IBI RUSTICA (cont.)", "", "", "", "", "", "", ""}))
		out := m.Push(classify(t, []string{"", "", "", "100,00", "0,00", "50,00", "0,00", "0,00"}))

		require.NotNil(t, out)
		assert.Equal(t, "IBI RUSTICA (cont.)", out[0])
		assert.Equal(t, "100,00", out[3])
		assert.Equal(t, "50,00", out[5])
		assert.False(t, m.HasPending())
		assert.Empty(t, m.Warnings())
	})

	t.Run("figures-only row with nothing pending passes through", func(t *testing.T) {
		m := NewMerger(DefaultConfig(), nil)
		row := []string{"", "", "", "100,00", "0,00", "50,00", "0,00", "0,00"}
		assert.Equal(t, row, m.Push(classify(t, row)))
	})

	t.Run("empty and unrecognized rows keep the pending buffer", func(t *testing.T) {
		m := NewMerger(DefaultConfig(), nil)

		m.Push(classify(t, []string{"RECARGO PROVINCIAL SOBRE", "", "", "", "", "", "", ""}))
		m.Push(classify(t, []string{"", "", "", "", "", "", "", ""}))
		m.Push(Classified{Kind: KindUnrecognized, Cells: []string{"noise", "??", "??", "??"}})
		require.True(t, m.HasPending())

		out := m.Push(classify(t, []string{"EL IAE", "114", "04/2023/114000", "50,00", "", "", "", "50,00"}))
		require.NotNil(t, out)
		assert.Equal(t, "RECARGO PROVINCIAL SOBRE EL IAE", out[0])
	})

	t.Run("two partials in a row conflict and the newer wins", func(t *testing.T) {
		m := NewMerger(DefaultConfig(), nil)

		m.Push(classify(t, []string{"PRIMER CONCEPTO PARTIDO", "", "", "", "", "", "", ""}))
		m.Push(classify(t, []string{"SEGUNDO CONCEPTO PARTIDO", "", "", "", "", "", "", ""}))

		warns := m.Warnings()
		require.Len(t, warns, 1)
		assert.Equal(t, liquidation.WarnPartialConflict, warns[0].Code)
		assert.Equal(t, "SEGUNDO CONCEPTO PARTIDO", m.PendingConcept())
	})

	t.Run("structural row discards an orphaned partial", func(t *testing.T) {
		m := NewMerger(DefaultConfig(), nil)

		m.Push(classify(t, []string{"CONCEPTO HUERFANO", "", "", "", "", "", "", ""}))
		out := m.Push(classify(t, []string{"TOTAL EJERCICIO 2023", "", "", "10,00", "0,00", "0,00", "0,00", "10,00"}))

		require.NotNil(t, out)
		assert.False(t, m.HasPending())
		warns := m.Warnings()
		require.Len(t, warns, 1)
		assert.Equal(t, liquidation.WarnOrphanedPartial, warns[0].Code)
		assert.Contains(t, warns[0].Message, "CONCEPTO HUERFANO")
	})

	t.Run("flush discards a trailing partial", func(t *testing.T) {
		m := NewMerger(DefaultConfig(), nil)

		m.Push(classify(t, []string{"CONCEPTO FINAL SIN CIFRAS", "", "", "", "", "", "", ""}))
		m.Flush()

		assert.False(t, m.HasPending())
		warns := m.Warnings()
		require.Len(t, warns, 1)
		assert.Equal(t, liquidation.WarnOrphanedPartial, warns[0].Code)
	})

	t.Run("flush with nothing pending is silent", func(t *testing.T) {
		m := NewMerger(DefaultConfig(), nil)
		m.Flush()
		assert.Empty(t, m.Warnings())
	})
}
