package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowParser_ParseRow(t *testing.T) {
	p := NewRowParser(DefaultConfig())

	t.Run("maps all eight fields", func(t *testing.T) {
		rec, err := p.ParseRow([]string{"IBI URBANA", "112", "04/2023/400100", "1.500,00", "10,00", "800,00", "200,00", "490,00"}, 0)
		require.NoError(t, err)

		assert.Equal(t, "IBI URBANA", rec.Concepto)
		assert.Equal(t, "112", rec.ClaveC)
		assert.Equal(t, "04/2023/400100", rec.ClaveR)
		assert.Equal(t, 2023, rec.Ejercicio)
		assert.Equal(t, "1500.00", rec.Cargo.StringFixed(2))
		assert.Equal(t, "10.00", rec.Datas.StringFixed(2))
		assert.Equal(t, "800.00", rec.Voluntaria.StringFixed(2))
		assert.Equal(t, "200.00", rec.Ejecutiva.StringFixed(2))
		assert.Equal(t, "490.00", rec.Pendiente.StringFixed(2))
	})

	t.Run("blank amounts become zero", func(t *testing.T) {
		rec, err := p.ParseRow([]string{"TASA BASURA", "310", "04/2022/310200", "100,00", "", "-", "", "100,00"}, 0)
		require.NoError(t, err)

		assert.True(t, rec.Datas.IsZero())
		assert.True(t, rec.Voluntaria.IsZero())
		assert.True(t, rec.Ejecutiva.IsZero())
		assert.Equal(t, "100.00", rec.Cargo.StringFixed(2))
	})

	t.Run("concept whitespace collapses", func(t *testing.T) {
		rec, err := p.ParseRow([]string{"  IBI   RUSTICA  ", "113", "04/2023/113000", "10,00", "", "", "", "10,00"}, 0)
		require.NoError(t, err)
		assert.Equal(t, "IBI RUSTICA", rec.Concepto)
	})

	t.Run("unparseable amount fails the row", func(t *testing.T) {
		_, err := p.ParseRow([]string{"IBI URBANA", "112", "04/2023/400100", "garbage", "", "", "", ""}, 0)
		require.Error(t, err)

		var rerr *RowParseError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "cargo", rerr.Column)
		assert.Equal(t, "garbage", rerr.RawData)
	})

	t.Run("empty concept fails the row", func(t *testing.T) {
		_, err := p.ParseRow([]string{"", "112", "04/2023/400100", "10,00", "", "", "", ""}, 2023)
		require.Error(t, err)

		var rerr *RowParseError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "concepto", rerr.Column)
	})

	t.Run("year comes from clave recaudacion first", func(t *testing.T) {
		rec, err := p.ParseRow([]string{"IBI URBANA", "2021", "04/2019/400100", "10,00", "", "", "", "10,00"}, 2023)
		require.NoError(t, err)
		assert.Equal(t, 2019, rec.Ejercicio)
	})

	t.Run("year falls back to clave contabilidad", func(t *testing.T) {
		rec, err := p.ParseRow([]string{"IBI URBANA", "2021", "sin-clave", "10,00", "", "", "", "10,00"}, 2023)
		require.NoError(t, err)
		assert.Equal(t, 2021, rec.Ejercicio)
	})

	t.Run("year falls back to context", func(t *testing.T) {
		rec, err := p.ParseRow([]string{"IBI URBANA", "112", "400100", "10,00", "", "", "", "10,00"}, 2023)
		require.NoError(t, err)
		assert.Equal(t, 2023, rec.Ejercicio)
	})

	t.Run("implausible year tokens are skipped", func(t *testing.T) {
		rec, err := p.ParseRow([]string{"IBI URBANA", "112", "04/1850/400100", "10,00", "", "", "", "10,00"}, 2023)
		require.NoError(t, err)
		assert.Equal(t, 2023, rec.Ejercicio)
	})

	t.Run("short row treats missing cells as blank", func(t *testing.T) {
		rec, err := p.ParseRow([]string{"IBI URBANA", "112", "04/2023/400100", "10,00"}, 0)
		require.NoError(t, err)
		assert.Equal(t, "10.00", rec.Cargo.StringFixed(2))
		assert.True(t, rec.Pendiente.IsZero())
	})
}
