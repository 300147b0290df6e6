package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extract.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("overlays on defaults", func(t *testing.T) {
		path := writeConfig(t, `
layout:
  concepto: 1
  cargo: 4
tolerance: "0.05"
dialect: american
year_min: 1990
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 1, cfg.Layout.Concepto)
		assert.Equal(t, 4, cfg.Layout.Cargo)
		assert.Equal(t, "0.05", cfg.Tolerance.String())
		assert.Equal(t, DialectAmerican, cfg.Dialect)
		assert.Equal(t, 1990, cfg.YearMin)
		// Untouched keys keep their defaults.
		assert.Equal(t, "TOTAL EJERCICIO", cfg.ExerciseTotalMarker)
		assert.Equal(t, 2099, cfg.YearMax)
	})

	t.Run("auto dialect defers to probing", func(t *testing.T) {
		path := writeConfig(t, "dialect: auto\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DialectUnknown, cfg.Dialect)
	})

	t.Run("rejects bad tolerance", func(t *testing.T) {
		path := writeConfig(t, "tolerance: cheap\n")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("rejects unknown dialect", func(t *testing.T) {
		path := writeConfig(t, "dialect: martian\n")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.Layout.FirstAmountColumn())
	assert.Equal(t, DialectEuropean, cfg.Dialect)
	assert.Equal(t, "0.01", cfg.Tolerance.String())
}
