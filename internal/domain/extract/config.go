package extract

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ColumnLayout maps the table columns of the active page to the eight
// semantic fields of a tribute record. Indices are zero-based.
type ColumnLayout struct {
	Concepto   int `yaml:"concepto"`
	ClaveC     int `yaml:"clave_contabilidad"`
	ClaveR     int `yaml:"clave_recaudacion"`
	Cargo      int `yaml:"cargo"`
	Datas      int `yaml:"datas"`
	Voluntaria int `yaml:"voluntaria"`
	Ejecutiva  int `yaml:"ejecutiva"`
	Pendiente  int `yaml:"pendiente"`
}

// FirstAmountColumn returns the lowest amount column index. Cells from
// this index on are treated as the figure region when column counts drift
// between pages.
func (l ColumnLayout) FirstAmountColumn() int {
	min := l.Cargo
	for _, idx := range []int{l.Datas, l.Voluntaria, l.Ejecutiva, l.Pendiente} {
		if idx < min {
			min = idx
		}
	}
	return min
}

// Config is the explicit per-extraction parameter object: column layout,
// marker keywords and numeric conventions. The engine never reads ambient
// state, so two runs with the same config and input are identical.
type Config struct {
	Layout ColumnLayout `yaml:"layout"`

	// HeaderKeywords identify column-title rows. Matching is fuzzy to
	// survive accent loss and merged cells.
	HeaderKeywords []string `yaml:"header_keywords"`

	// ExerciseTotalMarker and DocumentTotalMarker are matched against the
	// concept region of a row.
	ExerciseTotalMarker string `yaml:"exercise_total_marker"`
	DocumentTotalMarker string `yaml:"document_total_marker"`

	// Dialect biases separator disambiguation; leave unknown to rely on
	// the positional rules plus ProbeDialect.
	Dialect Dialect `yaml:"-"`

	// DialectName is the YAML-facing spelling of Dialect.
	DialectName string `yaml:"dialect"`

	// Tolerance is the reconciliation epsilon in currency units.
	Tolerance decimal.Decimal `yaml:"-"`

	// ToleranceStr is the YAML-facing spelling of Tolerance.
	ToleranceStr string `yaml:"tolerance"`

	// YearMin and YearMax bound what counts as a plausible fiscal year
	// token inside clave cells.
	YearMin int `yaml:"year_min"`
	YearMax int `yaml:"year_max"`
}

// DefaultConfig returns the layout and markers of the standard provincial
// liquidation format.
func DefaultConfig() Config {
	return Config{
		Layout: ColumnLayout{
			Concepto:   0,
			ClaveC:     1,
			ClaveR:     2,
			Cargo:      3,
			Datas:      4,
			Voluntaria: 5,
			Ejecutiva:  6,
			Pendiente:  7,
		},
		HeaderKeywords:      []string{"CONCEPTO", "CLAVE", "CARGO", "DATAS", "VOLUNTARIA", "EJECUTIVA", "PENDIENTE"},
		ExerciseTotalMarker: "TOTAL EJERCICIO",
		DocumentTotalMarker: "TOTAL GENERAL",
		Dialect:             DialectEuropean,
		Tolerance:           decimal.RequireFromString("0.01"),
		YearMin:             2000,
		YearMax:             2099,
	}
}

// LoadConfig reads a YAML config file and overlays it on the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.ToleranceStr != "" {
		tol, err := decimal.NewFromString(cfg.ToleranceStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid tolerance %q: %w", cfg.ToleranceStr, err)
		}
		cfg.Tolerance = tol
	}

	switch cfg.DialectName {
	case "", "european":
		cfg.Dialect = DialectEuropean
	case "american":
		cfg.Dialect = DialectAmerican
	case "auto":
		cfg.Dialect = DialectUnknown
	default:
		return cfg, fmt.Errorf("unknown dialect %q", cfg.DialectName)
	}

	return cfg, nil
}
