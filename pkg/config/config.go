// Package config holds the application-level configuration for the
// liquidator CLI. Extraction parameters stay out of here on purpose: the
// engine receives them as an explicit parameter object so runs remain
// deterministic and testable in isolation.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Input   InputConfig
	Export  ExportConfig
	Logging LoggingConfig
}

type InputConfig struct {
	// Strategy is the table-detection strategy token forwarded opaquely
	// to the pdftable collaborator.
	Strategy string
	// ExtractConfig is an optional YAML file overriding the default
	// column layout, markers and tolerance.
	ExtractConfig string
}

type ExportConfig struct {
	// Format is one of "", "excel", "csv", "html".
	Format string
	Path   string
	// ArchiveDir, when set, keeps a copy of every exported report in a
	// per-entity local archive.
	ArchiveDir string
}

type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables, honoring a .env
// file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Input: InputConfig{
			Strategy:      getEnv("LIQ_STRATEGY", "text"),
			ExtractConfig: getEnv("LIQ_EXTRACT_CONFIG", ""),
		},
		Export: ExportConfig{
			Format:     getEnv("LIQ_EXPORT_FORMAT", ""),
			Path:       getEnv("LIQ_EXPORT_PATH", ""),
			ArchiveDir: getEnv("LIQ_ARCHIVE_DIR", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LIQ_LOG_LEVEL", "info"),
		},
	}

	switch cfg.Export.Format {
	case "", "excel", "csv", "html":
	default:
		return nil, fmt.Errorf("unsupported export format %q", cfg.Export.Format)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
