// Package archive keeps finished liquidation reports on the local
// filesystem, grouped per entity, with a JSON metadata sidecar per
// report so past runs stay retrievable without a database.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportInfo is the stored metadata of one archived report.
type ReportInfo struct {
	ID                uuid.UUID `json:"id"`
	Entidad           string    `json:"entidad"`
	CodigoEntidad     string    `json:"codigo_entidad"`
	NumeroLiquidacion string    `json:"numero_liquidacion"`
	Format            string    `json:"format"`
	Size              int64     `json:"size"`
	Path              string    `json:"path"`
	CreatedAt         time.Time `json:"created_at"`
}

// Archive stores reports under basePath/<codigo_entidad>/, with metadata
// in a .meta subdirectory.
type Archive struct {
	basePath string
}

// New opens (creating if needed) an archive rooted at basePath.
func New(basePath string) (*Archive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Archive{basePath: basePath}, nil
}

// Store copies a finished report into the archive and records its
// metadata. Reports from entities with no recognizable code land under
// "sin-entidad".
func (a *Archive) Store(ctx context.Context, info ReportInfo, r io.Reader) (*ReportInfo, error) {
	info.ID = uuid.New()
	info.CreatedAt = time.Now()

	dir := filepath.Join(a.basePath, a.entityDir(info.CodigoEntidad))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create entity directory: %w", err)
	}

	name := fmt.Sprintf("%s_liquidacion_%s.%s",
		info.ID.String()[:8], sanitize(info.NumeroLiquidacion), extensionFor(info.Format))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	info.Size = size
	info.Path = name

	if err := a.saveMetadata(info); err != nil {
		os.Remove(path)
		return nil, err
	}
	return &info, nil
}

// Open returns a reader over an archived report.
func (a *Archive) Open(ctx context.Context, codigoEntidad string, id uuid.UUID) (io.ReadCloser, *ReportInfo, error) {
	info, err := a.Info(ctx, codigoEntidad, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(a.basePath, a.entityDir(codigoEntidad), info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open report: %w", err)
	}
	return f, info, nil
}

// Info reads the metadata sidecar of one archived report.
func (a *Archive) Info(ctx context.Context, codigoEntidad string, id uuid.UUID) (*ReportInfo, error) {
	data, err := os.ReadFile(a.metaPath(codigoEntidad, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("report not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var info ReportInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &info, nil
}

// List returns the archived reports of one entity, unordered.
func (a *Archive) List(ctx context.Context, codigoEntidad string) ([]*ReportInfo, error) {
	metaDir := filepath.Join(a.basePath, a.entityDir(codigoEntidad), ".meta")
	if _, err := os.Stat(metaDir); os.IsNotExist(err) {
		return []*ReportInfo{}, nil
	}

	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	reports := make([]*ReportInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		info, err := a.Info(ctx, codigoEntidad, id)
		if err != nil {
			continue
		}
		reports = append(reports, info)
	}
	return reports, nil
}

// Remove deletes a report and its metadata.
func (a *Archive) Remove(ctx context.Context, codigoEntidad string, id uuid.UUID) error {
	info, err := a.Info(ctx, codigoEntidad, id)
	if err != nil {
		return err
	}
	path := filepath.Join(a.basePath, a.entityDir(codigoEntidad), info.Path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	os.Remove(a.metaPath(codigoEntidad, id))
	return nil
}

func (a *Archive) saveMetadata(info ReportInfo) error {
	metaDir := filepath.Join(a.basePath, a.entityDir(info.CodigoEntidad), ".meta")
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(metaDir, info.ID.String()+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func (a *Archive) metaPath(codigoEntidad string, id uuid.UUID) string {
	return filepath.Join(a.basePath, a.entityDir(codigoEntidad), ".meta", id.String()+".json")
}

func (a *Archive) entityDir(codigoEntidad string) string {
	s := sanitize(codigoEntidad)
	if s == "" {
		return "sin-entidad"
	}
	return s
}

func extensionFor(format string) string {
	switch format {
	case "excel":
		return "xlsx"
	default:
		return format
	}
}

func sanitize(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(strings.TrimSpace(name))
}
