package export

import (
	"fmt"
	"os"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
)

// WriteFile renders the document to path in the given format: "excel",
// "csv" or "html".
func WriteFile(doc *liquidation.Document, format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case "excel":
		err = WriteExcel(doc, f)
	case "csv":
		err = WriteCSV(doc, f)
	case "html":
		err = WriteHTML(doc, f)
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
