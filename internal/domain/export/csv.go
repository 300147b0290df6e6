package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
)

// WriteCSV dumps the extracted records as a flat CSV, one line per
// tribute record, using the csv tags on the record type.
func WriteCSV(doc *liquidation.Document, w io.Writer) error {
	records := doc.Records
	if records == nil {
		records = []liquidation.TributeRecord{}
	}
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
