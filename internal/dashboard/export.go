package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"

	"PriceFeed/internal/model"
)

// ExportFilename is the download name of the CSV export.
const ExportFilename = "price_readings.csv"

const utf8BOM = "\uFEFF"

// WriteCSV writes the series as a ;-separated CSV with a UTF-8 BOM.
func WriteCSV(w io.Writer, series []model.Reading) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"valor", "timestamp"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range series {
		if err := cw.Write([]string{FormatExportValue(r.Float()), FormatTimestamp(r.ObservedAt)}); err != nil {
			return fmt.Errorf("write row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
