package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// diagnosticsHeader is the first line of a diagnostics export.
var diagnosticsHeader = []string{"_row", "_column", "_kind", "_error", "_fix", "_example"}

// WriteDiagnosticsCSV writes one line per diagnostic followed by the
// offending row's cells, so the export can be fixed and re-uploaded.
// Row numbers are 1-based like the diagnostic labels.
func WriteDiagnosticsCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)

	header := append([]string(nil), diagnosticsHeader...)
	for _, c := range ds.Columns {
		header = append(header, c.Title)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, d := range ds.Diagnostics {
		title := d.ColumnKey
		if i := columnIndex(ds.Columns, d.ColumnKey); i >= 0 {
			title = ds.Columns[i].Title
		}
		record := []string{
			strconv.Itoa(d.RowIndex + 1),
			title,
			string(d.Kind),
			d.Message,
			d.Suggestion.Fix,
			d.Suggestion.Example,
		}
		if d.RowIndex >= 0 && d.RowIndex < len(ds.Rows) {
			record = append(record, ds.Rows[d.RowIndex].Values()...)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", d.RowIndex+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
