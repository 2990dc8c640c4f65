package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	width := t.width()
	for _, row := range t.Rows {
		out := make([]string, width)
		for i := range out {
			out[i] = cell(row, i)
		}
		if err := writer.Write(out); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
