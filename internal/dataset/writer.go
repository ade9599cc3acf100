package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV serializes the table with a header row. Missing numbers are
// written as empty cells, so parsing the output yields an equivalent table.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.schema.Names()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, t.schema.Len())
	for r := 0; r < t.rows; r++ {
		for c := range record {
			record[c] = t.cellString(r, c)
		}
		if len(record) == 1 && record[0] == "" {
			// a bare empty line would be skipped on read
			cw.Flush()
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
			continue
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
