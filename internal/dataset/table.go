package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "chartsvc/internal/errors"
)

type column struct {
	numbers []float64
	texts   []string
}

// Table is an immutable, column-oriented typed table.
type Table struct {
	schema  *Schema
	columns []column
	rows    int
}

// FromRecords builds a table from a header and string rows, inferring column
// kinds. Rows must have exactly len(header) cells.
func FromRecords(header []string, rows [][]string) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, apperrors.NewMalformedInputError("Invalid CSV file format",
				fmt.Errorf("row %d has %d fields, header has %d", i+2, len(row), len(header)))
		}
	}

	fields := make([]Field, len(header))
	columns := make([]column, len(header))
	for c, name := range header {
		fields[c] = Field{Name: name, Kind: KindText}
		if nums, ok := inferNumbers(rows, c); ok {
			fields[c].Kind = KindNumber
			columns[c].numbers = nums
			continue
		}
		texts := make([]string, len(rows))
		for r, row := range rows {
			texts[r] = row[c]
		}
		columns[c].texts = texts
	}

	schema, err := NewSchema(fields)
	if err != nil {
		return nil, err
	}
	return &Table{schema: schema, columns: columns, rows: len(rows)}, nil
}

// inferNumbers parses column c as numbers. It reports false when any non-empty
// cell is not a finite number or when every cell is empty.
func inferNumbers(rows [][]string, c int) ([]float64, bool) {
	nums := make([]float64, len(rows))
	seen := false
	for r, row := range rows {
		cell := strings.TrimSpace(row[c])
		if cell == "" {
			nums[r] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsInf(v, 0) {
			return nil, false
		}
		nums[r] = v
		if !math.IsNaN(v) {
			seen = true
		}
	}
	return nums, seen
}

// Schema returns the table schema.
func (t *Table) Schema() *Schema { return t.schema }

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Numbers returns a copy of a numeric column. Missing cells are NaN.
func (t *Table) Numbers(name string) ([]float64, error) {
	f, i, err := t.schema.Require(name)
	if err != nil {
		return nil, err
	}
	if f.Kind != KindNumber {
		return nil, apperrors.NewNonNumericColumnError(name)
	}
	out := make([]float64, t.rows)
	copy(out, t.columns[i].numbers)
	return out, nil
}

// Texts returns a copy of a text column.
func (t *Table) Texts(name string) ([]string, error) {
	f, i, err := t.schema.Require(name)
	if err != nil {
		return nil, err
	}
	if f.Kind != KindText {
		return nil, apperrors.NewTypeMismatchError(name, "text access")
	}
	out := make([]string, t.rows)
	copy(out, t.columns[i].texts)
	return out, nil
}

// Strings returns any column rendered as strings. Numbers use their shortest
// decimal form and missing numbers become "".
func (t *Table) Strings(name string) ([]string, error) {
	_, i, err := t.schema.Require(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, t.rows)
	for r := range out {
		out[r] = t.cellString(r, i)
	}
	return out, nil
}

// Value returns the cell at (row, col) as float64, string, or nil for a
// missing number.
func (t *Table) Value(row, col int) interface{} {
	c := t.columns[col]
	if t.schema.fields[col].Kind == KindNumber {
		v := c.numbers[row]
		if math.IsNaN(v) {
			return nil
		}
		return v
	}
	return c.texts[row]
}

func (t *Table) cellString(row, col int) string {
	if t.schema.fields[col].Kind == KindNumber {
		return FormatNumber(t.columns[col].numbers[row])
	}
	return t.columns[col].texts[row]
}

// Select returns a new table holding the given rows in the given order.
func (t *Table) Select(rows []int) *Table {
	columns := make([]column, len(t.columns))
	for i, c := range t.columns {
		if t.schema.fields[i].Kind == KindNumber {
			nums := make([]float64, len(rows))
			for j, r := range rows {
				nums[j] = c.numbers[r]
			}
			columns[i].numbers = nums
			continue
		}
		texts := make([]string, len(rows))
		for j, r := range rows {
			texts[j] = c.texts[r]
		}
		columns[i].texts = texts
	}
	return &Table{schema: t.schema, columns: columns, rows: len(rows)}
}

// FormatNumber renders v in its shortest decimal form, "" for NaN.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
