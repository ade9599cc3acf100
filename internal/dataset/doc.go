// Package dataset decodes uploaded tabular payloads into immutable, typed,
// column-labeled tables.
//
// A payload is either delimited text with a header row or an XLSX workbook,
// optionally gzip-compressed. Every column is typed once at parse time:
// a column is numeric when each non-empty cell parses as a finite number and
// at least one cell is non-empty; otherwise it is text. Empty cells in a
// numeric column are missing values and are held as NaN.
//
// Tables are never mutated after construction. Operations that narrow a table,
// such as row selection, return a new Table sharing the schema.
package dataset
