package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	apperrors "chartsvc/internal/errors"
	"chartsvc/internal/payload"
)

var zipMagic = []byte("PK\x03\x04")

// Format is the detected encoding of a payload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Options bounds parsing. Zero values disable the corresponding limit.
type Options struct {
	MaxBytes int64
	MaxRows  int
}

// Parse decodes a CSV or XLSX payload, gzip-compressed or not, into a Table.
func Parse(data []byte) (*Table, error) {
	return ParseWithOptions(data, Options{})
}

// ParseWithOptions is Parse with size and row limits.
func ParseWithOptions(data []byte, opts Options) (*Table, error) {
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, apperrors.NewPayloadTooLargeError(opts.MaxBytes, nil)
	}

	data, err := payload.Normalize(data, opts.MaxBytes)
	switch {
	case errors.Is(err, payload.ErrTooLarge):
		return nil, apperrors.NewPayloadTooLargeError(opts.MaxBytes, err)
	case err != nil:
		return nil, apperrors.NewMalformedInputError("Invalid CSV file format", err)
	}

	var header []string
	var rows [][]string
	switch DetectFormat(data) {
	case FormatXLSX:
		header, rows, err = readWorkbook(data)
	default:
		header, rows, err = readDelimited(data)
	}
	if err != nil {
		return nil, err
	}

	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		return nil, apperrors.NewAppError(apperrors.ErrTypePayloadTooLarge,
			fmt.Sprintf("payload exceeds the maximum of %d rows", opts.MaxRows), nil).
			WithContext("max_rows", opts.MaxRows)
	}
	return FromRecords(header, rows)
}

// DetectFormat sniffs the payload's leading bytes.
func DetectFormat(data []byte) Format {
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

func readDelimited(data []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, apperrors.NewMalformedInputError("Invalid CSV file format", fmt.Errorf("no header row"))
	}
	if err != nil {
		return nil, nil, apperrors.NewMalformedInputError("Invalid CSV file format", err)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, apperrors.NewMalformedInputError("Invalid CSV file format", err)
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

// readWorkbook reads the first sheet. Trailing empty cells are dropped by
// excelize, so short rows are padded to the header width.
func readWorkbook(data []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, apperrors.NewMalformedInputError("Invalid spreadsheet file format", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, apperrors.NewMalformedInputError("Invalid spreadsheet file format", fmt.Errorf("workbook has no sheets"))
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, apperrors.NewMalformedInputError("Invalid spreadsheet file format", err)
	}

	// skip leading blank rows, as the delimited reader does
	for len(all) > 0 && isBlank(all[0]) {
		all = all[1:]
	}
	if len(all) == 0 {
		return nil, nil, apperrors.NewMalformedInputError("Invalid spreadsheet file format", fmt.Errorf("no header row"))
	}

	header := all[0]
	rows := make([][]string, 0, len(all)-1)
	for i, row := range all[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) > len(header) {
			return nil, nil, apperrors.NewMalformedInputError("Invalid spreadsheet file format",
				fmt.Errorf("row %d has %d cells, header has %d", i+2, len(row), len(header)))
		}
		padded := make([]string, len(header))
		copy(padded, row)
		rows = append(rows, padded)
	}
	return header, rows, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
