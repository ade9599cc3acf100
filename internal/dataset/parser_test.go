package dataset

import (
	"bytes"
	"math"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "chartsvc/internal/errors"
	"chartsvc/internal/shared/testutil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCols  []string
		wantKinds []Kind
		wantRows  int
		wantErr   error
	}{
		{
			name:      "mixed types",
			input:     testutil.PeopleCSV,
			wantCols:  []string{"Name", "Age", "Salary", "Occupation"},
			wantKinds: []Kind{KindText, KindNumber, KindNumber, KindText},
			wantRows:  5,
		},
		{
			name:      "header only",
			input:     "a,b\n",
			wantCols:  []string{"a", "b"},
			wantKinds: []Kind{KindText, KindText},
			wantRows:  0,
		},
		{
			name:      "one non-numeric cell makes the column text",
			input:     "v\n1\n2\nthree\n",
			wantCols:  []string{"v"},
			wantKinds: []Kind{KindText},
			wantRows:  3,
		},
		{
			name:      "all empty cells stay text",
			input:     "a,b\n,1\n,2\n",
			wantCols:  []string{"a", "b"},
			wantKinds: []Kind{KindText, KindNumber},
			wantRows:  2,
		},
		{
			name:      "bom before header",
			input:     "\xEF\xBB\xBFName,Age\nA,1\n",
			wantCols:  []string{"Name", "Age"},
			wantKinds: []Kind{KindText, KindNumber},
			wantRows:  1,
		},
		{name: "empty payload", input: "", wantErr: apperrors.ErrMalformedInput},
		{name: "ragged rows", input: "a,b\n1,2\n3\n", wantErr: apperrors.ErrMalformedInput},
		{name: "duplicate header", input: "a,a\n1,2\n", wantErr: apperrors.ErrMalformedInput},
		{name: "blank column name", input: "a,\n1,2\n", wantErr: apperrors.ErrMalformedInput},
		{name: "bare quote", input: "a,b\n\"1,2\n", wantErr: apperrors.ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCols, table.Schema().Names())
			assert.Equal(t, tt.wantRows, table.Len())
			for i, f := range table.Schema().Fields() {
				assert.Equal(t, tt.wantKinds[i], f.Kind, f.Name)
			}
		})
	}
}

func TestParse_MissingNumbersAreNaN(t *testing.T) {
	table, err := Parse([]byte(testutil.PeopleCSV))
	require.NoError(t, err)

	salaries, err := table.Numbers("Salary")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(salaries[3]))
	assert.Nil(t, table.Value(3, 2))
	assert.Equal(t, 50000.0, table.Value(0, 2))
	assert.Equal(t, "Alice", table.Value(0, 0))
}

func TestParse_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(testutil.FilterCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	table, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	_, err = Parse([]byte{0x1f, 0x8b, 0x08})
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Name", "Age", "Salary"},
		{"A", 30, 50000},
		{"B", 45, 80000},
		{"C", 28},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, DetectFormat(buf.Bytes()))

	table, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Age", "Salary"}, table.Schema().Names())
	assert.Equal(t, 3, table.Len())

	ages, err := table.Numbers("Age")
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 45, 28}, ages)

	salaries, err := table.Numbers("Salary")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(salaries[2]))
}

func TestParse_CorruptXLSX(t *testing.T) {
	_, err := Parse([]byte("PK\x03\x04garbage"))
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)
}

func TestParseWithOptions_Limits(t *testing.T) {
	_, err := ParseWithOptions([]byte(testutil.PeopleCSV), Options{MaxBytes: 10})
	assert.ErrorIs(t, err, apperrors.ErrPayloadTooLarge)

	_, err = ParseWithOptions([]byte(testutil.PeopleCSV), Options{MaxRows: 2})
	assert.ErrorIs(t, err, apperrors.ErrPayloadTooLarge)

	table, err := ParseWithOptions([]byte(testutil.PeopleCSV), Options{MaxRows: 5, MaxBytes: 1 << 20})
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())
}
