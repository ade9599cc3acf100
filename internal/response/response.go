// Package response serializes pipeline results for HTTP clients.
package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"chartsvc/internal/dataset"
	"chartsvc/internal/render"
)

// Record is one table row. It marshals as a JSON object whose keys follow
// the table's column order.
type Record struct {
	columns []string
	values  []interface{}
}

// MarshalJSON writes the row with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value for column and whether the column exists.
func (r Record) Get(column string) (interface{}, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// RecordSet is the JSON body of a filtering request.
type RecordSet struct {
	Data    []Record `json:"data_analysis_result"`
	Columns []string `json:"selected_columns"`
}

// Records converts a table to a RecordSet. Missing numbers become null.
func Records(t *dataset.Table) RecordSet {
	columns := t.Schema().Names()
	data := make([]Record, t.Len())
	for r := range data {
		values := make([]interface{}, len(columns))
		for c := range columns {
			values[c] = t.Value(r, c)
		}
		data[r] = Record{columns: columns, values: values}
	}
	return RecordSet{Data: data, Columns: columns}
}

// WriteImage writes an encoded chart with its content type and length.
func WriteImage(w http.ResponseWriter, img render.Image) error {
	contentType := img.ContentType
	if contentType == "" {
		contentType = render.ContentTypePNG
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(img.Data)
	return err
}
