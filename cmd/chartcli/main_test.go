package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "chartsvc/internal/errors"
	"chartsvc/internal/shared/testutil"
	"chartsvc/pkg/contracts"
	api "chartsvc/pkg/contracts/api/v1"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("CHART_CONFIG_FILE", "")
}

func TestRun_Charts(t *testing.T) {
	isolateConfig(t)
	people := writeInput(t, testutil.PeopleCSV)
	words := writeInput(t, testutil.WordsText)

	tests := []struct {
		name string
		args []string
	}{
		{"histogram", []string{"-kind", "histogram", "-in", people, "-column", "Age", "-bins", "3"}},
		{"pie", []string{"-kind", "pie", "-in", people, "-column", "Occupation"}},
		{"skewness", []string{"-kind", "skewness", "-in", people, "-column", "Salary"}},
		{"kurtosis", []string{"-kind", "kurtosis", "-in", people, "-column", "Age"}},
		{"word cloud", []string{"-kind", "wordcloud-frequency", "-in", words}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "chart.png")
			var stdout, stderr bytes.Buffer

			err := run(context.Background(), append(tt.args, "-out", out), &stdout, &stderr)
			require.NoError(t, err, stderr.String())

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
		})
	}
}

func TestRun_Filter(t *testing.T) {
	isolateConfig(t)
	in := writeInput(t, testutil.FilterCSV)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-kind", "filter", "-in", in, "-where", "gt:Salary=55000"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	var body struct {
		Data []map[string]any `json:"data_analysis_result"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "B", body.Data[0]["Name"])
	assert.Equal(t, "C", body.Data[1]["Name"])
}

func TestRun_Describe(t *testing.T) {
	isolateConfig(t)
	in := writeInput(t, testutil.PeopleCSV)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-kind", "describe", "-in", in, "-column", "Age"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &body))
	assert.Equal(t, float64(5), body["count"])
}

func TestRun_ConfigError(t *testing.T) {
	isolateConfig(t)
	t.Setenv("CHART_RENDER_WORKERS", "0")
	in := writeInput(t, testutil.PeopleCSV)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-kind", "describe", "-in", in, "-column", "Age"}, &stdout, &stderr)
	assert.ErrorIs(t, err, &apperrors.AppError{Type: apperrors.ErrTypeConfig})
}

func TestRun_LogsCarryTraceID(t *testing.T) {
	isolateConfig(t)
	in := writeInput(t, testutil.PeopleCSV)
	var stdout, stderr bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"-kind", "describe", "-in", in, "-column", "Age"}, &stdout, &stderr))

	var ids []any
	for _, line := range bytes.Split(bytes.TrimSpace(stderr.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry), string(line))
		ids = append(ids, entry["trace_id"])
	}
	require.NotEmpty(t, ids)
	assert.Len(t, ids[0], 36)
	for _, id := range ids {
		assert.Equal(t, ids[0], id, "one trace id per run")
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "chartsvc v"+contracts.Version)
}

func TestRun_Errors(t *testing.T) {
	isolateConfig(t)
	in := writeInput(t, testutil.PeopleCSV)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"-kind", "pie"}},
		{"unreadable input", []string{"-in", filepath.Join(t.TempDir(), "absent.csv")}},
		{"unknown kind", []string{"-kind", "radar", "-in", in}},
		{"chart without out", []string{"-kind", "pie", "-in", in, "-column", "Occupation"}},
		{"unknown column", []string{"-kind", "pie", "-in", in, "-column", "Height", "-out", filepath.Join(t.TempDir(), "x.png")}},
		{"bad predicate", []string{"-kind", "filter", "-in", in, "-where", "Salary>3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(context.Background(), tt.args, &stdout, &stderr))
		})
	}
}

func TestParseWhere(t *testing.T) {
	req, err := parseWhere([]string{"in:Occupation=Engineer", "gt:Age=30", "in:Occupation=Manager"})
	require.NoError(t, err)
	assert.Equal(t, []api.PredicateRequest{
		{Op: api.OpIn, Column: "Occupation", Values: []string{"Engineer", "Manager"}},
		{Op: api.OpGreaterThan, Column: "Age", Threshold: 30},
	}, req.Predicates)

	for _, bad := range []string{"gt:Age", "Age=3", "gt:=3", "gt:Age=x", "lt:Age=3"} {
		_, err := parseWhere([]string{bad})
		assert.Error(t, err, bad)
	}

	_, err = parseWhere([]string{"lt:Age=3"})
	assert.ErrorIs(t, err, api.ErrUnknownOperator)
}
