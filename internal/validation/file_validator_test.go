package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "chartsvc/internal/errors"
	"chartsvc/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(valid, []byte(testutil.PeopleCSV), 0o644))

	tests := []struct {
		name     string
		path     string
		maxBytes int64
		wantErr  error
		wantAny  bool
	}{
		{name: "valid", path: valid},
		{name: "within limit", path: valid, maxBytes: 1 << 10},
		{name: "missing", path: filepath.Join(dir, "absent.csv"), wantAny: true},
		{name: "directory", path: dir, wantAny: true},
		{name: "over limit", path: valid, maxBytes: 8, wantErr: apierrors.ErrPayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			err := NewFileValidator(logger).ValidateInputFile(tt.path, tt.maxBytes)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAny:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	nested := filepath.Join(dir, "charts", "age.png")
	require.NoError(t, v.ValidateOutputFile(nested))
	info, err := os.Stat(filepath.Dir(nested))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, v.ValidateOutputFile(filepath.Join(dir, "UPPER.PNG")))
	assert.Error(t, v.ValidateOutputFile(""))
	assert.Error(t, v.ValidateOutputFile(filepath.Join(dir, "chart.jpg")))

	asDir := filepath.Join(dir, "taken.png")
	require.NoError(t, os.Mkdir(asDir, 0o755))
	assert.Error(t, v.ValidateOutputFile(asDir))
}

func TestFileValidator_LogsOversizeInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.FilterCSV), 0o644))
	logger, logs := testutil.NewTestLogger(t)

	_ = NewFileValidator(logger).ValidateInputFile(path, 4)

	assert.True(t, logs.ContainsMessage("Input file exceeds upload limit"))
	assert.True(t, logs.ContainsAttr("component", "file_validator"))
}
