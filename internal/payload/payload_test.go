package payload

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	csv := []byte("Name,Age\nA,30\n")

	tests := []struct {
		name    string
		input   []byte
		limit   int64
		want    []byte
		wantErr error
	}{
		{
			name:  "plain payload passes through",
			input: csv,
			want:  csv,
		},
		{
			name:  "bom is stripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, csv...),
			want:  csv,
		},
		{
			name:  "gzip payload is inflated",
			input: gzipped(t, csv),
			limit: 1024,
			want:  csv,
		},
		{
			name:  "gzip payload with bom",
			input: gzipped(t, append([]byte{0xEF, 0xBB, 0xBF}, csv...)),
			want:  csv,
		},
		{
			name:  "exact fit within limit",
			input: gzipped(t, csv),
			limit: int64(len(csv)),
			want:  csv,
		},
		{
			name:    "decompressed size over limit",
			input:   gzipped(t, csv),
			limit:   4,
			wantErr: ErrTooLarge,
		},
		{
			name:    "truncated gzip stream",
			input:   []byte{0x1f, 0x8b, 0x08, 0x00},
			wantErr: ErrCorrupt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input, tt.limit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsGzip(t *testing.T) {
	assert.True(t, IsGzip([]byte{0x1f, 0x8b, 0x00}))
	assert.False(t, IsGzip([]byte("a,b")))
	assert.False(t, IsGzip(nil))
}
