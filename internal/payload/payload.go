// Package payload normalizes uploaded byte payloads before they reach the
// tabular parser or the text tokenizer.
package payload

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

var (
	// ErrCorrupt is returned when a payload claims to be compressed but cannot be decoded.
	ErrCorrupt = errors.New("corrupt compressed payload")
	// ErrTooLarge is returned when a decompressed payload exceeds the configured limit.
	ErrTooLarge = errors.New("payload too large")
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
)

// IsGzip reports whether data starts with the gzip magic bytes.
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// Normalize gunzips compressed payloads and strips a leading UTF-8 BOM.
// limit bounds the decompressed size; zero or negative disables the bound.
func Normalize(data []byte, limit int64) ([]byte, error) {
	if IsGzip(data) {
		inflated, err := gunzip(data, limit)
		if err != nil {
			return nil, err
		}
		data = inflated
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}

func gunzip(data []byte, limit int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer zr.Close()

	var src io.Reader = zr
	if limit > 0 {
		// one extra byte tells an exact fit apart from an overflow
		src = io.LimitReader(zr, limit+1)
	}

	out, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if limit > 0 && int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: decompressed size exceeds %d bytes", ErrTooLarge, limit)
	}
	return out, nil
}
