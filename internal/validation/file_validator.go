// Package validation checks local input and output paths for the command-line tools.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apierrors "chartsvc/internal/errors"
)

// FileValidator checks files before the CLI reads or writes them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputFile checks that path is a readable regular file no larger
// than maxBytes. A maxBytes of zero disables the size check.
func (v *FileValidator) ValidateInputFile(path string, maxBytes int64) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Input file does not exist",
			slog.String("file", path))
		return fmt.Errorf("input file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat input file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		v.logger.Error("Input file exceeds upload limit",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("max_bytes", maxBytes))
		return apierrors.NewPayloadTooLargeError(maxBytes, nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("input file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputFile checks that a chart can be written to path: the
// extension is .png and the parent directory exists or can be created.
func (v *FileValidator) ValidateOutputFile(path string) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return fmt.Errorf("output file %s must have a .png extension", path)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}
