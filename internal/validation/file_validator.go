package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Data directory failures. Each is a fatal configuration error for the dashboard.
var (
	ErrDirNotFound     = errors.New("data directory does not exist")
	ErrNotDirectory    = errors.New("data path is not a directory")
	ErrEmptyDirectory  = errors.New("data directory is empty")
	ErrNoMatchingFiles = errors.New("data directory contains no tabular files")
)

// FileValidator checks input and output locations before any work is done on them
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

// ValidateInputDirectory verifies that dir exists, is a directory, is not empty and holds at
// least one regular file with one of the given extensions. The returned error wraps one of
// the Err* sentinels above.
func (v *FileValidator) ValidateInputDirectory(dir string, extensions ...string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist", slog.String("directory", dir))
		return fmt.Errorf("%w: %s", ErrDirNotFound, dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory", slog.String("path", dir))
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	if len(entries) == 0 {
		v.logger.Error("Input directory is empty", slog.String("directory", dir))
		return fmt.Errorf("%w: %s", ErrEmptyDirectory, dir)
	}

	matched := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		for _, want := range extensions {
			if strings.EqualFold(ext, want) {
				matched++
				break
			}
		}
	}

	if len(extensions) > 0 && matched == 0 {
		v.logger.Error("No matching files in input directory",
			slog.String("directory", dir),
			slog.Any("extensions", extensions))
		return fmt.Errorf("%w: %s", ErrNoMatchingFiles, dir)
	}

	v.logger.Debug("Input directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", matched))
	return nil
}

// ValidateOutputFile ensures the parent directory of path exists (creating it if needed)
// and that path itself is not a directory.
func (v *FileValidator) ValidateOutputFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}

