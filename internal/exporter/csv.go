package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jszwec/csvutil"

	"enrolpulse/internal/validation"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// CSVWriter exports district rankings as CSV
type CSVWriter struct {
	logger    *slog.Logger
	validator *validation.FileValidator
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		logger:    logger.With(slog.String("component", "csv_exporter")),
		validator: validation.NewFileValidator(logger),
	}
}

// WriteDistricts encodes rows to w with a header line. An empty ranking still
// produces the header.
func (c *CSVWriter) WriteDistricts(w io.Writer, rows []DistrictRow, opts WriteOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(DistrictRow{}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	if len(rows) > 0 {
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to encode districts: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveDistricts writes rows to path, creating parent directories as needed.
func (c *CSVWriter) SaveDistricts(path string, rows []DistrictRow) error {
	if err := c.validator.ValidateOutputFile(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := c.WriteDistricts(file, rows, WriteOptions{BOMPrefix: true}); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	c.logger.Info("Wrote district CSV",
		slog.String("file_path", path),
		slog.Int("record_count", len(rows)))
	return nil
}
