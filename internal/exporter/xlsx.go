package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"enrolpulse/internal/validation"
)

const districtSheet = "Districts"

// XLSXWriter exports district rankings as an Excel workbook
type XLSXWriter struct {
	logger    *slog.Logger
	validator *validation.FileValidator
}

// NewXLSXWriter creates a new workbook writer
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{
		logger:    logger.With(slog.String("component", "xlsx_exporter")),
		validator: validation.NewFileValidator(logger),
	}
}

// build lays the rows out on a single sheet with a bold, frozen header.
func (x *XLSXWriter) build(rows []DistrictRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), districtSheet); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]interface{}, len(DistrictHeaders))
	for i, h := range DistrictHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(districtSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(districtSheet, 1, 1, bold)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := r.cells()
		if err := f.SetSheetRow(districtSheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	_ = f.SetColWidth(districtSheet, "B", "C", 28)
	_ = f.SetColWidth(districtSheet, "D", "E", 18)
	_ = f.SetPanes(districtSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	return f, nil
}

// WriteDistricts writes the workbook to w.
func (x *XLSXWriter) WriteDistricts(w io.Writer, rows []DistrictRow) error {
	f, err := x.build(rows)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveDistricts writes the workbook to path.
func (x *XLSXWriter) SaveDistricts(path string, rows []DistrictRow) error {
	if err := x.validator.ValidateOutputFile(path); err != nil {
		return err
	}

	f, err := x.build(rows)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	x.logger.Info("Wrote district workbook",
		slog.String("file_path", path),
		slog.Int("record_count", len(rows)))
	return nil
}
