// Package exporter writes the full district ranking of a state for download.
//
// This package contains two writers sharing the DistrictRow layout:
//
// CSVWriter: encodes rows with csvutil, optionally behind a UTF-8 BOM so
// Excel detects the encoding.
//
// XLSXWriter: builds a single-sheet workbook with excelize.
//
// Example usage:
//
//	rows := exporter.DistrictRows("Punjab", ranking.Full)
//	err := exporter.NewCSVWriter(logger).WriteDistricts(w, rows, exporter.WriteOptions{BOMPrefix: true})
package exporter
