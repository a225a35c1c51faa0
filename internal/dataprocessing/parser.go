package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	apperrors "enrolpulse/internal/errors"
	"enrolpulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// nullValues are read as missing cells.
var nullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

// ParsedFile is one source file loaded into a string-typed dataframe with
// normalised column labels.
type ParsedFile struct {
	Name    string
	Columns []string
	Rows    int
	Frame   dataframe.DataFrame
}

// Empty reports whether the file contributed no data rows.
func (p ParsedFile) Empty() bool {
	return p.Rows == 0
}

// ParseFile reads a .csv or .xlsx file into a ParsedFile.
func ParseFile(path string) (ParsedFile, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSVRecords(path)
	case ".xlsx":
		records, err = readXLSXRecords(path)
	default:
		return ParsedFile{}, apperrors.NewParsingError(fmt.Sprintf("unsupported file type: %s", filepath.Base(path)), nil)
	}
	if err != nil {
		return ParsedFile{}, err
	}

	return buildFrame(filepath.Base(path), records)
}

// NormalizeLabel trims and lowercases a column label.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// NormalizeHeader canonicalises a header row. Blank labels get positional
// names; two labels that collide after normalisation are rejected.
func NormalizeHeader(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))

	for i, raw := range header {
		label := NormalizeLabel(raw)
		if label == "" {
			label = fmt.Sprintf("column_%d", i+1)
		}
		if prev, ok := seen[label]; ok {
			return nil, apperrors.NewSchemaError(
				fmt.Sprintf("duplicate column %q after normalisation", label),
				nil,
			).WithContext("first", header[prev]).WithContext("second", raw)
		}
		seen[label] = i
		out[i] = label
	}
	return out, nil
}

func buildFrame(name string, records [][]string) (ParsedFile, error) {
	pf := ParsedFile{Name: name}
	if len(records) == 0 {
		return pf, nil
	}

	header, err := NormalizeHeader(records[0])
	if err != nil {
		return pf, err
	}
	pf.Columns = header

	rows := make([][]string, 0, len(records))
	rows = append(rows, header)
	for _, rec := range records[1:] {
		if blankRow(rec) {
			continue
		}
		rows = append(rows, fitRow(rec, len(header)))
	}

	pf.Rows = len(rows) - 1
	if pf.Rows == 0 {
		return pf, nil
	}

	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nullValues),
	)
	if df.Err != nil {
		return pf, apperrors.NewParsingError(fmt.Sprintf("failed to load %s", name), df.Err)
	}
	pf.Frame = df
	return pf, nil
}

func readCSVRecords(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewDataSourceError(fmt.Sprintf("failed to read %s", filepath.Base(path)), err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("malformed CSV in %s", filepath.Base(path)), err)
	}
	return records, nil
}

func readXLSXRecords(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewDataSourceError(fmt.Sprintf("failed to open %s", filepath.Base(path)), err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q in %s", sheet, filepath.Base(path)), err)
		}
		if len(rows) == 0 {
			continue
		}
		if len(rows[0]) > 0 {
			rows[0][0] = strings.TrimPrefix(rows[0][0], string(utf8BOM))
		}
		convertSerialDates(rows)
		return rows, nil
	}
	return nil, nil
}

// convertSerialDates rewrites numeric date cells (Excel serials) as DD-MM-YYYY.
func convertSerialDates(rows [][]string) {
	col := -1
	for i, label := range rows[0] {
		if NormalizeLabel(label) == domain.ColumnDate {
			col = i
			break
		}
	}
	if col < 0 {
		return
	}

	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if _, ok := ParseDate(cell); ok {
			continue
		}
		serial, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			continue
		}
		row[col] = t.Format(domain.DateLayout)
	}
}

func blankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// fitRow pads short rows with empty cells and drops cells beyond the header.
func fitRow(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}

// ParseDate parses a DD-MM-YYYY value; single-digit days and months are accepted.
func ParseDate(value string) (time.Time, bool) {
	t, err := time.Parse("2-1-2006", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
