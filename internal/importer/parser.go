package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when the upload contains no data rows.
	ErrEmptyFile = errors.New("no data rows found in file")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// RawRow holds one data row keyed by canonical field name, values trimmed.
type RawRow map[string]string

// Sheet is the parsed form of an uploaded spreadsheet after column mapping.
// RowNumbers carries the 1-based position of each row in the source file
// (header row included), so warnings and errors can point at the original
// line the operator sees in their spreadsheet program.
type Sheet struct {
	FileName   string
	Fields     []string
	Rows       []RawRow
	RowNumbers []int
}

// ParseSheet reads a CSV or XLSX upload, maps its headers onto canonical
// fields, and rejects the file outright if any required column is absent.
// Unmapped headers are dropped silently; fully empty rows are skipped.
func ParseSheet(fileName string, payload []byte) (*Sheet, error) {
	if len(payload) == 0 {
		return nil, errors.New("file is empty")
	}

	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv", ".txt":
		records, err = readCSV(payload)
	case ".xlsx":
		records, err = readExcel(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := records[0]
	fieldByColumn := make(map[int]string, len(header))
	present := make(map[string]bool, len(header))
	var fields []string
	for idx, raw := range header {
		field, ok := canonicalField(raw)
		if !ok {
			continue
		}
		if present[field] {
			// Duplicate aliases for the same field; first column wins.
			continue
		}
		fieldByColumn[idx] = field
		present[field] = true
		fields = append(fields, field)
	}

	var missing []string
	for _, field := range requiredFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required columns missing from sheet: %s", strings.Join(missing, ", "))
	}

	sheet := &Sheet{FileName: fileName, Fields: fields}
	for idx, record := range records[1:] {
		if isEmptyRow(record) {
			continue
		}
		row := make(RawRow, len(fieldByColumn))
		for col, field := range fieldByColumn {
			if col < len(record) {
				row[field] = strings.TrimSpace(record[col])
			}
		}
		sheet.Rows = append(sheet.Rows, row)
		sheet.RowNumbers = append(sheet.RowNumbers, idx+2)
	}
	if len(sheet.Rows) == 0 {
		return nil, ErrEmptyFile
	}

	return sheet, nil
}

func readCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

func readExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
