package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyFile is returned when an uploaded file holds no content.
var ErrEmptyFile = errors.New("file is empty")

// ParseCSV reads a CSV file with a header row into raw rows keyed by the
// header cells. Empty lines are skipped; cell values stay strings and are
// interpreted later by ValidateRows.
func ParseCSV(data []byte) ([]Row, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows surface as validation errors, not parse errors
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if isBlank(rec) {
			continue
		}
		rows = append(rows, recordToRow(header, rec))
	}
	return rows, nil
}

// ParseXLSX reads the first worksheet of an Excel file into raw rows keyed
// by the first row's cells.
func ParseXLSX(data []byte) ([]Row, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, ErrEmptyFile
	}

	header := all[0]
	var rows []Row
	for _, rec := range all[1:] {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, recordToRow(header, rec))
	}
	return rows, nil
}

func recordToRow(header, rec []string) Row {
	row := make(Row, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(rec) {
			row[h] = rec[i]
		}
	}
	return row
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if c != "" {
			return false
		}
	}
	return true
}
