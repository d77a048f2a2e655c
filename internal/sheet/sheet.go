// Package sheet reads the first worksheet of a closing export into a header
// row plus data rows of plain strings.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Raw is the untyped content of one worksheet.
type Raw struct {
	FileName  string
	SheetName string
	Headers   []string
	Rows      [][]string
}

// Format is a supported container, keyed by file extension.
type Format string

const (
	FormatXLSX Format = ".xlsx"
	FormatXLS  Format = ".xls"
	FormatCSV  Format = ".csv"
)

// FormatOf returns the container format implied by a file name.
func FormatOf(fileName string) (Format, error) {
	switch ext := Format(strings.ToLower(filepath.Ext(fileName))); ext {
	case FormatXLSX, FormatXLS, FormatCSV:
		return ext, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// Read parses the first worksheet of r. The first non-blank row is taken as
// the header row.
func Read(fileName string, r io.Reader) (*Raw, error) {
	format, err := FormatOf(fileName)
	if err != nil {
		return nil, err
	}

	var (
		name string
		rows [][]string
	)

	switch format {
	case FormatXLSX:
		name, rows, err = readXLSX(r)
	case FormatXLS:
		name, rows, err = readXLS(r)
	case FormatCSV:
		name, rows, err = readCSV(r)
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}

	raw := &Raw{FileName: filepath.Base(fileName), SheetName: name}
	raw.Headers, raw.Rows = splitHeader(rows)

	return raw, nil
}

func splitHeader(rows [][]string) ([]string, [][]string) {
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}

	for i, row := range rows {
		if blank(row) {
			continue
		}

		headers := make([]string, len(row))
		for j, h := range row {
			headers[j] = strings.TrimSpace(h)
		}

		return headers, rows[i+1:]
	}

	return nil, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
