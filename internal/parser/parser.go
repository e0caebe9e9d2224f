// Package parser turns raw delimited-text uploads into a ParsedTable.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bizdesk/backend/internal/models"
)

// ErrNoDataRows is returned when a file contains a header row but no data,
// or nothing at all. This is the only fatal parse condition; everything else
// is recovered by padding or truncating the offending row.
var ErrNoDataRows = errors.New("file contains no data rows")

// DefaultDelimiter is used when the caller does not specify one.
const DefaultDelimiter = ','

// Parse decodes data to UTF-8 and splits it into a header row plus data
// rows. Quoted fields may contain the delimiter, embedded newlines and
// doubled quote characters. Ragged rows are padded or truncated to the
// header width. Fully-empty rows are dropped.
func Parse(data []byte, delimiter rune) (*models.ParsedTable, error) {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	decoded, _, err := DetectAndDecode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	// Ragged rows are handled below rather than rejected.
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoDataRows
		}
		return nil, fmt.Errorf("reading header row: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	width := len(headers)
	rows := make([][]string, 0)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.Reader with LazyQuotes only fails on hard structural
			// problems; skip the row rather than abort the file.
			continue
		}

		if isEmptyRow(row) {
			continue
		}

		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		} else if len(row) > width {
			row = row[:width]
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}

	return &models.ParsedTable{Headers: headers, Rows: rows}, nil
}

// Serialize renders a table back to delimited text. Used by round-trip tests
// and the mapping preview download.
func Serialize(table *models.ParsedTable, delimiter rune) (string, error) {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delimiter

	if err := w.Write(table.Headers); err != nil {
		return "", err
	}
	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
