// internal/app/system/csvutil/roster.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrTooManyRows is returned when a file has more data rows than
	// ParseOptions.MaxRows allows.
	ErrTooManyRows = errors.New("csv: too many rows")
	// ErrNoHeader is returned when the first row has no usable column names.
	ErrNoHeader = errors.New("csv: missing header row")
)

// ParseOptions tunes ParseRoster. A zero MaxRows means unlimited.
type ParseOptions struct {
	MaxRows int
}

// DefaultParseOptions returns options with no row limit.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{}
}

// Row is one data row keyed by the header cell of its column.
// Header keys are kept as written (trimmed); translating them is the
// roster normalizer's job.
type Row struct {
	Line   int
	Fields map[string]string
}

// RowError is a row the reader could not split into cells.
type RowError struct {
	Line   int
	Reason string
	Raw    []string
}

func (e RowError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ParseResult holds the rows of a roster file in file order.
type ParseResult struct {
	Header []string
	Rows   []Row
	Errors []RowError
}

// HasErrors returns true if any row was rejected by the reader.
func (r *ParseResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ParseRoster reads a roster CSV whose first row is the header.
//
//   - A UTF-8 BOM on the first cell is dropped.
//   - Blank rows are skipped.
//   - Cells past the last header column are ignored; missing trailing
//     cells are simply absent from Fields.
//   - Malformed rows (bad quoting) become RowErrors; the rest of the file
//     is still read.
//
// An empty input yields an empty result. Returns ErrTooManyRows if
// MaxRows is exceeded (when MaxRows > 0).
func ParseRoster(r io.Reader, opts ParseOptions) (ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.TrimLeadingSpace = true

	var result ParseResult

	first, err := reader.Read()
	if err == io.EOF {
		return result, nil // empty file
	}
	if err != nil {
		return result, err
	}
	header, err := readHeader(first)
	if err != nil {
		return result, err
	}
	result.Header = header

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				result.Errors = append(result.Errors, RowError{
					Line:   pe.StartLine,
					Reason: pe.Err.Error(),
					Raw:    rec,
				})
				continue
			}
			return result, err
		}
		line, _ := reader.FieldPos(0)
		if err := result.appendRow(line, rec, opts); err != nil {
			return result, err
		}
	}

	return result, nil
}

// appendRow keys rec by the header. Blank rows are dropped.
func (r *ParseResult) appendRow(line int, rec []string, opts ParseOptions) error {
	if isBlank(rec) {
		return nil
	}
	if opts.MaxRows > 0 && len(r.Rows) >= opts.MaxRows {
		return ErrTooManyRows
	}

	fields := make(map[string]string, len(r.Header))
	for i, h := range r.Header {
		if h == "" || i >= len(rec) {
			continue
		}
		fields[h] = rec[i]
	}
	r.Rows = append(r.Rows, Row{Line: line, Fields: fields})
	return nil
}

func readHeader(rec []string) ([]string, error) {
	header := make([]string, len(rec))
	seen := make(map[string]bool, len(rec))
	named := false
	for i, h := range rec {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		key := strings.ToLower(h)
		if seen[key] {
			return nil, fmt.Errorf("csv: duplicate column %q", h)
		}
		seen[key] = true
		header[i] = h
		named = true
	}
	if !named {
		return nil, ErrNoHeader
	}
	return header, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
