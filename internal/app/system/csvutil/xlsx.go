// internal/app/system/csvutil/xlsx.go
package csvutil

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the media type of an Excel workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ParseRosterXLSX reads the first sheet of an Excel workbook with the same
// rules as ParseRoster. Line numbers are spreadsheet row numbers.
//
// A workbook whose first sheet is empty yields an empty result.
func ParseRosterXLSX(r io.Reader, opts ParseOptions) (ParseResult, error) {
	var result ParseResult

	f, err := excelize.OpenReader(r)
	if err != nil {
		return result, fmt.Errorf("xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return result, nil
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return result, fmt.Errorf("xlsx: %w", err)
	}
	defer rows.Close()

	line := 0
	for rows.Next() {
		line++
		rec, err := rows.Columns()
		if err != nil {
			return result, fmt.Errorf("xlsx: row %d: %w", line, err)
		}

		if result.Header == nil {
			if isBlank(rec) {
				continue // leading empty rows before the header
			}
			header, err := readHeader(rec)
			if err != nil {
				return result, err
			}
			result.Header = header
			continue
		}

		if err := result.appendRow(line, rec, opts); err != nil {
			return result, err
		}
	}
	if err := rows.Error(); err != nil {
		return result, fmt.Errorf("xlsx: %w", err)
	}
	return result, nil
}
