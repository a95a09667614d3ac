package csvimport

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyWorkbook is returned when a workbook has no sheets or rows.
var ErrEmptyWorkbook = errors.New("workbook has no rows")

// NormalizeXLSX reads the first sheet of a workbook and converts it with
// the same column mapping as CSV input. Cells are taken as-is, so commas
// inside a cell survive.
func NormalizeXLSX(r io.Reader) (string, error) {
	f, openErr := excelize.OpenReader(r)
	if openErr != nil {
		return "", fmt.Errorf("open workbook: %w", openErr)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrEmptyWorkbook
	}

	rows, rowsErr := f.GetRows(sheets[0])
	if rowsErr != nil {
		return "", fmt.Errorf("read sheet %s: %w", sheets[0], rowsErr)
	}
	if len(rows) == 0 {
		return "", ErrEmptyWorkbook
	}

	return NormalizeRows(rows), nil
}
