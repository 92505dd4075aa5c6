// Package workbook reads raw cell values out of spreadsheet exports.
package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Book is the read capability the statement extractor needs.
type Book interface {
	SheetNames() []string
	Cell(sheet, axis string) (Value, error)
	// Row returns cells firstCol..lastCol (inclusive) of a 1-based row.
	Row(sheet string, row int, firstCol, lastCol string) ([]Value, error)
	Close() error
}

// File is a Book backed by an .xlsx file on disk.
type File struct {
	f        *excelize.File
	date1904 bool
}

// Open opens an .xlsx workbook. The caller must Close it.
func Open(path string) (*File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	wb := &File{f: f}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

// SheetNames returns the sheet names in workbook order.
func (wb *File) SheetNames() []string {
	return wb.f.GetSheetList()
}

// Cell returns the unformatted value at axis (e.g. "D8").
func (wb *File) Cell(sheet, axis string) (Value, error) {
	raw, err := wb.f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return Value{}, fmt.Errorf("reading %s!%s: %w", sheet, axis, err)
	}
	return Value{Raw: raw, Date1904: wb.date1904}, nil
}

// Row returns the unformatted values of one row between two columns.
func (wb *File) Row(sheet string, row int, firstCol, lastCol string) ([]Value, error) {
	first, err := excelize.ColumnNameToNumber(firstCol)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", firstCol, err)
	}
	last, err := excelize.ColumnNameToNumber(lastCol)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", lastCol, err)
	}
	if last < first {
		return nil, fmt.Errorf("column range %s:%s is reversed", firstCol, lastCol)
	}

	values := make([]Value, 0, last-first+1)
	for col := first; col <= last; col++ {
		axis, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return nil, fmt.Errorf("row %d col %d: %w", row, col, err)
		}
		v, err := wb.Cell(sheet, axis)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Close releases the underlying file.
func (wb *File) Close() error {
	return wb.f.Close()
}
