package importer

import (
	"fmt"
	"strings"

	"github.com/intesasp/xlsx2ofx/internal/layout"
	"github.com/intesasp/xlsx2ofx/internal/workbook"
)

// Row is one raw transaction row.
type Row struct {
	Number int // 1-based sheet row
	Values []workbook.Value
}

// RowScanner walks the transaction table one row at a time, stopping before
// the first row whose first cell is empty. Usage follows bufio.Scanner:
//
//	for rows.Next() {
//		row := rows.Row()
//	}
//	if err := rows.Err(); err != nil { ... }
//
// A scanner cannot be rewound; start a new one to re-read.
type RowScanner struct {
	book   workbook.Book
	sheet  string
	window layout.RowWindow
	skip   func(Row) bool

	next int
	row  Row
	err  error
	done bool
}

func newRowScanner(book workbook.Book, sheet string, window layout.RowWindow, skip func(Row) bool) *RowScanner {
	return &RowScanner{
		book:   book,
		sheet:  sheet,
		window: window,
		skip:   skip,
		next:   window.FirstRow,
	}
}

// Rows returns a scanner over the movement rows of the workbook. Operation
// list rows that have not been posted yet are skipped.
func (e *Extractor) Rows() *RowScanner {
	var skip func(Row) bool
	if l, ok := e.layout.(*layout.OperationList); ok {
		skip = func(r Row) bool {
			return strings.EqualFold(r.Values[l.ColStatus].Text(), l.UnpostedMarker)
		}
	}
	return newRowScanner(e.book, e.layout.Sheet(), e.layout.Rows(), skip)
}

// Next advances to the next row. It returns false at the end of the table or
// on error.
func (s *RowScanner) Next() bool {
	for !s.done {
		number := s.next
		values, err := s.book.Row(s.sheet, number, s.window.FirstCol, s.window.LastCol)
		if err != nil {
			s.err = fmt.Errorf("row %d: %w", number, err)
			s.done = true
			return false
		}
		s.next++

		if len(values) < s.window.NumFields || values[0].IsEmpty() {
			s.done = true
			return false
		}
		row := Row{Number: number, Values: values}
		if s.skip != nil && s.skip(row) {
			continue
		}
		s.row = row
		return true
	}
	return false
}

// Row returns the row read by the last successful Next.
func (s *RowScanner) Row() Row {
	return s.row
}

// Err returns the first error met while scanning.
func (s *RowScanner) Err() error {
	return s.err
}
