package workbook

import (
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"
)

// Memory is a Book held entirely in memory, for sheets that were decoded
// elsewhere.
type Memory struct {
	order  []string
	cells  map[string]map[string]string
	closed bool
}

// NewMemory returns an empty in-memory workbook.
func NewMemory() *Memory {
	return &Memory{cells: make(map[string]map[string]string)}
}

// AddSheet creates an empty sheet. Adding an existing sheet is a no-op.
func (m *Memory) AddSheet(name string) *Memory {
	if _, ok := m.cells[name]; !ok {
		m.cells[name] = make(map[string]string)
		m.order = append(m.order, name)
	}
	return m
}

// Set stores raw text at sheet!axis, creating the sheet if needed.
func (m *Memory) Set(sheet, axis, raw string) *Memory {
	m.AddSheet(sheet)
	m.cells[sheet][axis] = raw
	return m
}

// SetRow stores values left to right starting at column A of row.
func (m *Memory) SetRow(sheet string, row int, raws ...string) *Memory {
	for i, raw := range raws {
		axis, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			panic(err)
		}
		m.Set(sheet, axis, raw)
	}
	return m
}

// SheetNames returns sheet names in creation order.
func (m *Memory) SheetNames() []string {
	return slices.Clone(m.order)
}

// Cell returns the value at sheet!axis; missing cells are empty.
func (m *Memory) Cell(sheet, axis string) (Value, error) {
	cells, ok := m.cells[sheet]
	if !ok {
		return Value{}, fmt.Errorf("sheet %s does not exist", sheet)
	}
	return Value{Raw: cells[axis]}, nil
}

// Row returns the values of one row between two columns.
func (m *Memory) Row(sheet string, row int, firstCol, lastCol string) ([]Value, error) {
	first, err := excelize.ColumnNameToNumber(firstCol)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", firstCol, err)
	}
	last, err := excelize.ColumnNameToNumber(lastCol)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", lastCol, err)
	}
	var values []Value
	for col := first; col <= last; col++ {
		axis, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return nil, err
		}
		v, err := m.Cell(sheet, axis)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Close marks the workbook closed.
func (m *Memory) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *Memory) Closed() bool {
	return m.closed
}
