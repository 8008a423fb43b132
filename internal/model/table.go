// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"slices"
)

// Table is an ordered collection of named columns of string cells.
// Every column holds the same number of cells; the empty string means
// "no value". Cell types are never inferred.
type Table struct {
	Columns []Column
}

// Column is a named, ordered list of cell values.
type Column struct {
	Name  string
	Cells []string
}

// NewTable builds a table from a header row and data rows. Rows are
// assumed rectangular; ragged input is the loader's problem.
func NewTable(header []string, rows [][]string) *Table {
	cols := make([]Column, len(header))
	for i, name := range header {
		cells := make([]string, len(rows))
		for j, row := range rows {
			cells[j] = row[i]
		}
		cols[i] = Column{Name: name, Cells: cells}
	}
	return &Table{Columns: cols}
}

// NumRows returns the row count shared by every column.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil when absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// Project returns a new table holding only the named columns, in the
// table's original column order regardless of the argument order.
// Unknown names are an error.
func (t *Table) Project(names []string) (*Table, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if !t.HasColumn(n) {
			return nil, fmt.Errorf("unknown column %q", n)
		}
		want[n] = true
	}
	cols := make([]Column, 0, len(want))
	for _, c := range t.Columns {
		if want[c.Name] {
			cols = append(cols, Column{Name: c.Name, Cells: slices.Clone(c.Cells)})
		}
	}
	return &Table{Columns: cols}, nil
}

// SelectRows returns a new table holding only the rows at the given
// indices, in the given order.
func (t *Table) SelectRows(keep []int) *Table {
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cells := make([]string, len(keep))
		for j, idx := range keep {
			cells[j] = c.Cells[idx]
		}
		cols[i] = Column{Name: c.Name, Cells: cells}
	}
	return &Table{Columns: cols}
}

// AppendColumn returns a new table with an extra column on the right.
// The cell count must match the table's row count.
func (t *Table) AppendColumn(name string, cells []string) (*Table, error) {
	if len(t.Columns) > 0 && len(cells) != t.NumRows() {
		return nil, fmt.Errorf("column %q has %d cells, table has %d rows",
			name, len(cells), t.NumRows())
	}
	cols := make([]Column, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		cols = append(cols, Column{Name: c.Name, Cells: slices.Clone(c.Cells)})
	}
	cols = append(cols, Column{Name: name, Cells: slices.Clone(cells)})
	return &Table{Columns: cols}, nil
}

// Head returns a new table with at most n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.NumRows() {
		n = t.NumRows()
	}
	keep := make([]int, n)
	for i := range keep {
		keep[i] = i
	}
	return t.SelectRows(keep)
}

// Row materializes the i'th row in column order.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Cells[i]
	}
	return row
}

// Rows materializes every row in order.
func (t *Table) Rows() [][]string {
	rows := make([][]string, t.NumRows())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}
