// Package sheet provides the positional tracking table that backs lead
// capture. Rows and columns are 1-indexed; row 1 is the header and column
// position is the only identity a field has.
package sheet

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("row not found")

// Table is a handle to a tracking table. Implementations serialize
// individual operations but read-modify-write sequences are not atomic.
type Table interface {
	// Append adds a row after the last one and returns its 1-indexed number.
	Append(cells []string) (int, error)
	// ReadAll returns every row, header included, in table order.
	ReadAll() ([][]string, error)
	// ReadCell returns the value at (row, col). Columns beyond the stored
	// row width read as empty string.
	ReadCell(row, col int) (string, error)
	// WriteCell sets the value at (row, col), widening the row if needed.
	WriteCell(row, col int, value string) error
	// LastRow returns the 1-indexed number of the last row, 0 when empty.
	LastRow() (int, error)
}

// EnsureHeader appends the header row to an empty table. A non-empty table
// is left untouched; the deployed header is the column contract and must
// never change in place.
func EnsureHeader(t Table, header []string) error {
	last, err := t.LastRow()
	if err != nil {
		return fmt.Errorf("checking last row: %w", err)
	}
	if last > 0 {
		return nil
	}
	row, err := t.Append(header)
	if err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}
	if row != 1 {
		return fmt.Errorf("header landed on row %d, want 1", row)
	}
	return nil
}
