package spreadsheet

import (
	"fmt"
	"strconv"
)

// MaxColumns is the number of single letter columns, A through Z
const MaxColumns = 26

// CellAddress identifies a cell by zero-based row and column
type CellAddress struct {
	Row    int
	Column int
}

// String renders the address as <ColumnLetter><RowNumber>, e.g. B3
func (a CellAddress) String() string {
	return FormatAddress(a)
}

// FormatAddress renders an address as <ColumnLetter><RowNumber>
func FormatAddress(a CellAddress) string {
	return string(rune('A'+a.Column)) + strconv.Itoa(a.Row+1)
}

// ParseAddress parses a name such as "B3" into a zero-based address. the
// column must be a single upper case letter and the row a positive integer.
func ParseAddress(name string) (CellAddress, error) {
	if len(name) < 2 {
		return CellAddress{}, fmt.Errorf("%w: %q", ErrInvalidAddress, name)
	}

	letter := name[0]
	if letter < 'A' || letter > 'Z' {
		return CellAddress{}, fmt.Errorf("%w: %q has no column letter", ErrInvalidAddress, name)
	}

	rowNumber, err := strconv.Atoi(name[1:])
	if err != nil || rowNumber < 1 || name[1] == '+' {
		return CellAddress{}, fmt.Errorf("%w: %q has no row number", ErrInvalidAddress, name)
	}

	return CellAddress{
		Row:    rowNumber - 1,
		Column: int(letter - 'A'),
	}, nil
}
