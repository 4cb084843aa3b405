package spreadsheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/vogtb/gridcalc/packages/expression"
)

// formulaPrefix marks cell text that is evaluated as a formula
const formulaPrefix = "="

// Sheet owns a fixed grid of cells, recalculates formulas when cell text
// changes and keeps the undo and redo history. a Sheet is not safe for
// concurrent use; every edit runs its whole cascade before returning.
type Sheet struct {
	rows    int
	columns int
	cells   [][]*Cell

	undoStack []Command
	redoStack []Command

	observers observerList
	logger    zerolog.Logger
}

// Option configures a Sheet
type Option func(*Sheet)

// WithLogger sets the logger used for recalculation diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Sheet) {
		s.logger = logger
	}
}

// New creates a sheet with the given number of rows and columns. columns
// are limited to the single letters A through Z.
func New(rows, columns int, opts ...Option) (*Sheet, error) {
	if rows <= 0 || columns <= 0 {
		return nil, NewApplicationError(InvalidArgument,
			fmt.Sprintf("sheet size must be positive, got %dx%d", rows, columns), nil)
	}
	if columns > MaxColumns {
		return nil, NewApplicationError(InvalidArgument,
			fmt.Sprintf("sheet supports at most %d columns, got %d", MaxColumns, columns), nil)
	}

	s := &Sheet{
		rows:    rows,
		columns: columns,
		cells:   make([][]*Cell, rows),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for row := 0; row < rows; row++ {
		s.cells[row] = make([]*Cell, columns)
		for col := 0; col < columns; col++ {
			cell := newCell(row, col)
			cell.Subscribe(s.cellChanged)
			s.cells[row][col] = cell
		}
	}

	return s, nil
}

// RowCount returns the number of rows
func (s *Sheet) RowCount() int {
	return s.rows
}

// ColumnCount returns the number of columns
func (s *Sheet) ColumnCount() int {
	return s.columns
}

// GetCell returns the cell at a zero-based position. positions outside the
// grid fail with ErrInvalidCell.
func (s *Sheet) GetCell(row, column int) (*Cell, error) {
	if row < 0 || row >= s.rows || column < 0 || column >= s.columns {
		return nil, NewApplicationError(OutOfRange,
			fmt.Sprintf("cell (%d, %d) is outside the %dx%d sheet", row, column, s.rows, s.columns),
			ErrInvalidCell)
	}
	return s.cells[row][column], nil
}

// Cell returns the cell at an address
func (s *Sheet) Cell(addr CellAddress) (*Cell, error) {
	return s.GetCell(addr.Row, addr.Column)
}

// CellByName returns the cell for a name such as "B3"
func (s *Sheet) CellByName(name string) (*Cell, error) {
	addr, err := ParseAddress(name)
	if err != nil {
		return nil, NewApplicationError(InvalidArgument, err.Error(), err)
	}
	return s.Cell(addr)
}

// Cells returns every cell in row-major order
func (s *Sheet) Cells() []*Cell {
	result := make([]*Cell, 0, s.rows*s.columns)
	for _, row := range s.cells {
		result = append(result, row...)
	}
	return result
}

// NonEmptyCells returns the cells that have text or a non-default color,
// in row-major order
func (s *Sheet) NonEmptyCells() []*Cell {
	var result []*Cell
	for _, row := range s.cells {
		for _, cell := range row {
			if !cell.IsEmpty() {
				result = append(result, cell)
			}
		}
	}
	return result
}

// Subscribe registers an observer for value and color changes of every
// cell. the returned function removes it again.
func (s *Sheet) Subscribe(observer Observer) func() {
	return s.observers.add(observer)
}

// Reset clears the text and color of every cell, forgets every formula
// and dependency edge and drops the undo and redo history
func (s *Sheet) Reset() {
	cells := s.Cells()
	for _, cell := range cells {
		cell.ClearText()
		cell.SetBackgroundColor(DefaultBackgroundColor)
	}
	// clearing text never drops edges, so they go in a second pass
	for _, cell := range cells {
		cell.forgetFormula()
		cell.clearDependents()
	}
	s.ClearHistory()
}

// Recalculate evaluates every cell once in row-major order without
// cascading. used after bulk loads where formulas may reference cells that
// were filled in later.
func (s *Sheet) Recalculate() {
	for _, cell := range s.Cells() {
		s.recalculate(cell)
	}
}

// cellChanged is subscribed to every cell of the sheet
func (s *Sheet) cellChanged(cell *Cell, property Property) {
	switch property {
	case PropertyText:
		s.update(cell)
	case PropertyValue, PropertyColor:
		s.observers.notify(cell, property)
	}
}

// update recalculates a cell whose text changed, then every cell that
// transitively depends on it
func (s *Sheet) update(cell *Cell) {
	halt, released := s.recalculate(cell)
	s.cascade(cell, halt, released, map[*Cell]struct{}{cell: {}})
}

// cascade re-evaluates the dependents of a cell. the dependent list is a
// snapshot taken before recursing. a halted cell only passes on the
// dependents its formula change released. cells on the current path are
// skipped, which only matters for stale edges that loop through literal
// cells.
func (s *Sheet) cascade(cell *Cell, halt bool, released []*Cell, path map[*Cell]struct{}) {
	pending := released
	if !halt {
		pending = mergeCells(released, cell.Dependents())
	}
	for _, dependent := range pending {
		if _, onPath := path[dependent]; onPath {
			continue
		}
		dependentHalt, dependentReleased := s.recalculate(dependent)
		path[dependent] = struct{}{}
		s.cascade(dependent, dependentHalt, dependentReleased, path)
		delete(path, dependent)
	}
}

// recalculate derives the value of one cell from its text. halt reports
// whether the cascade stops at this cell. released holds dependents that
// were dropped because the formula changed; they are re-evaluated with the
// rest of the cascade, which registers their edges again.
func (s *Sheet) recalculate(cell *Cell) (halt bool, released []*Cell) {
	text, hasText := cell.Text()
	if !hasText {
		cell.clearValue()
		return false, nil
	}
	if !strings.HasPrefix(text, formulaPrefix) {
		cell.setValue(text)
		return false, nil
	}

	formula := strings.TrimPrefix(text, formulaPrefix)
	if cell.hasFormula && cell.formula != formula {
		released = cell.clearDependents()
	}
	cell.formula = formula
	cell.hasFormula = true

	value, err := s.evaluateFormula(cell, formula)
	if err != nil {
		s.logger.Warn().
			Str("cell", cell.Name()).
			Str("formula", formula).
			Err(err).
			Msg("formula evaluation failed")
		cell.setValue(CellErrorMessage(err))
		return haltsCascade(err), released
	}

	s.logger.Debug().
		Str("cell", cell.Name()).
		Str("formula", formula).
		Str("value", value).
		Int("dependents", len(cell.dependents)).
		Msg("recalculated cell")
	cell.setValue(value)
	return false, released
}

// evaluateFormula compiles a formula, binds the values of referenced
// cells, registers this cell as their dependent and checks for circular
// references
func (s *Sheet) evaluateFormula(cell *Cell, formula string) (value string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewApplicationError(Internal, fmt.Sprintf("panic while evaluating %s: %v", cell.Name(), r), nil)
		}
	}()

	tree, err := expression.New(formula)
	if err != nil {
		return "", err
	}

	var lastReferenced *Cell
	for _, name := range tree.Variables() {
		referenced, err := s.resolveVariable(name)
		if err != nil {
			return "", err
		}
		if referenced == cell {
			return "", ErrSameReferenceCell
		}

		// referenced cells without a numeric value leave the variable at 0
		if raw, ok := referenced.Value(); ok {
			if number, ok := parseNumber(raw); ok {
				tree.SetVariable(name, number)
			}
		}

		referenced.addDependent(cell)
		lastReferenced = referenced
	}

	result := tree.Evaluate()
	switch {
	case result != 0:
		value = FormatNumber(result)
	case lastReferenced != nil && lastReferenced.hasValue:
		// a zero result shows the referenced value as is, which carries
		// text and error values through. a computed 0 looks the same.
		value = lastReferenced.value
	default:
		value = "0"
	}

	if err := cell.checkCircular(cell, s.rows*s.columns); err != nil {
		return "", err
	}

	return value, nil
}

// resolveVariable maps a variable name to a cell: the first rune is the
// column letter, the rest the one-based row number
func (s *Sheet) resolveVariable(name string) (*Cell, error) {
	runes := []rune(name)
	column := int(runes[0] - 'A')

	rowNumber, err := strconv.Atoi(string(runes[1:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVariable, name)
	}

	return s.GetCell(rowNumber-1, column)
}

// parseNumber reads a cell value as a number. the sheet's own renderings
// of infinite and NaN results read back; other letter-led text such as
// "nan" or "-inf" stays text, matching how formula tokens are read.
func parseNumber(raw string) (float64, bool) {
	switch raw {
	case "Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	case "NaN":
		return math.NaN(), true
	}
	unsigned := strings.TrimLeft(raw, "+-")
	if first, _ := utf8.DecodeRuneInString(unsigned); unicode.IsLetter(first) {
		return 0, false
	}
	number, err := strconv.ParseFloat(raw, 64)
	return number, err == nil
}

// FormatNumber renders a formula result the way cells show it: no exponent
// notation, Infinity, -Infinity and NaN for the special values
func FormatNumber(value float64) string {
	switch {
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case math.IsNaN(value):
		return "NaN"
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// mergeCells concatenates cell lists, dropping repeats
func mergeCells(lists ...[]*Cell) []*Cell {
	seen := make(map[*Cell]struct{})
	var result []*Cell
	for _, list := range lists {
		for _, cell := range list {
			if _, exists := seen[cell]; exists {
				continue
			}
			seen[cell] = struct{}{}
			result = append(result, cell)
		}
	}
	return result
}
