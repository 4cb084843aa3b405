package spreadsheet

import (
	"errors"
	"testing"
)

const (
	testRows    = 50
	testColumns = 26
)

type SheetTestCase struct {
	t     *testing.T
	name  string
	sheet *Sheet
	err   error
}

func NewSheetTestCase(t *testing.T, name string) *SheetTestCase {
	sheet, err := New(testRows, testColumns)
	if err != nil {
		t.Fatalf("%s: New(%d, %d) failed: %v", name, testRows, testColumns, err)
	}
	return &SheetTestCase{
		t:     t,
		name:  name,
		sheet: sheet,
		err:   nil,
	}
}

func (tc *SheetTestCase) cell(address string) *Cell {
	cell, err := tc.sheet.CellByName(address)
	if err != nil {
		tc.t.Errorf("%s: CellByName(%s) failed: %v", tc.name, address, err)
		return nil
	}
	return cell
}

func (tc *SheetTestCase) Set(address, text string) *SheetTestCase {
	if tc.err != nil {
		return tc
	}
	addr, err := ParseAddress(address)
	if err != nil {
		tc.err = err
		tc.t.Errorf("%s: ParseAddress(%s) failed: %v", tc.name, address, err)
		return tc
	}
	tc.err = tc.sheet.Edit(addr, text)
	if tc.err != nil {
		tc.t.Errorf("%s: Edit(%s) failed: %v", tc.name, address, tc.err)
	}
	return tc
}

func (tc *SheetTestCase) Clear(address string) *SheetTestCase {
	return tc.Set(address, "")
}

func (tc *SheetTestCase) Paint(color uint32, addresses ...string) *SheetTestCase {
	if tc.err != nil {
		return tc
	}
	targets := make([]CellAddress, 0, len(addresses))
	for _, address := range addresses {
		addr, err := ParseAddress(address)
		if err != nil {
			tc.err = err
			tc.t.Errorf("%s: ParseAddress(%s) failed: %v", tc.name, address, err)
			return tc
		}
		targets = append(targets, addr)
	}
	tc.err = tc.sheet.Paint(targets, color)
	if tc.err != nil {
		tc.t.Errorf("%s: Paint(%v) failed: %v", tc.name, addresses, tc.err)
	}
	return tc
}

func (tc *SheetTestCase) Undo() *SheetTestCase {
	if tc.err != nil {
		return tc
	}
	tc.err = tc.sheet.Undo()
	if tc.err != nil {
		tc.t.Errorf("%s: Undo() failed: %v", tc.name, tc.err)
	}
	return tc
}

func (tc *SheetTestCase) Redo() *SheetTestCase {
	if tc.err != nil {
		return tc
	}
	tc.err = tc.sheet.Redo()
	if tc.err != nil {
		tc.t.Errorf("%s: Redo() failed: %v", tc.name, tc.err)
	}
	return tc
}

func (tc *SheetTestCase) AssertValue(address, expected string) *SheetTestCase {
	if tc.err != nil {
		return tc
	}
	cell := tc.cell(address)
	if cell == nil {
		return tc
	}
	actual, ok := cell.Value()
	if !ok {
		tc.t.Errorf("%s: Cell %s has no value, want %q", tc.name, address, expected)
		return tc
	}
	if actual != expected {
		tc.t.Errorf("%s: Cell %s = %q, want %q", tc.name, address, actual, expected)
	}
	return tc
}

func (tc *SheetTestCase) AssertNoValue(address string) *SheetTestCase {
	if tc.err != nil {
		return tc
	}
	cell := tc.cell(address)
	if cell == nil {
		return tc
	}
	if actual, ok := cell.Value(); ok {
		tc.t.Errorf("%s: Cell %s = %q, want no value", tc.name, address, actual)
	}
	return tc
}

func (tc *SheetTestCase) AssertErr(address string, err error) *SheetTestCase {
	return tc.AssertValue(address, CellErrorMessage(err))
}

func (tc *SheetTestCase) AssertText(address, expected string) *SheetTestCase {
	if tc.err != nil {
		return tc
	}
	cell := tc.cell(address)
	if cell == nil {
		return tc
	}
	actual, ok := cell.Text()
	if expected == "" {
		if ok {
			tc.t.Errorf("%s: Cell %s has text %q, want none", tc.name, address, actual)
		}
		return tc
	}
	if actual != expected {
		tc.t.Errorf("%s: Cell %s text = %q, want %q", tc.name, address, actual, expected)
	}
	return tc
}

func (tc *SheetTestCase) AssertColor(address string, expected uint32) *SheetTestCase {
	if tc.err != nil {
		return tc
	}
	cell := tc.cell(address)
	if cell == nil {
		return tc
	}
	if actual := cell.BackgroundColor(); actual != expected {
		tc.t.Errorf("%s: Cell %s color = %08X, want %08X", tc.name, address, actual, expected)
	}
	return tc
}

func (tc *SheetTestCase) AssertHistory(canUndo, canRedo bool) *SheetTestCase {
	if tc.err != nil {
		return tc
	}
	if actual := tc.sheet.CanUndo(); actual != canUndo {
		tc.t.Errorf("%s: CanUndo() = %v, want %v", tc.name, actual, canUndo)
	}
	if actual := tc.sheet.CanRedo(); actual != canRedo {
		tc.t.Errorf("%s: CanRedo() = %v, want %v", tc.name, actual, canRedo)
	}
	return tc
}

func (tc *SheetTestCase) End() {
}

func TestLiteralsAndReferences(t *testing.T) {
	NewSheetTestCase(t, "Literal text is its own value").
		Set("A1", "hello").
		AssertValue("A1", "hello").
		AssertText("A1", "hello").
		End()

	NewSheetTestCase(t, "Simple reference").
		Set("B1", "100").
		Set("A1", "=B1").
		AssertValue("A1", "100").
		End()

	NewSheetTestCase(t, "Reference updates with its source").
		Set("B1", "100").
		Set("A1", "=B1").
		Set("B1", "5").
		AssertValue("A1", "5").
		End()

	NewSheetTestCase(t, "Reference to empty cell is zero").
		Set("B1", "=A1").
		AssertValue("B1", "0").
		AssertNoValue("A1").
		End()

	NewSheetTestCase(t, "Constant formula").
		Set("A1", "=77").
		AssertValue("A1", "77").
		End()

	NewSheetTestCase(t, "Empty formula").
		Set("A1", "=").
		AssertValue("A1", "0").
		End()

	NewSheetTestCase(t, "Formula evaluating to zero without references").
		Set("A1", "=3-3").
		AssertValue("A1", "0").
		End()

	NewSheetTestCase(t, "Letter-led literals are not numbers").
		Set("A1", "nan").
		Set("B1", "=A1").
		AssertValue("B1", "nan").
		Set("A2", "-inf").
		Set("B2", "=A2+1").
		AssertValue("B2", "1").
		Set("A3", "Infinity").
		Set("B3", "=A3+1").
		AssertValue("B3", "Infinity").
		End()

	NewSheetTestCase(t, "Cleared cell has no value").
		Set("A1", "5").
		Clear("A1").
		AssertNoValue("A1").
		AssertText("A1", "").
		End()
}

func TestArithmeticFormulas(t *testing.T) {
	NewSheetTestCase(t, "Addition").
		Set("A1", "77").
		Set("B1", "5").
		Set("C1", "=A1+B1").
		AssertValue("C1", "82").
		End()

	NewSheetTestCase(t, "Subtraction and update").
		Set("A1", "77").
		Set("B1", "5").
		Set("C1", "=A1-B1").
		AssertValue("C1", "72").
		Set("B1", "10").
		AssertValue("C1", "67").
		End()

	NewSheetTestCase(t, "Precedence and parentheses").
		Set("A1", "4").
		Set("A2", "8").
		Set("A3", "=A1+A2*2").
		Set("A4", "=(A1+A2)*2").
		AssertValue("A3", "20").
		AssertValue("A4", "24").
		End()

	NewSheetTestCase(t, "Decimal results").
		Set("A1", "=10/4").
		Set("A2", "=1.5*2").
		AssertValue("A1", "2.5").
		AssertValue("A2", "3").
		End()

	NewSheetTestCase(t, "Large values are not in exponent form").
		Set("A1", "=1000000*1000000*1000000").
		AssertValue("A1", "1000000000000000000").
		End()

	NewSheetTestCase(t, "Division by zero").
		Set("A1", "=8/0").
		Set("A2", "=0-8/0").
		Set("A3", "=A1*2").
		AssertValue("A1", "Infinity").
		AssertValue("A2", "-Infinity").
		AssertValue("A3", "Infinity").
		End()

	NewSheetTestCase(t, "Zero divided by zero").
		Set("A1", "=0/0").
		AssertValue("A1", "NaN").
		End()

	NewSheetTestCase(t, "Whitespace inside formulas").
		Set("A1", "2").
		Set("B1", "= A1 * 3 ").
		AssertValue("B1", "6").
		End()
}

func TestZeroResultShowsReferencedValue(t *testing.T) {
	NewSheetTestCase(t, "Text reference").
		Set("A1", "hello").
		Set("B1", "=A1").
		AssertValue("B1", "hello").
		End()

	NewSheetTestCase(t, "Computed zero shows last referenced value").
		Set("A1", "5").
		Set("B1", "5").
		Set("C1", "=A1-B1").
		AssertValue("C1", "5").
		End()

	NewSheetTestCase(t, "Error values flow through references").
		Set("A1", "=[").
		Set("B1", "=A1").
		AssertErr("A1", ErrInvalidFormula).
		AssertErr("B1", ErrInvalidFormula).
		End()
}

func TestCascade(t *testing.T) {
	NewSheetTestCase(t, "Chain").
		Set("A1", "1").
		Set("A2", "=A1+1").
		Set("A3", "=A2+1").
		Set("A4", "=A3+1").
		AssertValue("A4", "4").
		Set("A1", "10").
		AssertValue("A2", "11").
		AssertValue("A3", "12").
		AssertValue("A4", "13").
		End()

	NewSheetTestCase(t, "Fan out").
		Set("A1", "2").
		Set("B1", "=A1*2").
		Set("B2", "=A1*3").
		Set("B3", "=B1+B2").
		Set("A1", "4").
		AssertValue("B1", "8").
		AssertValue("B2", "12").
		AssertValue("B3", "20").
		End()

	NewSheetTestCase(t, "Clearing a source").
		Set("A1", "7").
		Set("B1", "=A1+1").
		Clear("A1").
		AssertValue("B1", "1").
		End()

	NewSheetTestCase(t, "Changing a formula keeps its dependents").
		Set("A1", "1").
		Set("B1", "2").
		Set("C1", "=A1").
		Set("D1", "=C1*10").
		AssertValue("D1", "10").
		Set("C1", "=B1").
		AssertValue("C1", "2").
		AssertValue("D1", "20").
		Set("B1", "3").
		AssertValue("C1", "3").
		AssertValue("D1", "30").
		End()
}

func TestFormulaErrors(t *testing.T) {
	NewSheetTestCase(t, "Invalid formula").
		Set("A1", "=[").
		AssertErr("A1", ErrInvalidFormula).
		AssertValue("A1", "Error: Invalid Formula.").
		End()

	NewSheetTestCase(t, "Missing operand").
		Set("A1", "=3+").
		AssertErr("A1", ErrInvalidFormula).
		End()

	NewSheetTestCase(t, "Unbalanced parenthesis").
		Set("A1", "=3+5)").
		AssertErr("A1", ErrInvalidFormula).
		End()

	NewSheetTestCase(t, "Invalid variable").
		Set("A1", "77").
		Set("B1", "=A1+HI").
		AssertErr("B1", ErrInvalidVariable).
		AssertValue("B1", "Error: Invalid variable name.").
		End()

	NewSheetTestCase(t, "Column letter without row").
		Set("B1", "=A").
		AssertErr("B1", ErrInvalidVariable).
		End()

	NewSheetTestCase(t, "Row out of range").
		Set("B1", "=A51").
		AssertErr("B1", ErrInvalidCell).
		AssertValue("B1", "Error: Invalid cell, cell out of range.").
		End()

	NewSheetTestCase(t, "Row zero").
		Set("B1", "=A0").
		AssertErr("B1", ErrInvalidCell).
		End()

	NewSheetTestCase(t, "Lower case column").
		Set("B1", "=a1").
		AssertErr("B1", ErrInvalidCell).
		End()

	NewSheetTestCase(t, "Self reference").
		Set("A1", "=A1").
		AssertErr("A1", ErrSameReferenceCell).
		AssertValue("A1", "Error: Referenced cell is the same as current cell.").
		End()

	NewSheetTestCase(t, "Fixing an error").
		Set("A1", "=[").
		Set("A1", "=2*3").
		AssertValue("A1", "6").
		End()
}

func TestCircularReferences(t *testing.T) {
	NewSheetTestCase(t, "Four cell loop").
		Set("A1", "=B1").
		Set("B1", "=B2").
		Set("B2", "=A2").
		Set("A2", "=A1").
		AssertErr("A2", ErrCircularReference).
		AssertValue("A2", "Error: Circular Reference detected.").
		AssertValue("A1", "0").
		AssertValue("B1", "0").
		AssertValue("B2", "0").
		End()

	NewSheetTestCase(t, "Two cell loop").
		Set("A1", "=B1").
		Set("B1", "=A1").
		AssertErr("B1", ErrCircularReference).
		AssertValue("A1", "0").
		End()

	// a literal keeps the edges its old formula registered, so the loop is
	// still reported from the other side
	NewSheetTestCase(t, "Literal does not drop old edges").
		Set("A1", "=B1").
		Set("B1", "=A1").
		Set("B1", "3").
		AssertValue("B1", "3").
		AssertErr("A1", ErrCircularReference).
		End()
}

func TestUndoRedo(t *testing.T) {
	NewSheetTestCase(t, "Undo and redo text").
		AssertHistory(false, false).
		Set("A1", "5").
		Set("A1", "7").
		AssertHistory(true, false).
		Undo().
		AssertValue("A1", "5").
		AssertHistory(true, true).
		Undo().
		AssertNoValue("A1").
		AssertText("A1", "").
		AssertHistory(false, true).
		Redo().
		AssertValue("A1", "5").
		Redo().
		AssertValue("A1", "7").
		AssertHistory(true, false).
		End()

	NewSheetTestCase(t, "Undo restores formulas and cascades").
		Set("B1", "100").
		Set("A1", "=B1").
		Set("B1", "5").
		AssertValue("A1", "5").
		Undo().
		AssertValue("B1", "100").
		AssertValue("A1", "100").
		Undo().
		AssertNoValue("A1").
		Redo().
		AssertText("A1", "=B1").
		AssertValue("A1", "100").
		End()

	NewSheetTestCase(t, "Editing after undo clears redo").
		Set("A1", "1").
		Set("A1", "2").
		Undo().
		AssertHistory(true, true).
		Set("A1", "3").
		AssertHistory(true, false).
		Redo().
		AssertValue("A1", "3").
		End()

	NewSheetTestCase(t, "Unchanged edit is not recorded").
		Set("A1", "1").
		Set("A1", "1").
		Undo().
		AssertHistory(false, true).
		AssertNoValue("A1").
		End()

	NewSheetTestCase(t, "Undo on empty history").
		Undo().
		Redo().
		AssertHistory(false, false).
		End()

	NewSheetTestCase(t, "Undo and redo colors").
		Paint(0xFFFF0000, "A1", "B2").
		AssertColor("A1", 0xFFFF0000).
		AssertColor("B2", 0xFFFF0000).
		Paint(0xFF00FF00, "A1").
		Undo().
		AssertColor("A1", 0xFFFF0000).
		Undo().
		AssertColor("A1", DefaultBackgroundColor).
		AssertColor("B2", DefaultBackgroundColor).
		Redo().
		AssertColor("A1", 0xFFFF0000).
		AssertColor("B2", 0xFFFF0000).
		Redo().
		AssertColor("A1", 0xFF00FF00).
		AssertColor("B2", 0xFFFF0000).
		End()

	NewSheetTestCase(t, "Text and color history interleave").
		Set("A1", "1").
		Paint(0xFF0000FF, "A1").
		Set("A1", "2").
		Undo().
		AssertValue("A1", "1").
		AssertColor("A1", 0xFF0000FF).
		Undo().
		AssertValue("A1", "1").
		AssertColor("A1", DefaultBackgroundColor).
		End()
}

func TestNewSheetErrors(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		columns int
	}{
		{"zero rows", 0, 5},
		{"negative columns", 5, -1},
		{"too many columns", 5, MaxColumns + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows, tt.columns)
			var appErr *AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("New(%d, %d) error = %v, want AppError", tt.rows, tt.columns, err)
			}
			if appErr.Code != InvalidArgument {
				t.Errorf("New(%d, %d) code = %v, want %v", tt.rows, tt.columns, appErr.Code, InvalidArgument)
			}
		})
	}
}

func TestGetCell(t *testing.T) {
	sheet, err := New(3, 4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if sheet.RowCount() != 3 || sheet.ColumnCount() != 4 {
		t.Errorf("size = %dx%d, want 3x4", sheet.RowCount(), sheet.ColumnCount())
	}

	cell, err := sheet.GetCell(2, 3)
	if err != nil {
		t.Fatalf("GetCell(2, 3) failed: %v", err)
	}
	if cell.Name() != "D3" || cell.Row() != 2 || cell.Column() != 3 {
		t.Errorf("GetCell(2, 3) = %s (%d, %d), want D3 (2, 3)", cell.Name(), cell.Row(), cell.Column())
	}

	outside := []struct{ row, column int }{
		{-1, 0}, {0, -1}, {3, 0}, {0, 4},
	}
	for _, pos := range outside {
		_, err := sheet.GetCell(pos.row, pos.column)
		if !errors.Is(err, ErrInvalidCell) {
			t.Errorf("GetCell(%d, %d) error = %v, want ErrInvalidCell", pos.row, pos.column, err)
		}
		var appErr *AppError
		if !errors.As(err, &appErr) || appErr.Code != OutOfRange {
			t.Errorf("GetCell(%d, %d) error = %v, want OutOfRange AppError", pos.row, pos.column, err)
		}
	}

	if _, err := sheet.CellByName("nope"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("CellByName(nope) error = %v, want ErrInvalidAddress", err)
	}

	if got := len(sheet.Cells()); got != 12 {
		t.Errorf("len(Cells()) = %d, want 12", got)
	}
}

func TestSheetObservers(t *testing.T) {
	sheet, err := New(5, 5)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var events []string
	unsubscribe := sheet.Subscribe(func(cell *Cell, property Property) {
		events = append(events, cell.Name()+":"+property.String())
	})

	a1, _ := sheet.CellByName("A1")
	b1, _ := sheet.CellByName("B1")

	a1.SetText("1")
	b1.SetText("=A1*2")
	a1.SetText("2")
	a1.SetBackgroundColor(0xFF123456)

	want := []string{"A1:Value", "B1:Value", "A1:Value", "B1:Value", "A1:Color"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, events[i], want[i])
		}
	}

	unsubscribe()
	a1.SetText("3")
	if len(events) != len(want) {
		t.Errorf("observer called after unsubscribe: %v", events)
	}
	if value, _ := b1.Value(); value != "6" {
		t.Errorf("B1 = %s, want 6", value)
	}
}

func TestResetAndRecalculate(t *testing.T) {
	tc := NewSheetTestCase(t, "Reset").
		Set("A1", "1").
		Set("B1", "=A1+1").
		Paint(0xFF000000, "C3")

	tc.sheet.Reset()
	tc.AssertNoValue("A1").
		AssertNoValue("B1").
		AssertColor("C3", DefaultBackgroundColor).
		AssertHistory(false, false).
		End()

	if cells := tc.sheet.NonEmptyCells(); len(cells) != 0 {
		t.Errorf("NonEmptyCells() after Reset = %d cells, want 0", len(cells))
	}

	tc = NewSheetTestCase(t, "Reset forgets dependency edges").
		Set("A1", "=B1")
	tc.sheet.Reset()
	tc.Set("B1", "=A1").
		AssertValue("B1", "0").
		Set("A1", "4").
		AssertValue("B1", "4").
		End()

	tc = NewSheetTestCase(t, "Recalculate is stable").
		Set("A1", "2").
		Set("A2", "=A1*A1")
	tc.sheet.Recalculate()
	tc.AssertValue("A2", "4").End()
}

func TestCellErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrSameReferenceCell, "Error: Referenced cell is the same as current cell."},
		{ErrNoVariableValue, "Error: Referenced cell does not have a defined value."},
		{ErrInvalidFormula, "Error: Invalid Formula."},
		{ErrInvalidVariable, "Error: Invalid variable name."},
		{NewApplicationError(OutOfRange, "outside", ErrInvalidCell), "Error: Invalid cell, cell out of range."},
		{ErrCircularReference, "Error: Circular Reference detected."},
		{errors.New("boom"), UnknownErrorMessage},
	}

	for _, tt := range tests {
		if got := CellErrorMessage(tt.err); got != tt.want {
			t.Errorf("CellErrorMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
