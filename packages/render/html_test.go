package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

func TestRender(t *testing.T) {
	s, err := spreadsheet.New(3, 2)
	if err != nil {
		t.Fatalf("spreadsheet.New failed: %v", err)
	}
	r := spreadsheet.NewRunner(s, func(string) {}).
		Set("A1", "5").
		Set("B1", "=A1+7").
		Set("A2", "<b>bold</b>").
		Paint(0xFFFF0000, "B1")
	if err := r.Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	renderer, err := NewHTMLRenderer()
	if err != nil {
		t.Fatalf("NewHTMLRenderer failed: %v", err)
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, "Budget", s); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>Budget</title>",
		"<th>A</th>",
		"<th>B</th>",
		"<th>3</th>",
		">12</td>",
		"background-color",
		"&lt;b&gt;bold&lt;/b&gt;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<b>bold</b>") {
		t.Errorf("Render did not escape cell text:\n%s", out)
	}
}

func TestNewSheetViewModel(t *testing.T) {
	s, err := spreadsheet.New(2, 3)
	if err != nil {
		t.Fatalf("spreadsheet.New failed: %v", err)
	}
	cell, _ := s.CellByName("C2")
	cell.SetText("x")

	vm := NewSheetViewModel("t", s)
	if len(vm.Columns) != 3 || vm.Columns[2] != "C" {
		t.Errorf("Columns = %v, want [A B C]", vm.Columns)
	}
	if len(vm.Rows) != 2 || vm.Rows[1].Number != 2 || len(vm.Rows[1].Cells) != 3 {
		t.Fatalf("Rows = %+v, want 2 rows of 3 cells", vm.Rows)
	}
	if got := vm.Rows[1].Cells[2]; got.Name != "C2" || got.Value != "x" {
		t.Errorf("C2 view = %+v, want C2 x", got)
	}
}
