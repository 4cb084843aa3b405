// Package render writes read-only snapshots of a sheet.
package render

import (
	"embed"
	"io"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

//go:embed templates/*
var templateFS embed.FS

// SheetViewModel is the data the sheet template renders
type SheetViewModel struct {
	Title   string
	Columns []string
	Rows    []RowViewModel
}

// RowViewModel is one table row, numbered from 1
type RowViewModel struct {
	Number int
	Cells  []CellViewModel
}

// CellViewModel holds the display value and background style of a cell
type CellViewModel struct {
	Name  string
	Value string
	Style safehtml.Style
}

// HTMLRenderer renders sheets as an HTML table
type HTMLRenderer struct {
	sheetTemplate *template.Template
}

// NewHTMLRenderer parses the embedded sheet template
func NewHTMLRenderer() (*HTMLRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	sheetTemplate, err := template.New("sheet.html").ParseFS(trustedFS, "templates/sheet.html")
	if err != nil {
		return nil, err
	}

	return &HTMLRenderer{
		sheetTemplate: sheetTemplate,
	}, nil
}

// Render writes the whole grid of s
func (r *HTMLRenderer) Render(w io.Writer, title string, s *spreadsheet.Sheet) error {
	return r.sheetTemplate.Execute(w, NewSheetViewModel(title, s))
}

// NewSheetViewModel builds the view model for every cell of s
func NewSheetViewModel(title string, s *spreadsheet.Sheet) SheetViewModel {
	vm := SheetViewModel{
		Title:   title,
		Columns: make([]string, s.ColumnCount()),
		Rows:    make([]RowViewModel, s.RowCount()),
	}
	for col := range vm.Columns {
		vm.Columns[col] = string(rune('A' + col))
	}

	for _, cell := range s.Cells() {
		row := &vm.Rows[cell.Row()]
		row.Number = cell.Row() + 1

		value, _ := cell.Value()
		row.Cells = append(row.Cells, CellViewModel{
			Name:  cell.Name(),
			Value: value,
			Style: backgroundStyle(cell.BackgroundColor()),
		})
	}
	return vm
}

func backgroundStyle(color uint32) safehtml.Style {
	if color == spreadsheet.DefaultBackgroundColor {
		return safehtml.StyleFromProperties(safehtml.StyleProperties{})
	}
	return safehtml.StyleFromProperties(safehtml.StyleProperties{
		BackgroundColor: "#" + spreadsheet.RGB(color),
	})
}
