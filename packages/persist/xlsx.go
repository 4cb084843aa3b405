package persist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/efp"
	"github.com/xuri/excelize/v2"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

// ImportReport describes what ImportXLSX did with a workbook
type ImportReport struct {
	// Cells is the number of cells that received text or a color
	Cells int
	// Unsupported names the cells whose formulas were kept as plain text
	Unsupported []string
}

// ExportXLSX writes the text and background color of every non-empty cell
// to a new workbook at path. formulas are written as workbook formulas,
// numeric text as numbers and everything else as strings.
func ExportXLSX(s *spreadsheet.Sheet, path string, opts ...Option) error {
	o := newOptions(opts)

	f := excelize.NewFile()
	defer f.Close()

	if defaultName := f.GetSheetName(0); defaultName != o.sheetName {
		if err := f.SetSheetName(defaultName, o.sheetName); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", o.sheetName, err)
		}
	}

	// one fill style per distinct color
	styles := make(map[uint32]int)

	for _, cell := range s.NonEmptyCells() {
		name := cell.Name()

		if text, ok := cell.Text(); ok {
			if err := writeCell(f, o.sheetName, name, text); err != nil {
				return err
			}
		}

		color := cell.BackgroundColor()
		if color == spreadsheet.DefaultBackgroundColor {
			continue
		}
		styleID, exists := styles[color]
		if !exists {
			var err error
			styleID, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{
					Type:    "pattern",
					Pattern: 1,
					Color:   []string{spreadsheet.RGB(color)},
				},
			})
			if err != nil {
				return fmt.Errorf("failed to create fill %s: %w", spreadsheet.FormatColor(color), err)
			}
			styles[color] = styleID
		}
		if err := f.SetCellStyle(o.sheetName, name, name, styleID); err != nil {
			return fmt.Errorf("failed to style %s: %w", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	o.logger.Debug().
		Str("path", path).
		Str("sheet", o.sheetName).
		Int("fills", len(styles)).
		Msg("exported xlsx workbook")
	return nil
}

func writeCell(f *excelize.File, sheetName, name, text string) error {
	var err error
	switch {
	case strings.HasPrefix(text, "="):
		err = f.SetCellFormula(sheetName, name, strings.TrimPrefix(text, "="))
	default:
		if number, parseErr := strconv.ParseFloat(text, 64); parseErr == nil && isPlainNumber(text) {
			err = f.SetCellValue(sheetName, name, number)
		} else {
			err = f.SetCellStr(sheetName, name, text)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// isPlainNumber rejects text ParseFloat accepts but a workbook would not
// render back the same, such as "Inf", "1e3" or "0x10"
func isPlainNumber(text string) bool {
	for _, ch := range text {
		if (ch < '0' || ch > '9') && ch != '.' && ch != '-' {
			return false
		}
	}
	return true
}

// ImportXLSX replaces the contents of s with a worksheet of the workbook at
// path. cells outside the grid of s are ignored. formulas are vetted first
// and the ones s cannot evaluate are imported as their text without the
// leading '='.
func ImportXLSX(path string, s *spreadsheet.Sheet, opts ...Option) (*ImportReport, error) {
	o := newOptions(opts)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if index, err := f.GetSheetIndex(o.sheetName); err != nil || index < 0 {
		return nil, fmt.Errorf("%w: workbook %s has no sheet %q", ErrInvalidRecord, path, o.sheetName)
	}

	s.Reset()
	report := &ImportReport{}

	for _, cell := range s.Cells() {
		name := cell.Name()

		text, err := readCell(f, o.sheetName, name)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(text, "=") {
			if err := VetFormula(strings.TrimPrefix(text, "=")); err != nil {
				o.logger.Warn().Str("cell", name).Err(err).Msg("formula imported as text")
				report.Unsupported = append(report.Unsupported, name)
				text = strings.TrimPrefix(text, "=")
			}
		}

		color, err := readFill(f, o.sheetName, name)
		if err != nil {
			return nil, err
		}

		if text == "" && color == spreadsheet.DefaultBackgroundColor {
			continue
		}
		cell.SetText(text)
		cell.SetBackgroundColor(color)
		report.Cells++
	}
	s.Recalculate()

	o.logger.Debug().
		Str("path", path).
		Str("sheet", o.sheetName).
		Int("cells", report.Cells).
		Int("unsupported", len(report.Unsupported)).
		Msg("imported xlsx workbook")
	return report, nil
}

func readCell(f *excelize.File, sheetName, name string) (string, error) {
	formula, err := f.GetCellFormula(sheetName, name)
	if err != nil {
		return "", fmt.Errorf("failed to read formula of %s: %w", name, err)
	}
	if formula != "" {
		return "=" + formula, nil
	}

	value, err := f.GetCellValue(sheetName, name, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return value, nil
}

func readFill(f *excelize.File, sheetName, name string) (uint32, error) {
	styleID, err := f.GetCellStyle(sheetName, name)
	if err != nil {
		return 0, fmt.Errorf("failed to read style of %s: %w", name, err)
	}
	if styleID == 0 {
		return spreadsheet.DefaultBackgroundColor, nil
	}

	style, err := f.GetStyle(styleID)
	if err != nil {
		return 0, fmt.Errorf("failed to read style of %s: %w", name, err)
	}
	if style.Fill.Type != "pattern" || style.Fill.Pattern != 1 || len(style.Fill.Color) == 0 {
		return spreadsheet.DefaultBackgroundColor, nil
	}

	color, err := spreadsheet.ParseColor(style.Fill.Color[0])
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidRecord, name, err)
	}
	return color, nil
}

// VetFormula checks that a workbook formula, without its leading '=', only
// uses what a sheet can evaluate: numbers, single cell references such as
// B3, parentheses and the binary operators + - * /
func VetFormula(formula string) error {
	parser := efp.ExcelParser()
	for _, token := range parser.Parse(formula) {
		switch token.TType {
		case efp.TokenTypeWhitespace, efp.TokenTypeSubexpression:
			continue

		case efp.TokenTypeOperatorInfix:
			switch token.TValue {
			case "+", "-", "*", "/":
				continue
			}

		case efp.TokenTypeOperand:
			switch token.TSubType {
			case efp.TokenSubTypeNumber:
				continue
			case efp.TokenSubTypeRange:
				if _, err := spreadsheet.ParseAddress(token.TValue); err == nil {
					continue
				}
			}
		}
		return fmt.Errorf("%w: %q in %q", ErrUnsupportedFormula, token.TValue, formula)
	}
	return nil
}
