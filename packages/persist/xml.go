package persist

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

type xmlDocument struct {
	XMLName xml.Name  `xml:"spreadsheet"`
	Cells   []xmlCell `xml:"cell"`
}

type xmlCell struct {
	Name  string `xml:"name"`
	Text  string `xml:"text"`
	Color string `xml:"color"`
}

// record is a validated cell entry ready to be applied
type record struct {
	cell  *spreadsheet.Cell
	text  string
	color uint32
}

// SaveXML writes every cell with text or a non-default color
func SaveXML(w io.Writer, s *spreadsheet.Sheet) error {
	doc := xmlDocument{}
	for _, cell := range s.NonEmptyCells() {
		text, _ := cell.Text()
		doc.Cells = append(doc.Cells, xmlCell{
			Name:  cell.Name(),
			Text:  text,
			Color: spreadsheet.FormatColor(cell.BackgroundColor()),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode sheet: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to encode sheet: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// LoadXML replaces the contents of s with a saved document. every cell is
// reset and the undo history is dropped, then each record is applied text
// first and the whole sheet is recalculated once more so formulas that
// reference later cells settle.
func LoadXML(r io.Reader, s *spreadsheet.Sheet, opts ...Option) error {
	o := newOptions(opts)

	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode sheet: %w", err)
	}

	records := make([]record, 0, len(doc.Cells))
	for _, entry := range doc.Cells {
		rec, err := parseRecord(s, entry)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	s.Reset()
	for _, rec := range records {
		rec.cell.SetText(rec.text)
		rec.cell.SetBackgroundColor(rec.color)
	}
	s.Recalculate()

	o.logger.Debug().Int("cells", len(records)).Msg("loaded xml sheet")
	return nil
}

func parseRecord(s *spreadsheet.Sheet, entry xmlCell) (record, error) {
	cell, err := s.CellByName(entry.Name)
	if err != nil {
		return record{}, fmt.Errorf("%w %q: %w", ErrInvalidRecord, entry.Name, err)
	}

	color := spreadsheet.DefaultBackgroundColor
	if entry.Color != "" {
		color, err = spreadsheet.ParseColor(entry.Color)
		if err != nil {
			return record{}, fmt.Errorf("%w %q: %w", ErrInvalidRecord, entry.Name, err)
		}
	}

	return record{cell: cell, text: entry.Text, color: color}, nil
}
