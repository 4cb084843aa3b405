package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vogtb/gridcalc/packages/persist"
	"github.com/vogtb/gridcalc/packages/render"
	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

const (
	extXML  = ".xml"
	extXLSX = ".xlsx"
	extHTML = ".html"
)

func fileFormat(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// loadFile replaces the contents of s with an xml document or xlsx
// workbook. it returns the cells whose workbook formulas were kept as text.
func loadFile(path string, s *spreadsheet.Sheet, opts ...persist.Option) ([]string, error) {
	switch fileFormat(path) {
	case extXML:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return nil, persist.LoadXML(f, s, opts...)

	case extXLSX:
		report, err := persist.ImportXLSX(path, s, opts...)
		if err != nil {
			return nil, err
		}
		return report.Unsupported, nil

	default:
		return nil, fmt.Errorf("cannot load %s: use %s or %s", path, extXML, extXLSX)
	}
}

// saveFile writes s as an xml document, xlsx workbook or html page
func saveFile(path string, s *spreadsheet.Sheet, opts ...persist.Option) error {
	switch fileFormat(path) {
	case extXML:
		return writeFile(path, func(f *os.File) error {
			return persist.SaveXML(f, s)
		})

	case extXLSX:
		return persist.ExportXLSX(s, path, opts...)

	case extHTML:
		renderer, err := render.NewHTMLRenderer()
		if err != nil {
			return err
		}
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return writeFile(path, func(f *os.File) error {
			return renderer.Render(f, title, s)
		})

	default:
		return fmt.Errorf("cannot save %s: use %s, %s or %s", path, extXML, extXLSX, extHTML)
	}
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
