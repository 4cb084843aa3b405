// Package persist saves and loads sheets as XML documents and xlsx
// workbooks.
package persist

import (
	"errors"

	"github.com/rs/zerolog"
)

var (
	// ErrInvalidRecord is returned when a saved cell cannot be applied to the
	// sheet. nothing is loaded when any record is invalid.
	ErrInvalidRecord = errors.New("invalid cell record")

	// ErrUnsupportedFormula marks workbook formulas that use more than
	// cell references, numbers, parentheses and + - * /
	ErrUnsupportedFormula = errors.New("unsupported formula")
)

// DefaultSheetName is the worksheet written to and read from when no name
// is given
const DefaultSheetName = "Sheet1"

type options struct {
	logger    zerolog.Logger
	sheetName string
}

// Option configures a save or load
type Option func(*options)

// WithLogger sets the logger for skipped records and unsupported formulas
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSheetName selects the worksheet of an xlsx workbook
func WithSheetName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.sheetName = name
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:    zerolog.Nop(),
		sheetName: DefaultSheetName,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
