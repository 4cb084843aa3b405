package spreadsheet

import (
	"errors"

	"github.com/vogtb/gridcalc/packages/expression"
)

// AppErrorCode represents gRPC-style error codes for application-level errors.
// note that we are skipping error codes that don't make sense for our use-case,
// like unauthenticated, or permission denied.
type AppErrorCode int

const (
	// InvalidArgument indicates client specified an invalid argument.
	InvalidArgument AppErrorCode = 3

	// OutOfRange means operation was attempted past the valid range.
	OutOfRange AppErrorCode = 11

	// Internal errors. Means some invariants expected by underlying
	// system has been broken.
	Internal AppErrorCode = 13
)

// AppError represents errors at the application level (not
// errors rendered into cells)
type AppError struct {
	Code    AppErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewApplicationError creates a new application error. err may be nil.
func NewApplicationError(code AppErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// recalculation failures. all of them are caught at the cell boundary and
// rendered into the cell value.
var (
	ErrSameReferenceCell = errors.New("referenced cell is the same as current cell")
	ErrCircularReference = errors.New("circular reference detected")
	ErrInvalidVariable   = errors.New("invalid variable name")
	ErrInvalidCell       = errors.New("invalid cell, cell out of range")
	ErrInvalidFormula    = expression.ErrInvalidFormula

	// ErrNoVariableValue is part of the taxonomy, but recalculation binds 0
	// for referenced cells without a value instead of raising it.
	ErrNoVariableValue = errors.New("referenced cell does not have a defined value")
)

var (
	ErrInvalidAddress   = errors.New("invalid cell address")
	ErrMismatchedColors = errors.New("targets and colors differ in length")
)

// UnknownErrorMessage is shown for failures outside the taxonomy
const UnknownErrorMessage = "Error: Unknown."

// cellErrorMessages maps recalculation failures to the text stored in the
// cell, checked in order
var cellErrorMessages = []struct {
	err     error
	message string
}{
	{ErrSameReferenceCell, "Error: Referenced cell is the same as current cell."},
	{ErrNoVariableValue, "Error: Referenced cell does not have a defined value."},
	{ErrInvalidFormula, "Error: Invalid Formula."},
	{ErrInvalidVariable, "Error: Invalid variable name."},
	{ErrInvalidCell, "Error: Invalid cell, cell out of range."},
	{ErrCircularReference, "Error: Circular Reference detected."},
}

// CellErrorMessage returns the human readable text for a recalculation
// failure
func CellErrorMessage(err error) string {
	for _, entry := range cellErrorMessages {
		if errors.Is(err, entry.err) {
			return entry.message
		}
	}
	return UnknownErrorMessage
}

// haltsCascade reports whether dependents of a failed cell are left alone.
// re-evaluating them would only walk the same reference loop again.
func haltsCascade(err error) bool {
	return errors.Is(err, ErrSameReferenceCell) || errors.Is(err, ErrCircularReference)
}
