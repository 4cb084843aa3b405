package spreadsheet

import (
	"fmt"
	"strings"
)

// Runner provides a chainable interface for sheet edits. it wraps a Sheet
// and tracks the first error; every later call is a no-op until Reset.
type Runner struct {
	sheet   *Sheet
	err     error
	printLn func(string)
}

// NewRunner creates a runner over sheet. printLn is required and is used
// by Log and CheckError.
func NewRunner(sheet *Sheet, printLn func(string)) *Runner {
	return &Runner{
		sheet:   sheet,
		err:     nil,
		printLn: printLn,
	}
}

// Set edits the text of a cell by name, recording undo history (chainable)
func (r *Runner) Set(name, text string) *Runner {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	addr, err := ParseAddress(name)
	if err != nil {
		r.err = NewApplicationError(InvalidArgument, err.Error(), err)
		return r
	}
	r.err = r.sheet.Edit(addr, text)
	return r
}

// Clear removes the text of a cell by name (chainable)
func (r *Runner) Clear(name string) *Runner {
	return r.Set(name, "")
}

// Paint colors the named cells as one undoable edit (chainable)
func (r *Runner) Paint(color uint32, names ...string) *Runner {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	targets := make([]CellAddress, 0, len(names))
	for _, name := range names {
		addr, err := ParseAddress(name)
		if err != nil {
			r.err = NewApplicationError(InvalidArgument, err.Error(), err)
			return r
		}
		targets = append(targets, addr)
	}
	r.err = r.sheet.Paint(targets, color)
	return r
}

// Undo reverts the most recent edit (chainable)
func (r *Runner) Undo() *Runner {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	r.err = r.sheet.Undo()
	return r
}

// Redo reapplies the most recently undone edit (chainable)
func (r *Runner) Redo() *Runner {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	r.err = r.sheet.Redo()
	return r
}

// Value returns the display value of a cell; absent values are "" (chainable)
func (r *Runner) Value(name string) (*Runner, string) {
	if r.err != nil {
		return r, ""
	}
	cell, err := r.sheet.CellByName(name)
	if err != nil {
		r.err = err
		return r, ""
	}
	value, _ := cell.Value()
	return r, value
}

// Log prints the display values of the named cells (chainable)
func (r *Runner) Log(names ...string) *Runner {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		cell, err := r.sheet.CellByName(name)
		if err != nil {
			r.err = err
			return r
		}
		value, _ := cell.Value()
		parts = append(parts, fmt.Sprintf("%s=%s", cell.Name(), value))
	}
	r.printLn(strings.Join(parts, " "))
	return r
}

// CheckError logs the current error using printLn (chainable)
func (r *Runner) CheckError() *Runner {
	if r.err != nil {
		r.printLn(fmt.Sprintf("ERROR: %v", r.err))
	} else {
		r.printLn("No errors")
	}
	return r
}

// Then allows conditional execution based on current error state
func (r *Runner) Then(fn func(*Runner) *Runner) *Runner {
	if r.err != nil {
		return r // skip if there's an error
	}
	return fn(r)
}

// OnError allows error handling in the chain
func (r *Runner) OnError(fn func(error) error) *Runner {
	if r.err != nil {
		r.err = fn(r.err)
	}
	return r
}

// Must panics if there's an error (chainable)
func (r *Runner) Must() *Runner {
	if r.err != nil {
		panic(r.err)
	}
	return r
}

// Err returns the current error state
func (r *Runner) Err() error {
	return r.err
}

// Reset clears the error state (chainable)
func (r *Runner) Reset() *Runner {
	r.err = nil
	return r
}

// Sheet returns the underlying sheet. edits made on it directly bypass
// error tracking.
func (r *Runner) Sheet() *Sheet {
	return r.sheet
}
