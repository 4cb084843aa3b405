package spreadsheet

import (
	"fmt"
)

// Command is a reversible edit. the set of commands is closed:
// *SetTextCommand and *SetColorCommand.
type Command interface {
	// Execute applies the command payload to live cells
	Execute(s *Sheet) error
	// Describe names the kind of edit, e.g. for "Undo text change" menus
	Describe() string

	isCommand()
}

// SetTextCommand restores the raw text of one cell
type SetTextCommand struct {
	target CellAddress
	text   string
}

// NewSetTextCommand creates a command that sets the text of target. an
// empty text clears the cell.
func NewSetTextCommand(target CellAddress, text string) *SetTextCommand {
	return &SetTextCommand{target: target, text: text}
}

// Target returns the cell the command writes to
func (c *SetTextCommand) Target() CellAddress {
	return c.target
}

// Text returns the text the command writes
func (c *SetTextCommand) Text() string {
	return c.text
}

func (c *SetTextCommand) Execute(s *Sheet) error {
	cell, err := s.Cell(c.target)
	if err != nil {
		return err
	}
	cell.SetText(c.text)
	return nil
}

func (c *SetTextCommand) Describe() string {
	return "text change"
}

func (*SetTextCommand) isCommand() {}

// SetColorCommand restores the background colors of several cells. the
// color at index i belongs to the target at index i.
type SetColorCommand struct {
	targets []CellAddress
	colors  []uint32
}

// NewSetColorCommand creates a color command. targets and colors must have
// the same length; both are copied.
func NewSetColorCommand(targets []CellAddress, colors []uint32) (*SetColorCommand, error) {
	if len(targets) != len(colors) {
		return nil, fmt.Errorf("%w: %d targets, %d colors", ErrMismatchedColors, len(targets), len(colors))
	}
	c := &SetColorCommand{
		targets: make([]CellAddress, len(targets)),
		colors:  make([]uint32, len(colors)),
	}
	copy(c.targets, targets)
	copy(c.colors, colors)
	return c, nil
}

// Targets returns a copy of the target addresses
func (c *SetColorCommand) Targets() []CellAddress {
	result := make([]CellAddress, len(c.targets))
	copy(result, c.targets)
	return result
}

// Colors returns a copy of the colors, index aligned with Targets
func (c *SetColorCommand) Colors() []uint32 {
	result := make([]uint32, len(c.colors))
	copy(result, c.colors)
	return result
}

func (c *SetColorCommand) Execute(s *Sheet) error {
	// resolve everything first so a bad address leaves no partial edit
	cells := make([]*Cell, len(c.targets))
	for i, target := range c.targets {
		cell, err := s.Cell(target)
		if err != nil {
			return err
		}
		cells[i] = cell
	}
	for i, cell := range cells {
		cell.SetBackgroundColor(c.colors[i])
	}
	return nil
}

func (c *SetColorCommand) Describe() string {
	return "color change"
}

func (*SetColorCommand) isCommand() {}

// snapshot captures the current state of every cell a command touches as a
// command that restores it
func (s *Sheet) snapshot(cmd Command) (Command, error) {
	switch c := cmd.(type) {
	case *SetTextCommand:
		cell, err := s.Cell(c.target)
		if err != nil {
			return nil, err
		}
		text, _ := cell.Text()
		return NewSetTextCommand(c.target, text), nil

	case *SetColorCommand:
		colors := make([]uint32, len(c.targets))
		for i, target := range c.targets {
			cell, err := s.Cell(target)
			if err != nil {
				return nil, err
			}
			colors[i] = cell.BackgroundColor()
		}
		return NewSetColorCommand(c.targets, colors)

	default:
		return nil, NewApplicationError(Internal, fmt.Sprintf("unknown command %T", cmd), nil)
	}
}

// AddUndo pushes a command onto the undo stack. the redo stack is left
// alone.
func (s *Sheet) AddUndo(cmd Command) {
	s.undoStack = append(s.undoStack, cmd)
}

// AddRedo pushes a command onto the redo stack
func (s *Sheet) AddRedo(cmd Command) {
	s.redoStack = append(s.redoStack, cmd)
}

// Undo pops the most recent command, records the current state of its
// cells on the redo stack and executes it. an empty stack is a no-op.
func (s *Sheet) Undo() error {
	cmd, ok := popCommand(&s.undoStack)
	if !ok {
		return nil
	}
	inverse, err := s.snapshot(cmd)
	if err != nil {
		return err
	}
	s.AddRedo(inverse)

	s.logger.Debug().Str("command", cmd.Describe()).Msg("undo")
	return cmd.Execute(s)
}

// Redo mirrors Undo, moving the current state onto the undo stack
func (s *Sheet) Redo() error {
	cmd, ok := popCommand(&s.redoStack)
	if !ok {
		return nil
	}
	inverse, err := s.snapshot(cmd)
	if err != nil {
		return err
	}
	s.AddUndo(inverse)

	s.logger.Debug().Str("command", cmd.Describe()).Msg("redo")
	return cmd.Execute(s)
}

// PeekUndo returns the command the next Undo would execute
func (s *Sheet) PeekUndo() (Command, bool) {
	return peekCommand(s.undoStack)
}

// PeekRedo returns the command the next Redo would execute
func (s *Sheet) PeekRedo() (Command, bool) {
	return peekCommand(s.redoStack)
}

// CanUndo reports whether the undo stack has commands
func (s *Sheet) CanUndo() bool {
	return len(s.undoStack) > 0
}

// CanRedo reports whether the redo stack has commands
func (s *Sheet) CanRedo() bool {
	return len(s.redoStack) > 0
}

// ClearHistory empties both stacks
func (s *Sheet) ClearHistory() {
	s.undoStack = nil
	s.redoStack = nil
}

// Edit sets the text of a cell as a user action: the previous text is
// recorded for undo and the redo stack is cleared. setting the current
// text again records nothing.
func (s *Sheet) Edit(addr CellAddress, text string) error {
	cell, err := s.Cell(addr)
	if err != nil {
		return err
	}
	before, _ := cell.Text()
	if before == text {
		return nil
	}
	s.AddUndo(NewSetTextCommand(addr, before))
	s.redoStack = nil
	cell.SetText(text)
	return nil
}

// Paint sets the background color of several cells as one user action
func (s *Sheet) Paint(targets []CellAddress, color uint32) error {
	before := make([]uint32, len(targets))
	cells := make([]*Cell, len(targets))
	for i, target := range targets {
		cell, err := s.Cell(target)
		if err != nil {
			return err
		}
		cells[i] = cell
		before[i] = cell.BackgroundColor()
	}

	cmd, err := NewSetColorCommand(targets, before)
	if err != nil {
		return err
	}
	s.AddUndo(cmd)
	s.redoStack = nil

	for _, cell := range cells {
		cell.SetBackgroundColor(color)
	}
	return nil
}

func popCommand(stack *[]Command) (Command, bool) {
	if len(*stack) == 0 {
		return nil, false
	}
	cmd := (*stack)[len(*stack)-1]
	(*stack)[len(*stack)-1] = nil
	*stack = (*stack)[:len(*stack)-1]
	return cmd, true
}

func peekCommand(stack []Command) (Command, bool) {
	if len(stack) == 0 {
		return nil, false
	}
	return stack[len(stack)-1], true
}
