package spreadsheet

import "sort"

// DefaultBackgroundColor is opaque white in ARGB
const DefaultBackgroundColor uint32 = 0xFFFFFFFF

// Property names the cell attribute a notification is about
type Property uint8

const (
	PropertyText  Property = 1 // raw user text changed
	PropertyValue Property = 2 // computed display value changed
	PropertyColor Property = 3 // background color changed
)

func (p Property) String() string {
	switch p {
	case PropertyText:
		return "Text"
	case PropertyValue:
		return "Value"
	case PropertyColor:
		return "Color"
	default:
		return "Unknown"
	}
}

// Observer receives change notifications. delivery is synchronous and in
// subscription order.
type Observer func(cell *Cell, property Property)

type observerEntry struct {
	id       int
	observer Observer
}

// observerList is an ordered list of observers that can be removed by id
type observerList struct {
	entries []observerEntry
	nextID  int
}

func (l *observerList) add(observer Observer) func() {
	id := l.nextID
	l.nextID++
	l.entries = append(l.entries, observerEntry{id: id, observer: observer})

	return func() {
		for i, entry := range l.entries {
			if entry.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

func (l *observerList) notify(cell *Cell, property Property) {
	// observers may unsubscribe while being notified
	entries := make([]observerEntry, len(l.entries))
	copy(entries, l.entries)
	for _, entry := range entries {
		entry.observer(cell, property)
	}
}

// Cell is a single grid position. text is what the user typed, value is
// what the sheet computed from it. both may be absent.
type Cell struct {
	address CellAddress

	text     string
	hasText  bool
	value    string
	hasValue bool

	backgroundColor uint32

	// formula is the text after the leading '=' of the last formula the
	// sheet evaluated for this cell
	formula    string
	hasFormula bool

	// cells whose formulas read this cell
	dependents map[CellAddress]*Cell

	observers observerList
}

func newCell(row, column int) *Cell {
	return &Cell{
		address:         CellAddress{Row: row, Column: column},
		backgroundColor: DefaultBackgroundColor,
		dependents:      make(map[CellAddress]*Cell),
	}
}

// Row returns the zero-based row index
func (c *Cell) Row() int {
	return c.address.Row
}

// Column returns the zero-based column index
func (c *Cell) Column() int {
	return c.address.Column
}

// Address returns the cell position
func (c *Cell) Address() CellAddress {
	return c.address
}

// Name returns the cell name, e.g. A1
func (c *Cell) Name() string {
	return c.address.String()
}

// Text returns the raw text and whether any is set
func (c *Cell) Text() (string, bool) {
	return c.text, c.hasText
}

// SetText stores new raw text and notifies observers. setting the current
// text again is a no-op, and the empty string clears the text.
func (c *Cell) SetText(text string) {
	if text == "" {
		c.ClearText()
		return
	}
	if c.hasText && c.text == text {
		return
	}
	c.text = text
	c.hasText = true
	c.observers.notify(c, PropertyText)
}

// ClearText removes the raw text
func (c *Cell) ClearText() {
	if !c.hasText {
		return
	}
	c.text = ""
	c.hasText = false
	c.observers.notify(c, PropertyText)
}

// Value returns the last computed display value and whether one is set
func (c *Cell) Value() (string, bool) {
	return c.value, c.hasValue
}

// setValue is reserved for the sheet that owns recalculation
func (c *Cell) setValue(value string) {
	if c.hasValue && c.value == value {
		return
	}
	c.value = value
	c.hasValue = true
	c.observers.notify(c, PropertyValue)
}

func (c *Cell) clearValue() {
	if !c.hasValue {
		return
	}
	c.value = ""
	c.hasValue = false
	c.observers.notify(c, PropertyValue)
}

// BackgroundColor returns the ARGB background color
func (c *Cell) BackgroundColor() uint32 {
	return c.backgroundColor
}

// SetBackgroundColor stores a new ARGB color and notifies observers unless
// it is unchanged
func (c *Cell) SetBackgroundColor(color uint32) {
	if c.backgroundColor == color {
		return
	}
	c.backgroundColor = color
	c.observers.notify(c, PropertyColor)
}

// Subscribe registers an observer for text, value and color changes of
// this cell. the returned function removes it again.
func (c *Cell) Subscribe(observer Observer) func() {
	return c.observers.add(observer)
}

// IsEmpty reports whether the cell has no text and the default color
func (c *Cell) IsEmpty() bool {
	return !c.hasText && c.backgroundColor == DefaultBackgroundColor
}

// Dependents returns the cells reading this cell, ordered by row and then
// column
func (c *Cell) Dependents() []*Cell {
	result := make([]*Cell, 0, len(c.dependents))
	for _, dependent := range c.dependents {
		result = append(result, dependent)
	}
	sortCells(result)
	return result
}

// HasDependent reports whether the given cell reads this cell
func (c *Cell) HasDependent(other *Cell) bool {
	_, exists := c.dependents[other.address]
	return exists
}

func (c *Cell) addDependent(dependent *Cell) {
	c.dependents[dependent.address] = dependent
}

func (c *Cell) forgetFormula() {
	c.formula = ""
	c.hasFormula = false
}

// clearDependents drops every dependent edge and returns the cells that
// were dropped
func (c *Cell) clearDependents() []*Cell {
	released := c.Dependents()
	c.dependents = make(map[CellAddress]*Cell)
	return released
}

// checkCircular walks dependent edges depth first and fails when origin is
// reachable. there is no visited set: a path that returns to origin never
// needs more hops than there are cells, so remaining bounds the walk
// without changing the answer.
func (c *Cell) checkCircular(origin *Cell, remaining int) error {
	if remaining <= 0 {
		return nil
	}
	for _, dependent := range c.dependents {
		if dependent == origin {
			return ErrCircularReference
		}
		if err := dependent.checkCircular(origin, remaining-1); err != nil {
			return err
		}
	}
	return nil
}

func sortCells(cells []*Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].address.Row != cells[j].address.Row {
			return cells[i].address.Row < cells[j].address.Row
		}
		return cells[i].address.Column < cells[j].address.Column
	})
}
