package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vogtb/gridcalc/packages/expression"
	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

const defaultExpression = "A1+B1+C1"

const (
	menuEnterExpression = "1"
	menuSetVariable     = "2"
	menuEvaluate        = "3"
	menuShow            = "4"
	menuQuit            = "5"
)

// Menu is the interactive expression calculator. it keeps one compiled
// expression whose variables can be set and evaluated repeatedly.
type Menu struct {
	in   *bufio.Scanner
	out  io.Writer
	tree *expression.ExpressionTree
}

// NewMenu creates a menu reading from in. an empty expression starts with
// A1+B1+C1.
func NewMenu(in io.Reader, out io.Writer, initial string) (*Menu, error) {
	if initial == "" {
		initial = defaultExpression
	}
	tree, err := expression.New(initial)
	if err != nil {
		return nil, err
	}
	return &Menu{
		in:   bufio.NewScanner(in),
		out:  out,
		tree: tree,
	}, nil
}

// Run shows the menu until quit is chosen or input ends
func (m *Menu) Run() error {
	for {
		fmt.Fprintf(m.out, "Menu (current expression=(%s))\n", m.tree.Expression())
		fmt.Fprintln(m.out, "1 = enter new expression")
		fmt.Fprintln(m.out, "2 = set a variable value")
		fmt.Fprintln(m.out, "3 = evaluate tree")
		fmt.Fprintln(m.out, "4 = show postfix and tree")
		fmt.Fprintln(m.out, "5 = quit")

		option, ok := m.readLine("")
		if !ok {
			return m.in.Err()
		}

		switch option {
		case menuEnterExpression:
			m.enterExpression()
		case menuSetVariable:
			m.setVariable()
		case menuEvaluate:
			fmt.Fprintln(m.out, spreadsheet.FormatNumber(m.tree.Evaluate()))
		case menuShow:
			fmt.Fprintf(m.out, "postfix: %s\n", strings.Join(m.tree.Postfix(), " "))
			fmt.Fprintf(m.out, "tree:    %s\n", m.tree.String())
		case menuQuit:
			return nil
		case "":
		default:
			fmt.Fprintf(m.out, "unknown option %q\n", option)
		}
	}
}

func (m *Menu) enterExpression() {
	text, ok := m.readLine("Enter expression: ")
	if !ok {
		return
	}
	tree, err := expression.New(text)
	if err != nil {
		fmt.Fprintf(m.out, "error: %v\n", err)
		return
	}
	m.tree = tree
}

func (m *Menu) setVariable() {
	name, ok := m.readLine("Enter variable name: ")
	if !ok {
		return
	}
	raw, ok := m.readLine("Enter variable value: ")
	if !ok {
		return
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Fprintf(m.out, "error: %q is not a number\n", raw)
		return
	}
	m.tree.SetVariable(name, value)
}

func (m *Menu) readLine(prompt string) (string, bool) {
	if prompt != "" {
		fmt.Fprint(m.out, prompt)
	}
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}
