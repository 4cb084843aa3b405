package expression

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Node is a closed set of expression tree nodes: *ConstantNode,
// *VariableNode and *OperatorNode
type Node interface {
	isNode()
}

// ConstantNode holds a numeric literal
type ConstantNode struct {
	Value float64
}

// VariableNode reads its value from the variable bank of the tree that
// built it
type VariableNode struct {
	Name string
	bank *VariableBank
}

// OperatorNode applies a binary operator to its two children
type OperatorNode struct {
	Operator Operator
	Left     Node
	Right    Node
}

func (*ConstantNode) isNode() {}
func (*VariableNode) isNode() {}
func (*OperatorNode) isNode() {}

// VariableBank maps variable names to values and remembers the order in
// which names were first seen
type VariableBank struct {
	values map[string]float64
	order  []string
}

func newVariableBank() *VariableBank {
	return &VariableBank{
		values: make(map[string]float64),
	}
}

// declare registers a name at 0 unless it already exists
func (b *VariableBank) declare(name string) {
	if _, exists := b.values[name]; exists {
		return
	}
	b.values[name] = 0
	b.order = append(b.order, name)
}

func (b *VariableBank) set(name string, value float64) {
	if _, exists := b.values[name]; !exists {
		b.order = append(b.order, name)
	}
	b.values[name] = value
}

// lookup of an unknown name yields 0
func (b *VariableBank) get(name string) float64 {
	return b.values[name]
}

// ExpressionTree is a compiled arithmetic expression together with the
// variable bank it is evaluated against
type ExpressionTree struct {
	expression string
	postfix    []string
	root       Node
	variables  *VariableBank
	registry   *Registry
}

// New compiles an expression with the default operator registry
func New(expression string) (*ExpressionTree, error) {
	return NewWithRegistry(expression, defaultRegistry)
}

// NewWithRegistry compiles an expression with a custom operator registry
func NewWithRegistry(expression string, registry *Registry) (*ExpressionTree, error) {
	postfix, err := registry.ConvertToPostfix(expression)
	if err != nil {
		return nil, err
	}

	tree := &ExpressionTree{
		expression: expression,
		postfix:    postfix,
		variables:  newVariableBank(),
		registry:   registry,
	}

	root, err := tree.build(postfix)
	if err != nil {
		return nil, err
	}
	tree.root = root

	return tree, nil
}

// build turns postfix tokens into a tree with a single pass over an
// explicit node stack
func (t *ExpressionTree) build(postfix []string) (Node, error) {
	var stack []Node

	for _, token := range postfix {
		first := []rune(token)[0]

		if isOperandRune(first) {
			stack = append(stack, t.operand(token, first))
			continue
		}

		if len(stack) < 2 {
			return nil, fmt.Errorf("%w: operator %q needs two operands", ErrInvalidFormula, token)
		}

		node, err := t.registry.NewOperatorNode(token)
		if err != nil {
			return nil, err
		}

		// right operand sits on top
		node.Right = stack[len(stack)-1]
		node.Left = stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		stack = append(stack, node)
	}

	switch len(stack) {
	case 0:
		return nil, nil
	case 1:
		return stack[0], nil
	default:
		return nil, fmt.Errorf("%w: %d operands are missing an operator", ErrInvalidFormula, len(stack)-1)
	}
}

// operand builds a constant for numeric literals and a variable otherwise.
// tokens starting with a letter are always variables, so names such as Inf
// or NaN are never mistaken for numbers.
func (t *ExpressionTree) operand(token string, first rune) Node {
	if !unicode.IsLetter(first) {
		if value, err := strconv.ParseFloat(token, 64); err == nil {
			return &ConstantNode{Value: value}
		}
	}

	t.variables.declare(token)
	return &VariableNode{Name: token, bank: t.variables}
}

// Evaluate computes the value of the expression. an empty expression
// evaluates to 0.
func (t *ExpressionTree) Evaluate() float64 {
	if t.root == nil {
		return 0
	}
	return evaluate(t.root)
}

func evaluate(node Node) float64 {
	switch n := node.(type) {
	case *ConstantNode:
		return n.Value
	case *VariableNode:
		return n.bank.get(n.Name)
	case *OperatorNode:
		return n.Operator.Apply(evaluate(n.Left), evaluate(n.Right))
	default:
		panic(fmt.Sprintf("expression: unexpected node %T", node))
	}
}

// SetVariable binds a value to a variable name. it does not re-evaluate the
// tree; call Evaluate afterwards.
func (t *ExpressionTree) SetVariable(name string, value float64) {
	t.variables.set(name, value)
}

// Variable returns the value currently bound to a name
func (t *ExpressionTree) Variable(name string) (float64, bool) {
	value, exists := t.variables.values[name]
	return value, exists
}

// Variables returns variable names in the order they were first seen
func (t *ExpressionTree) Variables() []string {
	result := make([]string, len(t.variables.order))
	copy(result, t.variables.order)
	return result
}

// Expression returns the source text the tree was compiled from
func (t *ExpressionTree) Expression() string {
	return t.expression
}

// Postfix returns the postfix tokens the tree was built from
func (t *ExpressionTree) Postfix() []string {
	result := make([]string, len(t.postfix))
	copy(result, t.postfix)
	return result
}

// Root returns the root node, nil for an empty expression
func (t *ExpressionTree) Root() Node {
	return t.root
}

// String renders the tree as a fully parenthesised infix expression
func (t *ExpressionTree) String() string {
	if t.root == nil {
		return ""
	}
	var sb strings.Builder
	writeNode(&sb, t.root)
	return sb.String()
}

func writeNode(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case *ConstantNode:
		sb.WriteString(strconv.FormatFloat(n.Value, 'f', -1, 64))
	case *VariableNode:
		sb.WriteString(n.Name)
	case *OperatorNode:
		sb.WriteRune(charLParen)
		writeNode(sb, n.Left)
		sb.WriteRune(' ')
		sb.WriteRune(n.Operator.Symbol)
		sb.WriteRune(' ')
		writeNode(sb, n.Right)
		sb.WriteRune(charRParen)
	}
}
