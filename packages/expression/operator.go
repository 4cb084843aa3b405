package expression

import (
	"fmt"
	"sort"
	"unicode"
)

// Associativity describes how operators of equal precedence group
type Associativity uint8

const (
	LeftAssociative Associativity = iota
	RightAssociative
)

func (a Associativity) String() string {
	if a == RightAssociative {
		return "Right"
	}
	return "Left"
}

// unknownPrecedence is reported for every symbol that is not registered,
// including the opening parenthesis while it sits on the operator stack.
const unknownPrecedence = -1

// Operator describes a binary infix operator. Apply receives the already
// evaluated left and right operands.
type Operator struct {
	Symbol        rune
	Precedence    int
	Associativity Associativity
	Apply         func(left, right float64) float64
}

// Registry maps operator symbols to their definitions. Both the postfix
// converter and the tree builder consult it, so new operators are added by
// registering them here and nowhere else.
type Registry struct {
	operators map[rune]Operator
}

// NewRegistry creates an empty operator registry
func NewRegistry() *Registry {
	return &Registry{
		operators: make(map[rune]Operator),
	}
}

// DefaultRegistry creates a registry holding the four arithmetic operators
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, op := range arithmeticOperators() {
		if err := r.Register(op); err != nil {
			// the built-in table is static, a failure here is a programming error
			panic(err)
		}
	}
	return r
}

func arithmeticOperators() []Operator {
	return []Operator{
		{
			Symbol:     '+',
			Precedence: 1,
			Apply:      func(left, right float64) float64 { return left + right },
		},
		{
			Symbol:     '-',
			Precedence: 1,
			Apply:      func(left, right float64) float64 { return left - right },
		},
		{
			Symbol:     '*',
			Precedence: 2,
			Apply:      func(left, right float64) float64 { return left * right },
		},
		{
			// IEEE-754 semantics: x/0 is +Inf, -Inf or NaN, never an error
			Symbol:     '/',
			Precedence: 2,
			Apply:      func(left, right float64) float64 { return left / right },
		},
	}
}

// Register adds an operator to the registry. parentheses, whitespace and the
// runes that make up operands cannot be used as operator symbols.
func (r *Registry) Register(op Operator) error {
	if op.Apply == nil {
		return fmt.Errorf("%w: %q has no evaluator", ErrInvalidOperator, op.Symbol)
	}
	if isOperandRune(op.Symbol) || unicode.IsSpace(op.Symbol) ||
		op.Symbol == charLParen || op.Symbol == charRParen {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidOperator, op.Symbol)
	}
	if op.Precedence < 0 {
		return fmt.Errorf("%w: %q needs a non-negative precedence", ErrInvalidOperator, op.Symbol)
	}
	if _, exists := r.operators[op.Symbol]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateOperator, op.Symbol)
	}
	r.operators[op.Symbol] = op
	return nil
}

// Lookup returns the operator registered for a symbol
func (r *Registry) Lookup(symbol rune) (Operator, bool) {
	op, exists := r.operators[symbol]
	return op, exists
}

// Precedence returns the precedence of a registered symbol, or -1 for
// anything else
func (r *Registry) Precedence(symbol rune) int {
	if op, exists := r.operators[symbol]; exists {
		return op.Precedence
	}
	return unknownPrecedence
}

// Symbols returns the registered symbols in ascending rune order
func (r *Registry) Symbols() []rune {
	result := make([]rune, 0, len(r.operators))
	for symbol := range r.operators {
		result = append(result, symbol)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// NewOperatorNode constructs a childless operator node for a postfix
// token. tokens that are not exactly one registered symbol are rejected.
func (r *Registry) NewOperatorNode(token string) (*OperatorNode, error) {
	runes := []rune(token)
	if len(runes) != 1 {
		return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFormula, token)
	}
	op, exists := r.operators[runes[0]]
	if !exists {
		return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFormula, token)
	}
	return &OperatorNode{Operator: op}, nil
}
