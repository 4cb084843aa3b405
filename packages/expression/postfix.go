package expression

import (
	"fmt"
	"strings"
	"unicode"
)

// character classification constants. slightly easier to read.
const (
	charLParen = '('
	charRParen = ')'
	charPeriod = '.'
)

// defaultRegistry backs the package level helpers
var defaultRegistry = DefaultRegistry()

// isOperandRune reports whether a rune belongs to a numeric literal or a
// variable name. letters, digits and periods accumulate into one token, so
// a single token may mix them (A1, 3.25, hello).
func isOperandRune(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == charPeriod
}

// ConvertToPostfix converts an infix expression to postfix tokens using the
// default operator registry
func ConvertToPostfix(expression string) ([]string, error) {
	return defaultRegistry.ConvertToPostfix(expression)
}

// ConvertToPostfix runs the shunting-yard algorithm over an infix
// expression. empty input, or input made only of opening parentheses,
// produces an empty token list.
func (r *Registry) ConvertToPostfix(expression string) ([]string, error) {
	output := []string{}
	var stack []rune
	var operand strings.Builder

	flush := func() {
		if operand.Len() > 0 {
			output = append(output, operand.String())
			operand.Reset()
		}
	}

	for _, ch := range expression {
		switch {
		case isOperandRune(ch):
			operand.WriteRune(ch)

		case unicode.IsSpace(ch):
			flush()

		case ch == charLParen:
			flush()
			stack = append(stack, ch)

		case ch == charRParen:
			flush()
			for {
				if len(stack) == 0 {
					return nil, fmt.Errorf("%w: unbalanced %q in %q", ErrInvalidFormula, ch, expression)
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top == charLParen {
					break
				}
				output = append(output, string(top))
			}

		default:
			flush()
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top == charLParen || !r.yieldsTo(top, ch) {
					break
				}
				output = append(output, string(top))
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, ch)
		}
	}

	flush()

	// unmatched opening parentheses are dropped
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top != charLParen {
			output = append(output, string(top))
		}
	}

	return output, nil
}

// yieldsTo reports whether the stacked operator must be emitted before the
// incoming one is pushed. equal precedence pops for left associative
// operators, which covers all of the built-in ones.
func (r *Registry) yieldsTo(stacked, incoming rune) bool {
	stackedPrecedence := r.Precedence(stacked)
	incomingPrecedence := r.Precedence(incoming)
	if stackedPrecedence != incomingPrecedence {
		return stackedPrecedence > incomingPrecedence
	}
	op, exists := r.Lookup(incoming)
	return !exists || op.Associativity == LeftAssociative
}
