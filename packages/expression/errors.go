package expression

import "errors"

var (
	// ErrInvalidFormula is returned when operators and operands cannot be
	// arranged into a tree: an operator without two operands, an unknown
	// operator symbol, a stray closing parenthesis or dangling operands.
	ErrInvalidFormula = errors.New("invalid formula")

	// ErrDuplicateOperator is returned when registering a symbol twice
	ErrDuplicateOperator = errors.New("operator already registered")

	// ErrInvalidOperator is returned for operators that cannot be
	// registered (reserved symbol or missing evaluator)
	ErrInvalidOperator = errors.New("invalid operator definition")
)
