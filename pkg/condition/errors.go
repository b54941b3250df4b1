package condition

import "errors"

// Predefined errors for the condition package.
var (
	// ErrInvalidCondition indicates the condition JSON does not conform to
	// the nested-array grammar.
	ErrInvalidCondition = errors.New("invalid condition document")

	// ErrUnknownOperator indicates a combinator outside and/or/not.
	ErrUnknownOperator = errors.New("unknown condition operator")

	// ErrUnknownMatchKind indicates a leaf match type outside the closed set.
	ErrUnknownMatchKind = errors.New("unknown condition match type")
)
