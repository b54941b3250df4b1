package decision

import "errors"

// Predefined errors for the decision package. Unknown-key lookups surface
// the datafile package's sentinels unchanged.
var (
	// ErrInvalidVariableValue indicates a feature variable's stored value
	// does not parse as its declared type.
	ErrInvalidVariableValue = errors.New("invalid feature variable value")
)
