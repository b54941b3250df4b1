package config

import "errors"

// Predefined errors for the config package.
var (
	// ErrNilPointer indicates Load was called with a nil target.
	ErrNilPointer = errors.New("config target must be a non-nil pointer")
	// ErrParsingConfig indicates environment variables did not satisfy the
	// target struct's tags (missing required values, unparsable types).
	ErrParsingConfig = errors.New("failed to parse configuration from environment")
)
