package client

import "errors"

// Predefined errors for the client package.
var (
	// ErrNoConfig indicates a decide call before any configuration snapshot
	// was loaded.
	ErrNoConfig = errors.New("no configuration loaded")
	// ErrInvalidConfig indicates the supplied configuration failed
	// validation; the previous snapshot stays active.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrEmptyUserID indicates a decide call without a user id.
	ErrEmptyUserID = errors.New("empty user id")
)
