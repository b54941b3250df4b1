package profile

import "errors"

// Predefined errors for the profile package.
var (
	// ErrLookupFailed wraps backend read failures. Callers should fall back
	// to live bucketing.
	ErrLookupFailed = errors.New("profile lookup failed")

	// ErrSaveFailed wraps backend write failures. Callers should treat the
	// decision as simply not remembered.
	ErrSaveFailed = errors.New("profile save failed")

	// ErrEmptyUserID indicates a profile operation without a user id.
	ErrEmptyUserID = errors.New("empty user id")
)
