package datafile

import "errors"

// Predefined errors for the datafile package.
var (
	// ErrInvalidDatafile indicates the snapshot failed referential-integrity
	// validation and must not be published to the engine.
	ErrInvalidDatafile = errors.New("invalid datafile snapshot")

	// ErrExperimentNotFound indicates an unknown experiment key or id.
	ErrExperimentNotFound = errors.New("experiment not found")

	// ErrFeatureNotFound indicates an unknown feature key.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrAudienceNotFound indicates an unknown audience id.
	ErrAudienceNotFound = errors.New("audience not found")

	// ErrGroupNotFound indicates an unknown group id.
	ErrGroupNotFound = errors.New("group not found")

	// ErrRolloutNotFound indicates an unknown rollout id.
	ErrRolloutNotFound = errors.New("rollout not found")

	// ErrVariableNotFound indicates an unknown feature variable key.
	ErrVariableNotFound = errors.New("feature variable not found")
)
