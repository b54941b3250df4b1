package profile

import (
	"context"
	"maps"
)

// Profile is a user's remembered bucketing decisions: experiment id to
// variation id. Replaying a stored decision keeps a user's experience stable
// even when live bucketing would now differ (allocation changes, audience
// edits).
type Profile struct {
	UserID    string
	Decisions map[string]string
}

// NewProfile creates an empty profile for a user.
func NewProfile(userID string) Profile {
	return Profile{UserID: userID, Decisions: make(map[string]string)}
}

// Variation returns the stored variation id for an experiment, if any.
func (p Profile) Variation(experimentID string) (string, bool) {
	v, ok := p.Decisions[experimentID]
	return v, ok
}

// With returns a copy of the profile with one decision added or replaced.
func (p Profile) With(experimentID, variationID string) Profile {
	out := Profile{UserID: p.UserID, Decisions: make(map[string]string, len(p.Decisions)+1)}
	maps.Copy(out.Decisions, p.Decisions)
	out.Decisions[experimentID] = variationID
	return out
}

// Store persists sticky-bucketing profiles. Implementations must be safe
// for concurrent use. Store failures are advisory for the engine: a failed
// Lookup falls back to live bucketing, a failed Save just means the decision
// is not remembered for next time.
type Store interface {
	// Lookup returns the stored profile for a user. An unknown user returns
	// an empty profile and no error.
	Lookup(ctx context.Context, userID string) (Profile, error)

	// Save upserts the profile's decisions. Decisions absent from the given
	// profile are left untouched.
	Save(ctx context.Context, p Profile) error
}
