package decision

import "maps"

// UserContext identifies the user a decision is made for. The zero value is
// not usable; ID must be set.
type UserContext struct {
	// ID is the stable user identifier.
	ID string
	// BucketingID, when set, replaces ID as the hash input so hosts can
	// bucket by device, account, or session instead of user.
	BucketingID string
	// Attributes are the typed values audience conditions read. JSON-decoded
	// attribute maps (string/float64/bool) work as-is.
	Attributes map[string]any
}

// EffectiveBucketingID returns the id used for hashing: the explicit
// bucketing id when supplied, the user id otherwise.
func (u UserContext) EffectiveBucketingID() string {
	if u.BucketingID != "" {
		return u.BucketingID
	}
	return u.ID
}

// Clone returns a copy with a detached attribute map, for handing the
// context to observers without aliasing caller state.
func (u UserContext) Clone() UserContext {
	out := u
	out.Attributes = maps.Clone(u.Attributes)
	return out
}
