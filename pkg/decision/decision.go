package decision

import "github.com/flaglab/flagkit/pkg/datafile"

// Source records which mechanism produced a decision. The precedence order
// across sources is contractual: analytics pipelines rely on it staying
// stable across engine versions.
type Source string

const (
	// SourceForced means a runtime forced-variation override won.
	SourceForced Source = "forced"
	// SourceWhitelist means the datafile pinned this user to a variation.
	SourceWhitelist Source = "whitelist"
	// SourceSticky means a stored profile decision was replayed.
	SourceSticky Source = "sticky"
	// SourceBucketing means live hashing over the experiment's allocation.
	SourceBucketing Source = "bucketing"
	// SourceRollout means a rollout rule produced the variation.
	SourceRollout Source = "rollout"
	// SourceDefault means no mechanism produced a variation: the user is
	// not bucketed, or the feature is off with default variable values.
	SourceDefault Source = "default"
)

// Decision is the result of resolving an experiment or feature for a user.
type Decision struct {
	// Key is the experiment or feature key the caller asked about.
	Key string
	// ExperimentKey names the experiment or rollout rule that resolved the
	// decision; empty when nothing matched.
	ExperimentKey string
	// Variation is the winning variation, or nil when the user is not
	// bucketed.
	Variation *datafile.Variation
	// Source tells which mechanism decided.
	Source Source
	// Enabled is the feature on/off state (feature decisions only).
	Enabled bool
	// Reasons is an audit trail of the resolution steps, including why an
	// audience evaluation was inconclusive rather than a hard mismatch.
	Reasons []string
}

// Bucketed reports whether the decision carries a variation.
func (d Decision) Bucketed() bool { return d.Variation != nil }

// VariationKey returns the winning variation key, or "".
func (d Decision) VariationKey() string {
	if d.Variation == nil {
		return ""
	}
	return d.Variation.Key
}
