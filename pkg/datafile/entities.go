package datafile

import (
	"github.com/flaglab/flagkit/pkg/bucketer"
	"github.com/flaglab/flagkit/pkg/condition"
)

// Status is an experiment lifecycle state. Only running experiments bucket
// traffic; forced variations bypass the check.
type Status string

const (
	StatusRunning    Status = "Running"
	StatusPaused     Status = "Paused"
	StatusNotStarted Status = "Not started"
	StatusArchived   Status = "Archived"
)

// VariableType declares how a feature variable's string value is interpreted.
type VariableType string

const (
	VariableString  VariableType = "string"
	VariableInteger VariableType = "integer"
	VariableDouble  VariableType = "double"
	VariableBoolean VariableType = "boolean"
	VariableJSON    VariableType = "json"
)

// Variation is one arm of an experiment.
type Variation struct {
	ID  string `json:"id"`
	Key string `json:"key"`
	// FeatureEnabled marks whether landing in this variation turns the
	// owning feature on (feature tests only).
	FeatureEnabled bool `json:"featureEnabled,omitempty"`
	// Variables overrides declared feature variable values, keyed by
	// variable key. Values are stored as strings and typed by the feature's
	// declaration.
	Variables map[string]string `json:"variables,omitempty"`
}

// Experiment is an A/B test or a rollout rule: both split traffic over
// variations behind an optional audience gate.
type Experiment struct {
	ID                string           `json:"id"`
	Key               string           `json:"key"`
	Status            Status           `json:"status"`
	GroupID           string           `json:"groupId,omitempty"`
	AudienceIDs       []string         `json:"audienceIds,omitempty"`
	Variations        []Variation      `json:"variations"`
	TrafficAllocation []bucketer.Range `json:"trafficAllocation"`
	// Whitelist maps user ids to variation keys pinned in the datafile.
	Whitelist map[string]string `json:"forcedVariations,omitempty"`
}

// Running reports whether the experiment buckets live traffic.
func (e *Experiment) Running() bool { return e.Status == StatusRunning }

// VariationByID returns the variation with the given id, or nil.
// Variation lists are small; a linear scan beats carrying per-experiment maps.
func (e *Experiment) VariationByID(id string) *Variation {
	for i := range e.Variations {
		if e.Variations[i].ID == id {
			return &e.Variations[i]
		}
	}
	return nil
}

// VariationByKey returns the variation with the given key, or nil.
func (e *Experiment) VariationByKey(key string) *Variation {
	for i := range e.Variations {
		if e.Variations[i].Key == key {
			return &e.Variations[i]
		}
	}
	return nil
}

// Group is a mutual-exclusion set: its own traffic allocation over member
// experiment ids guarantees a user lands in at most one member.
type Group struct {
	ID                string           `json:"id"`
	Policy            string           `json:"policy,omitempty"`
	TrafficAllocation []bucketer.Range `json:"trafficAllocation"`
}

// Audience names a reusable condition tree experiments reference by id.
type Audience struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	Conditions *condition.Tree `json:"conditions,omitempty"`
}

// Variable declares a feature variable with its typed default.
type Variable struct {
	ID           string       `json:"id"`
	Key          string       `json:"key"`
	Type         VariableType `json:"type"`
	DefaultValue string       `json:"defaultValue"`
}

// Feature is a flag: an ordered list of feature-test experiments, an
// optional rollout, and declared variables.
type Feature struct {
	ID            string     `json:"id"`
	Key           string     `json:"key"`
	ExperimentIDs []string   `json:"experimentIds,omitempty"`
	RolloutID     string     `json:"rolloutId,omitempty"`
	Variables     []Variable `json:"variables,omitempty"`
}

// VariableByKey returns the declared variable with the given key, or nil.
func (f *Feature) VariableByKey(key string) *Variable {
	for i := range f.Variables {
		if f.Variables[i].Key == key {
			return &f.Variables[i]
		}
	}
	return nil
}

// Rollout is an ordered list of rules progressively exposing a feature.
// Rules are plain experiments; an "everyone else" rule with no audience is
// conventionally last.
type Rollout struct {
	ID    string       `json:"id"`
	Rules []Experiment `json:"experiments"`
}

// Datafile is the parsed configuration snapshot a host hands to NewIndex.
// Acquisition and schema validation happen upstream; this package only
// checks referential integrity.
type Datafile struct {
	Version     string       `json:"version"`
	Revision    string       `json:"revision"`
	Experiments []Experiment `json:"experiments"`
	Features    []Feature    `json:"featureFlags"`
	Rollouts    []Rollout    `json:"rollouts"`
	Groups      []Group      `json:"groups"`
	Audiences   []Audience   `json:"audiences"`
}
