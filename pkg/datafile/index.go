package datafile

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/flaglab/flagkit/pkg/bucketer"
)

// Index is an immutable, queryable view over one configuration snapshot.
// Construction validates referential integrity and fails fast; a published
// Index is never mutated, so it is safe to share across goroutines by
// reference. A configuration update builds a brand-new Index.
type Index struct {
	version  string
	revision string

	experimentsByKey map[string]*Experiment
	experimentsByID  map[string]*Experiment
	featuresByKey    map[string]*Feature
	audiencesByID    map[string]*Audience
	groupsByID       map[string]*Group
	rolloutsByID     map[string]*Rollout

	featureKeys []string // declaration order, for DecideAll-style iteration
}

// NewIndex copies the snapshot, builds O(1) lookup maps, and validates that
// every cross-reference resolves. On validation failure it returns
// ErrInvalidDatafile joined with detail, and the caller must keep serving
// its previous snapshot.
func NewIndex(df *Datafile) (*Index, error) {
	if df == nil {
		return nil, errors.Join(ErrInvalidDatafile, errors.New("nil datafile"))
	}

	idx := &Index{
		version:          df.Version,
		revision:         df.Revision,
		experimentsByKey: make(map[string]*Experiment, len(df.Experiments)),
		experimentsByID:  make(map[string]*Experiment, len(df.Experiments)),
		featuresByKey:    make(map[string]*Feature, len(df.Features)),
		audiencesByID:    make(map[string]*Audience, len(df.Audiences)),
		groupsByID:       make(map[string]*Group, len(df.Groups)),
		rolloutsByID:     make(map[string]*Rollout, len(df.Rollouts)),
	}

	for i := range df.Audiences {
		a := cloneAudience(&df.Audiences[i])
		if a.ID == "" {
			return nil, fail("audience with empty id")
		}
		if _, dup := idx.audiencesByID[a.ID]; dup {
			return nil, fail("duplicate audience id %q", a.ID)
		}
		idx.audiencesByID[a.ID] = a
	}

	for i := range df.Groups {
		g := cloneGroup(&df.Groups[i])
		if g.ID == "" {
			return nil, fail("group with empty id")
		}
		if _, dup := idx.groupsByID[g.ID]; dup {
			return nil, fail("duplicate group id %q", g.ID)
		}
		idx.groupsByID[g.ID] = g
	}

	for i := range df.Experiments {
		e := cloneExperiment(&df.Experiments[i])
		if e.ID == "" || e.Key == "" {
			return nil, fail("experiment with empty id or key")
		}
		if _, dup := idx.experimentsByID[e.ID]; dup {
			return nil, fail("duplicate experiment id %q", e.ID)
		}
		if _, dup := idx.experimentsByKey[e.Key]; dup {
			return nil, fail("duplicate experiment key %q", e.Key)
		}
		if err := idx.validateExperiment(e); err != nil {
			return nil, err
		}
		idx.experimentsByID[e.ID] = e
		idx.experimentsByKey[e.Key] = e
	}

	// Group allocations distribute traffic over member experiments; every
	// referenced experiment must exist and declare the group back.
	for _, g := range idx.groupsByID {
		if err := validateRanges(g.TrafficAllocation, fmt.Sprintf("group %q", g.ID)); err != nil {
			return nil, err
		}
		for _, r := range g.TrafficAllocation {
			if r.EntityID == "" {
				continue
			}
			member, ok := idx.experimentsByID[r.EntityID]
			if !ok {
				return nil, fail("group %q allocates unknown experiment id %q", g.ID, r.EntityID)
			}
			if member.GroupID != g.ID {
				return nil, fail("group %q allocates experiment %q which belongs to group %q",
					g.ID, member.Key, member.GroupID)
			}
		}
	}

	for i := range df.Rollouts {
		r := cloneRollout(&df.Rollouts[i])
		if r.ID == "" {
			return nil, fail("rollout with empty id")
		}
		if _, dup := idx.rolloutsByID[r.ID]; dup {
			return nil, fail("duplicate rollout id %q", r.ID)
		}
		for j := range r.Rules {
			if err := idx.validateExperiment(&r.Rules[j]); err != nil {
				return nil, err
			}
		}
		idx.rolloutsByID[r.ID] = r
	}

	for i := range df.Features {
		f := cloneFeature(&df.Features[i])
		if f.Key == "" {
			return nil, fail("feature with empty key")
		}
		if _, dup := idx.featuresByKey[f.Key]; dup {
			return nil, fail("duplicate feature key %q", f.Key)
		}
		for _, expID := range f.ExperimentIDs {
			if _, ok := idx.experimentsByID[expID]; !ok {
				return nil, fail("feature %q references unknown experiment id %q", f.Key, expID)
			}
		}
		if f.RolloutID != "" {
			if _, ok := idx.rolloutsByID[f.RolloutID]; !ok {
				return nil, fail("feature %q references unknown rollout id %q", f.Key, f.RolloutID)
			}
		}
		idx.featuresByKey[f.Key] = f
		idx.featureKeys = append(idx.featureKeys, f.Key)
	}

	return idx, nil
}

func (idx *Index) validateExperiment(e *Experiment) error {
	where := fmt.Sprintf("experiment %q", e.Key)

	if err := validateRanges(e.TrafficAllocation, where); err != nil {
		return err
	}
	for _, r := range e.TrafficAllocation {
		if r.EntityID == "" {
			continue
		}
		if e.VariationByID(r.EntityID) == nil {
			return fail("%s allocates unknown variation id %q", where, r.EntityID)
		}
	}
	for _, audienceID := range e.AudienceIDs {
		if _, ok := idx.audiencesByID[audienceID]; !ok {
			return fail("%s references unknown audience id %q", where, audienceID)
		}
	}
	if e.GroupID != "" {
		if _, ok := idx.groupsByID[e.GroupID]; !ok {
			return fail("%s references unknown group id %q", where, e.GroupID)
		}
	}
	for user, variationKey := range e.Whitelist {
		if e.VariationByKey(variationKey) == nil {
			return fail("%s whitelists user %q into unknown variation %q", where, user, variationKey)
		}
	}
	return nil
}

// validateRanges checks that cumulative range ends strictly increase and
// never exceed the bucket space, which also guarantees disjointness.
func validateRanges(ranges []bucketer.Range, where string) error {
	prev := 0
	for _, r := range ranges {
		if r.EndOfRange <= prev {
			return fail("%s has non-increasing traffic allocation at %d", where, r.EndOfRange)
		}
		if r.EndOfRange > bucketer.BucketSpace {
			return fail("%s allocates past the bucket space: %d", where, r.EndOfRange)
		}
		prev = r.EndOfRange
	}
	return nil
}

func fail(format string, args ...any) error {
	return errors.Join(ErrInvalidDatafile, fmt.Errorf(format, args...))
}

// Version returns the datafile format version.
func (idx *Index) Version() string { return idx.version }

// Revision returns the snapshot revision, useful for logging which config
// produced a decision.
func (idx *Index) Revision() string { return idx.revision }

// Experiment looks up an experiment by key.
func (idx *Index) Experiment(key string) (*Experiment, error) {
	e, ok := idx.experimentsByKey[key]
	if !ok {
		return nil, ErrExperimentNotFound
	}
	return e, nil
}

// ExperimentByID looks up an experiment by id.
func (idx *Index) ExperimentByID(id string) (*Experiment, error) {
	e, ok := idx.experimentsByID[id]
	if !ok {
		return nil, ErrExperimentNotFound
	}
	return e, nil
}

// Feature looks up a feature by key.
func (idx *Index) Feature(key string) (*Feature, error) {
	f, ok := idx.featuresByKey[key]
	if !ok {
		return nil, ErrFeatureNotFound
	}
	return f, nil
}

// Audience looks up an audience by id.
func (idx *Index) Audience(id string) (*Audience, error) {
	a, ok := idx.audiencesByID[id]
	if !ok {
		return nil, ErrAudienceNotFound
	}
	return a, nil
}

// Group looks up a mutual-exclusion group by id.
func (idx *Index) Group(id string) (*Group, error) {
	g, ok := idx.groupsByID[id]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

// Rollout looks up a rollout by id.
func (idx *Index) Rollout(id string) (*Rollout, error) {
	r, ok := idx.rolloutsByID[id]
	if !ok {
		return nil, ErrRolloutNotFound
	}
	return r, nil
}

// FeatureKeys returns all feature keys in declaration order.
func (idx *Index) FeatureKeys() []string {
	return slices.Clone(idx.featureKeys)
}

// Cloning below detaches the Index from the caller's Datafile so later
// mutations of the input cannot leak into a published snapshot. Condition
// trees are shared; they are never mutated after parsing.

func cloneExperiment(e *Experiment) *Experiment {
	out := *e
	out.Variations = make([]Variation, len(e.Variations))
	for i := range e.Variations {
		out.Variations[i] = e.Variations[i]
		out.Variations[i].Variables = maps.Clone(e.Variations[i].Variables)
	}
	out.TrafficAllocation = slices.Clone(e.TrafficAllocation)
	out.AudienceIDs = slices.Clone(e.AudienceIDs)
	out.Whitelist = maps.Clone(e.Whitelist)
	return &out
}

func cloneGroup(g *Group) *Group {
	out := *g
	out.TrafficAllocation = slices.Clone(g.TrafficAllocation)
	return &out
}

func cloneAudience(a *Audience) *Audience {
	out := *a
	return &out
}

func cloneFeature(f *Feature) *Feature {
	out := *f
	out.ExperimentIDs = slices.Clone(f.ExperimentIDs)
	out.Variables = slices.Clone(f.Variables)
	return &out
}

func cloneRollout(r *Rollout) *Rollout {
	out := *r
	out.Rules = make([]Experiment, len(r.Rules))
	for i := range r.Rules {
		out.Rules[i] = *cloneExperiment(&r.Rules[i])
	}
	return &out
}
