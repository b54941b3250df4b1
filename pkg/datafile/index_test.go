package datafile_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaglab/flagkit/pkg/bucketer"
	"github.com/flaglab/flagkit/pkg/condition"
	"github.com/flaglab/flagkit/pkg/datafile"
)

func validDatafile() *datafile.Datafile {
	return &datafile.Datafile{
		Version:  "4",
		Revision: "42",
		Audiences: []datafile.Audience{
			{ID: "aud-pro", Name: "Pro users", Conditions: &condition.Tree{
				Leaf: &condition.Match{Name: "plan", Kind: condition.MatchExact, Value: "pro"},
			}},
		},
		Groups: []datafile.Group{
			{ID: "grp-1", Policy: "random", TrafficAllocation: []bucketer.Range{
				{EntityID: "exp-a-id", EndOfRange: 5000},
				{EntityID: "exp-b-id", EndOfRange: 10000},
			}},
		},
		Experiments: []datafile.Experiment{
			{
				ID: "exp-a-id", Key: "exp-a", Status: datafile.StatusRunning, GroupID: "grp-1",
				AudienceIDs: []string{"aud-pro"},
				Variations: []datafile.Variation{
					{ID: "var-a1", Key: "control"},
					{ID: "var-a2", Key: "treatment"},
				},
				TrafficAllocation: []bucketer.Range{
					{EntityID: "var-a1", EndOfRange: 5000},
					{EntityID: "var-a2", EndOfRange: 10000},
				},
				Whitelist: map[string]string{"qa-user": "treatment"},
			},
			{
				ID: "exp-b-id", Key: "exp-b", Status: datafile.StatusRunning, GroupID: "grp-1",
				Variations: []datafile.Variation{{ID: "var-b1", Key: "on", FeatureEnabled: true}},
				TrafficAllocation: []bucketer.Range{
					{EntityID: "var-b1", EndOfRange: 10000},
				},
			},
		},
		Rollouts: []datafile.Rollout{
			{ID: "ro-1", Rules: []datafile.Experiment{
				{
					ID: "rule-1", Key: "rule-1", Status: datafile.StatusRunning,
					Variations:        []datafile.Variation{{ID: "rv-1", Key: "on", FeatureEnabled: true}},
					TrafficAllocation: []bucketer.Range{{EntityID: "rv-1", EndOfRange: 10000}},
				},
			}},
		},
		Features: []datafile.Feature{
			{
				ID: "feat-1-id", Key: "feat-1",
				ExperimentIDs: []string{"exp-b-id"},
				RolloutID:     "ro-1",
				Variables: []datafile.Variable{
					{ID: "v1", Key: "greeting", Type: datafile.VariableString, DefaultValue: "hello"},
				},
			},
		},
	}
}

func TestNewIndex(t *testing.T) {
	t.Parallel()

	t.Run("ValidSnapshot", func(t *testing.T) {
		t.Parallel()
		idx, err := datafile.NewIndex(validDatafile())
		require.NoError(t, err)

		assert.Equal(t, "42", idx.Revision())
		assert.Equal(t, "4", idx.Version())

		exp, err := idx.Experiment("exp-a")
		require.NoError(t, err)
		assert.Equal(t, "exp-a-id", exp.ID)
		assert.True(t, exp.Running())

		byID, err := idx.ExperimentByID("exp-b-id")
		require.NoError(t, err)
		assert.Equal(t, "exp-b", byID.Key)

		feat, err := idx.Feature("feat-1")
		require.NoError(t, err)
		assert.Equal(t, "ro-1", feat.RolloutID)

		_, err = idx.Audience("aud-pro")
		require.NoError(t, err)
		_, err = idx.Group("grp-1")
		require.NoError(t, err)
		_, err = idx.Rollout("ro-1")
		require.NoError(t, err)

		assert.Equal(t, []string{"feat-1"}, idx.FeatureKeys())
	})

	t.Run("NotFoundLookups", func(t *testing.T) {
		t.Parallel()
		idx, err := datafile.NewIndex(validDatafile())
		require.NoError(t, err)

		_, err = idx.Experiment("nope")
		assert.ErrorIs(t, err, datafile.ErrExperimentNotFound)
		_, err = idx.Feature("nope")
		assert.ErrorIs(t, err, datafile.ErrFeatureNotFound)
		_, err = idx.Audience("nope")
		assert.ErrorIs(t, err, datafile.ErrAudienceNotFound)
		_, err = idx.Group("nope")
		assert.ErrorIs(t, err, datafile.ErrGroupNotFound)
	})

	t.Run("NilDatafile", func(t *testing.T) {
		t.Parallel()
		_, err := datafile.NewIndex(nil)
		assert.ErrorIs(t, err, datafile.ErrInvalidDatafile)
	})

	t.Run("InputMutationDoesNotLeak", func(t *testing.T) {
		t.Parallel()
		df := validDatafile()
		idx, err := datafile.NewIndex(df)
		require.NoError(t, err)

		df.Experiments[0].Key = "mutated"
		df.Experiments[0].Whitelist["qa-user"] = "control"
		df.Experiments[0].TrafficAllocation[0].EndOfRange = 1

		exp, err := idx.Experiment("exp-a")
		require.NoError(t, err)
		assert.Equal(t, "treatment", exp.Whitelist["qa-user"])
		assert.Equal(t, 5000, exp.TrafficAllocation[0].EndOfRange)
	})
}

func TestNewIndexValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*datafile.Datafile)
		detail string
	}{
		{
			name: "NonIncreasingRanges",
			mutate: func(df *datafile.Datafile) {
				df.Experiments[0].TrafficAllocation = []bucketer.Range{
					{EntityID: "var-a1", EndOfRange: 5000},
					{EntityID: "var-a2", EndOfRange: 5000},
				}
			},
			detail: "non-increasing",
		},
		{
			name: "RangePastBucketSpace",
			mutate: func(df *datafile.Datafile) {
				df.Experiments[0].TrafficAllocation[1].EndOfRange = 10001
			},
			detail: "past the bucket space",
		},
		{
			name: "RangeReferencesUnknownVariation",
			mutate: func(df *datafile.Datafile) {
				df.Experiments[0].TrafficAllocation[0].EntityID = "ghost"
			},
			detail: "unknown variation",
		},
		{
			name: "UnknownAudience",
			mutate: func(df *datafile.Datafile) {
				df.Experiments[0].AudienceIDs = []string{"ghost"}
			},
			detail: "unknown audience",
		},
		{
			name: "UnknownGroup",
			mutate: func(df *datafile.Datafile) {
				df.Experiments[0].GroupID = "ghost"
			},
			detail: "unknown group",
		},
		{
			name: "GroupAllocatesNonMember",
			mutate: func(df *datafile.Datafile) {
				df.Experiments[1].GroupID = ""
			},
			detail: "belongs to group",
		},
		{
			name: "GroupAllocatesUnknownExperiment",
			mutate: func(df *datafile.Datafile) {
				df.Groups[0].TrafficAllocation[1].EntityID = "ghost"
			},
			detail: "unknown experiment",
		},
		{
			name: "WhitelistUnknownVariation",
			mutate: func(df *datafile.Datafile) {
				df.Experiments[0].Whitelist["qa-user"] = "ghost"
			},
			detail: "unknown variation",
		},
		{
			name: "FeatureUnknownExperiment",
			mutate: func(df *datafile.Datafile) {
				df.Features[0].ExperimentIDs = []string{"ghost"}
			},
			detail: "unknown experiment",
		},
		{
			name: "FeatureUnknownRollout",
			mutate: func(df *datafile.Datafile) {
				df.Features[0].RolloutID = "ghost"
			},
			detail: "unknown rollout",
		},
		{
			name: "RolloutRuleInvalidAllocation",
			mutate: func(df *datafile.Datafile) {
				df.Rollouts[0].Rules[0].TrafficAllocation[0].EntityID = "ghost"
			},
			detail: "unknown variation",
		},
		{
			name: "DuplicateExperimentKey",
			mutate: func(df *datafile.Datafile) {
				df.Experiments[1].Key = "exp-a"
			},
			detail: "duplicate experiment key",
		},
		{
			name: "DuplicateFeatureKey",
			mutate: func(df *datafile.Datafile) {
				df.Features = append(df.Features, datafile.Feature{Key: "feat-1"})
			},
			detail: "duplicate feature key",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			df := validDatafile()
			tc.mutate(df)
			_, err := datafile.NewIndex(df)
			require.Error(t, err)
			assert.ErrorIs(t, err, datafile.ErrInvalidDatafile)
			assert.Contains(t, err.Error(), tc.detail)
		})
	}
}

func TestDatafileUnmarshal(t *testing.T) {
	t.Parallel()

	raw := `{
		"version": "4",
		"revision": "7",
		"audiences": [
			{"id": "aud-1", "name": "pro", "conditions": "[\"and\", {\"name\": \"plan\", \"match\": \"exact\", \"value\": \"pro\"}]"}
		],
		"experiments": [{
			"id": "e1", "key": "exp1", "status": "Running",
			"audienceIds": ["aud-1"],
			"variations": [{"id": "v1", "key": "control", "variables": {"greeting": "hi"}}],
			"trafficAllocation": [{"entityId": "v1", "endOfRange": 10000}],
			"forcedVariations": {"qa": "control"}
		}],
		"featureFlags": [{
			"id": "f1", "key": "feat1", "experimentIds": ["e1"],
			"variables": [{"id": "fv1", "key": "greeting", "type": "string", "defaultValue": "hello"}]
		}],
		"rollouts": [],
		"groups": []
	}`

	var df datafile.Datafile
	require.NoError(t, json.Unmarshal([]byte(raw), &df))

	idx, err := datafile.NewIndex(&df)
	require.NoError(t, err)

	exp, err := idx.Experiment("exp1")
	require.NoError(t, err)
	assert.Equal(t, "control", exp.Whitelist["qa"])
	assert.Equal(t, "hi", exp.Variations[0].Variables["greeting"])

	aud, err := idx.Audience("aud-1")
	require.NoError(t, err)
	assert.Equal(t, condition.True,
		condition.Evaluate(aud.Conditions, map[string]any{"plan": "pro"}))
	assert.Equal(t, condition.False,
		condition.Evaluate(aud.Conditions, map[string]any{"plan": "free"}))
}

func TestExperimentHelpers(t *testing.T) {
	t.Parallel()

	df := validDatafile()
	exp := &df.Experiments[0]

	require.NotNil(t, exp.VariationByID("var-a2"))
	assert.Equal(t, "treatment", exp.VariationByID("var-a2").Key)
	assert.Nil(t, exp.VariationByID("ghost"))

	require.NotNil(t, exp.VariationByKey("control"))
	assert.Nil(t, exp.VariationByKey("ghost"))

	feat := &df.Features[0]
	require.NotNil(t, feat.VariableByKey("greeting"))
	assert.Nil(t, feat.VariableByKey("ghost"))
}
