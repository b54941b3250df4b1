package decision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/flaglab/flagkit/pkg/bucketer"
	"github.com/flaglab/flagkit/pkg/condition"
	"github.com/flaglab/flagkit/pkg/datafile"
	"github.com/flaglab/flagkit/pkg/profile"
)

// Service resolves experiment and feature decisions against a configuration
// snapshot. It owns no snapshot itself: the caller passes the Index per
// call, so a configuration swap never tears a decision in flight. The only
// cross-call state is the forced-variation store and the optional sticky
// profile store, both concurrency-safe.
type Service struct {
	profiles profile.Store
	forced   *ForcedStore
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithProfileStore enables sticky bucketing through the given store.
// Without one, every decision is computed live.
func WithProfileStore(store profile.Store) Option {
	return func(s *Service) { s.profiles = store }
}

// WithForcedStore replaces the default forced-variation store, letting
// multiple services share overrides.
func WithForcedStore(store *ForcedStore) Option {
	return func(s *Service) {
		if store != nil {
			s.forced = store
		}
	}
}

// WithLogger sets the logger for non-fatal events (profile store failures,
// discarded stale decisions).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a decision service.
func NewService(opts ...Option) *Service {
	s := &Service{
		forced: NewForcedStore(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forced exposes the forced-variation store, primarily for sharing it
// across services.
func (s *Service) Forced() *ForcedStore { return s.forced }

// SetForcedVariation records a runtime override for (experiment, user),
// reporting whether it was applied. An unknown experiment or variation key
// is rejected. An empty variation key removes a previous override and
// always succeeds for a known experiment.
func (s *Service) SetForcedVariation(idx *datafile.Index, experimentKey, userID, variationKey string) bool {
	exp, err := idx.Experiment(experimentKey)
	if err != nil {
		return false
	}
	if variationKey != "" && exp.VariationByKey(variationKey) == nil {
		return false
	}
	s.forced.Set(userID, experimentKey, variationKey)
	return true
}

// ForcedVariation returns the override variation key for (experiment, user),
// or "" when none is set.
func (s *Service) ForcedVariation(experimentKey, userID string) string {
	return s.forced.Get(userID, experimentKey)
}

// Experiment resolves an experiment decision for the user. An unknown
// experiment key returns datafile.ErrExperimentNotFound and no decision.
func (s *Service) Experiment(ctx context.Context, idx *datafile.Index, key string, user UserContext) (Decision, error) {
	exp, err := idx.Experiment(key)
	if err != nil {
		return Decision{}, err
	}
	d := s.resolveExperiment(ctx, idx, exp, user)
	d.Key = key
	return d, nil
}

// Feature resolves a feature decision: feature-test experiments in declared
// order first, then rollout rules, then off-by-default. An unknown feature
// key returns datafile.ErrFeatureNotFound and no decision.
func (s *Service) Feature(ctx context.Context, idx *datafile.Index, key string, user UserContext) (Decision, error) {
	feat, err := idx.Feature(key)
	if err != nil {
		return Decision{}, err
	}

	var reasons []string
	for _, expID := range feat.ExperimentIDs {
		exp, err := idx.ExperimentByID(expID)
		if err != nil {
			// Unreachable on a validated Index; skip rather than abort.
			continue
		}
		d := s.resolveExperiment(ctx, idx, exp, user)
		reasons = append(reasons, d.Reasons...)
		if d.Bucketed() {
			d.Key = key
			d.Enabled = d.Variation.FeatureEnabled
			d.Reasons = reasons
			return d, nil
		}
	}

	if feat.RolloutID != "" {
		ro, err := idx.Rollout(feat.RolloutID)
		if err == nil {
			for i := range ro.Rules {
				rule := &ro.Rules[i]
				d, ok := s.resolveRule(idx, rule, user, &reasons)
				if ok {
					d.Key = key
					d.Reasons = reasons
					return d, nil
				}
			}
		}
	}

	reasons = append(reasons, "no experiment or rollout rule matched, feature defaults apply")
	return Decision{Key: key, Source: SourceDefault, Enabled: false, Reasons: reasons}, nil
}

// VariableValue resolves a feature decision and returns the typed value of
// one declared variable: the winning variation's override when the feature
// is enabled and overrides it, the declared default otherwise.
func (s *Service) VariableValue(ctx context.Context, idx *datafile.Index, featureKey, variableKey string, user UserContext) (any, error) {
	feat, err := idx.Feature(featureKey)
	if err != nil {
		return nil, err
	}
	variable := feat.VariableByKey(variableKey)
	if variable == nil {
		return nil, datafile.ErrVariableNotFound
	}

	d, err := s.Feature(ctx, idx, featureKey, user)
	if err != nil {
		return nil, err
	}

	raw := variable.DefaultValue
	if d.Bucketed() && d.Enabled {
		if override, ok := d.Variation.Variables[variableKey]; ok {
			raw = override
		}
	}
	return parseVariable(variable.Type, raw)
}

// resolveExperiment runs the precedence chain for one experiment. Each step
// short-circuits on a definitive answer; the returned decision's Reasons
// trace the path taken.
func (s *Service) resolveExperiment(ctx context.Context, idx *datafile.Index, exp *datafile.Experiment, user UserContext) Decision {
	d := Decision{ExperimentKey: exp.Key, Source: SourceDefault}

	// 1. Runtime forced variation wins over everything, including a paused
	// experiment. A stale override whose variation left the snapshot is
	// discarded, not fatal.
	if forcedKey := s.forced.Get(user.ID, exp.Key); forcedKey != "" {
		if v := exp.VariationByKey(forcedKey); v != nil {
			d.Variation = v
			d.Source = SourceForced
			d.Reasons = append(d.Reasons, fmt.Sprintf("forced variation %q", forcedKey))
			return d
		}
		d.Reasons = append(d.Reasons, fmt.Sprintf("discarded stale forced variation %q", forcedKey))
	}

	// 2. Datafile whitelist.
	if wlKey, ok := exp.Whitelist[user.ID]; ok {
		if v := exp.VariationByKey(wlKey); v != nil {
			d.Variation = v
			d.Source = SourceWhitelist
			d.Reasons = append(d.Reasons, fmt.Sprintf("whitelisted into variation %q", wlKey))
			return d
		}
	}

	// 3. Only running experiments bucket traffic.
	if !exp.Running() {
		d.Reasons = append(d.Reasons, fmt.Sprintf("experiment %q is not running", exp.Key))
		return d
	}

	// 4. Sticky bucketing replays a stored decision before the group and
	// audience checks recompute anything.
	if s.profiles != nil {
		if p, err := s.profiles.Lookup(ctx, user.ID); err != nil {
			s.logger.WarnContext(ctx, "profile lookup failed, bucketing live",
				slog.String("user_id", user.ID), slog.Any("error", err))
		} else if variationID, ok := p.Variation(exp.ID); ok {
			if v := exp.VariationByID(variationID); v != nil {
				d.Variation = v
				d.Source = SourceSticky
				d.Reasons = append(d.Reasons, fmt.Sprintf("sticky variation %q", v.Key))
				return d
			}
			// Stored variation no longer exists: discard, recompute.
			d.Reasons = append(d.Reasons, fmt.Sprintf("discarded stale sticky variation id %q", variationID))
		}
	}

	bucketingID := user.EffectiveBucketingID()

	// 5. Mutual-exclusion group: the group's own allocation decides which
	// member (if any) this user belongs to.
	if exp.GroupID != "" {
		group, err := idx.Group(exp.GroupID)
		if err == nil {
			bucket := bucketer.Bucket(bucketer.Key(bucketingID, group.ID))
			winner, ok := bucketer.FindRange(bucket, group.TrafficAllocation)
			if !ok || winner != exp.ID {
				d.Reasons = append(d.Reasons, fmt.Sprintf("excluded by group %q", group.ID))
				return d
			}
		}
	}

	// 6. Audience gate. Unknown behaves as not-matched, but the reasons keep
	// the distinction for diagnostics.
	if result := s.audience(idx, exp.AudienceIDs, user, &d.Reasons); result != condition.True {
		d.Reasons = append(d.Reasons, fmt.Sprintf("audience gate %s for experiment %q", result, exp.Key))
		return d
	}

	// 7. Live bucketing over the experiment's own allocation.
	bucket := bucketer.Bucket(bucketer.Key(bucketingID, exp.ID))
	variationID, ok := bucketer.FindRange(bucket, exp.TrafficAllocation)
	if !ok {
		d.Reasons = append(d.Reasons, fmt.Sprintf("bucket %d outside traffic allocation", bucket))
		return d
	}
	v := exp.VariationByID(variationID)
	if v == nil {
		// Unreachable on a validated Index.
		d.Reasons = append(d.Reasons, fmt.Sprintf("allocation references unknown variation id %q", variationID))
		return d
	}

	d.Variation = v
	d.Source = SourceBucketing
	d.Reasons = append(d.Reasons, fmt.Sprintf("bucket %d selected variation %q", bucket, v.Key))

	if s.profiles != nil {
		if p, err := s.profiles.Lookup(ctx, user.ID); err == nil {
			if err := s.profiles.Save(ctx, p.With(exp.ID, v.ID)); err != nil {
				s.logger.WarnContext(ctx, "profile save failed, decision not remembered",
					slog.String("user_id", user.ID), slog.Any("error", err))
			}
		}
	}
	return d
}

// resolveRule evaluates one rollout rule: its own audience, its own
// allocation, no forced/sticky/group machinery. ok reports whether the rule
// decided; false falls through to the next rule.
func (s *Service) resolveRule(idx *datafile.Index, rule *datafile.Experiment, user UserContext, reasons *[]string) (Decision, bool) {
	if result := s.audience(idx, rule.AudienceIDs, user, reasons); result != condition.True {
		*reasons = append(*reasons, fmt.Sprintf("audience gate %s for rule %q", result, rule.Key))
		return Decision{}, false
	}

	bucket := bucketer.Bucket(bucketer.Key(user.EffectiveBucketingID(), rule.ID))
	variationID, ok := bucketer.FindRange(bucket, rule.TrafficAllocation)
	if !ok {
		*reasons = append(*reasons, fmt.Sprintf("bucket %d outside allocation of rule %q", bucket, rule.Key))
		return Decision{}, false
	}
	v := rule.VariationByID(variationID)
	if v == nil {
		return Decision{}, false
	}

	*reasons = append(*reasons, fmt.Sprintf("rule %q bucket %d selected variation %q", rule.Key, bucket, v.Key))
	return Decision{
		ExperimentKey: rule.Key,
		Variation:     v,
		Source:        SourceRollout,
		Enabled:       v.FeatureEnabled,
	}, true
}

// audience evaluates the OR of the referenced audiences. No references
// means everyone matches. Unknown-leaf reasons are appended for diagnostics.
func (s *Service) audience(idx *datafile.Index, audienceIDs []string, user UserContext, reasons *[]string) condition.Ternary {
	if len(audienceIDs) == 0 {
		return condition.True
	}

	result := condition.False
	for _, id := range audienceIDs {
		aud, err := idx.Audience(id)
		if err != nil {
			// Unreachable on a validated Index.
			continue
		}
		t, rs := condition.EvaluateWithReasons(aud.Conditions, user.Attributes)
		for _, r := range rs {
			*reasons = append(*reasons, "inconclusive condition: "+r.String())
		}
		result = result.Or(t)
		if result == condition.True {
			return result
		}
	}
	return result
}

func parseVariable(typ datafile.VariableType, raw string) (any, error) {
	switch typ {
	case datafile.VariableString:
		return raw, nil
	case datafile.VariableInteger:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.Join(ErrInvalidVariableValue, err)
		}
		return n, nil
	case datafile.VariableDouble:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Join(ErrInvalidVariableValue, err)
		}
		return f, nil
	case datafile.VariableBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Join(ErrInvalidVariableValue, err)
		}
		return b, nil
	case datafile.VariableJSON:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, errors.Join(ErrInvalidVariableValue, err)
		}
		return v, nil
	default:
		return nil, errors.Join(ErrInvalidVariableValue, fmt.Errorf("unknown variable type %q", typ))
	}
}
