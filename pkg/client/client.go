package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/flaglab/flagkit/pkg/datafile"
	"github.com/flaglab/flagkit/pkg/decision"
	"github.com/flaglab/flagkit/pkg/notifier"
	"github.com/flaglab/flagkit/pkg/profile"
)

// Client is the host-facing entry point: it holds the current configuration
// snapshot, resolves decisions against it, and publishes every decision to
// registered observers. Decisions in flight keep the snapshot they started
// with; UpdateConfig swaps atomically underneath them.
type Client struct {
	index   atomic.Pointer[datafile.Index]
	service *decision.Service
	hub     *notifier.Hub[DecisionEvent]
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	profiles  profile.Store
	forced    *decision.ForcedStore
	observers []notifier.Observer[DecisionEvent]
}

// WithLogger sets the logger shared by the client, its decision service and
// its notifier hub.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProfileStore enables sticky bucketing through the given store.
func WithProfileStore(store profile.Store) Option {
	return func(o *options) { o.profiles = store }
}

// WithForcedStore shares a forced-variation store with other clients.
func WithForcedStore(store *decision.ForcedStore) Option {
	return func(o *options) { o.forced = store }
}

// WithObserver registers a decision observer at construction time. More can
// be added later through OnDecision.
func WithObserver(fn notifier.Observer[DecisionEvent]) Option {
	return func(o *options) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// New creates a client with no configuration loaded. Decide calls fail with
// ErrNoConfig until the first successful UpdateConfig.
func New(opts ...Option) *Client {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	svcOpts := []decision.Option{decision.WithLogger(o.logger)}
	if o.profiles != nil {
		svcOpts = append(svcOpts, decision.WithProfileStore(o.profiles))
	}
	if o.forced != nil {
		svcOpts = append(svcOpts, decision.WithForcedStore(o.forced))
	}

	c := &Client{
		service: decision.NewService(svcOpts...),
		hub:     notifier.NewHub(notifier.WithLogger[DecisionEvent](o.logger)),
		logger:  o.logger,
	}
	for _, fn := range o.observers {
		c.hub.Register(fn)
	}
	return c
}

// UpdateConfig validates the datafile and swaps it in as the active
// snapshot. On validation failure the previous snapshot stays active and the
// error reports what was wrong.
func (c *Client) UpdateConfig(df *datafile.Datafile) error {
	idx, err := datafile.NewIndex(df)
	if err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	c.index.Store(idx)
	c.logger.Info("configuration updated",
		slog.String("revision", df.Revision),
		slog.Int("features", len(df.Features)),
		slog.Int("experiments", len(df.Experiments)))
	return nil
}

// UpdateConfigJSON decodes a serialized datafile and applies it via
// UpdateConfig.
func (c *Client) UpdateConfigJSON(raw []byte) error {
	var df datafile.Datafile
	if err := json.Unmarshal(raw, &df); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return c.UpdateConfig(&df)
}

// Ready reports whether a configuration snapshot is loaded.
func (c *Client) Ready() bool { return c.index.Load() != nil }

// OnDecision registers an observer for decision events and returns an id
// for RemoveObserver.
func (c *Client) OnDecision(fn notifier.Observer[DecisionEvent]) int {
	return c.hub.Register(fn)
}

// RemoveObserver unregisters an observer by id, reporting whether it was
// registered.
func (c *Client) RemoveObserver(id int) bool { return c.hub.Unregister(id) }

// DecideExperiment resolves the user's variation for one experiment.
func (c *Client) DecideExperiment(ctx context.Context, experimentKey string, user decision.UserContext) (decision.Decision, error) {
	idx, err := c.snapshot(user)
	if err != nil {
		return decision.Decision{}, err
	}
	d, err := c.service.Experiment(ctx, idx, experimentKey, user)
	if err != nil {
		return decision.Decision{}, err
	}
	c.hub.Publish(ctx, newDecisionEvent(DecisionExperiment, d, user))
	return d, nil
}

// Decide resolves the on/off state and winning variation for one feature.
func (c *Client) Decide(ctx context.Context, featureKey string, user decision.UserContext) (decision.Decision, error) {
	idx, err := c.snapshot(user)
	if err != nil {
		return decision.Decision{}, err
	}
	d, err := c.service.Feature(ctx, idx, featureKey, user)
	if err != nil {
		return decision.Decision{}, err
	}
	c.hub.Publish(ctx, newDecisionEvent(DecisionFeature, d, user))
	return d, nil
}

// DecideAll resolves every feature in the snapshot for the user, keyed by
// feature key, in the datafile's declared order. All decisions come from the
// same snapshot even if UpdateConfig runs concurrently.
func (c *Client) DecideAll(ctx context.Context, user decision.UserContext) (map[string]decision.Decision, error) {
	idx, err := c.snapshot(user)
	if err != nil {
		return nil, err
	}

	out := make(map[string]decision.Decision)
	for _, key := range idx.FeatureKeys() {
		d, err := c.service.Feature(ctx, idx, key, user)
		if err != nil {
			// Unreachable for keys the snapshot itself listed.
			continue
		}
		c.hub.Publish(ctx, newDecisionEvent(DecisionFeature, d, user))
		out[key] = d
	}
	return out, nil
}

// GetVariableValue resolves the typed value of one feature variable for the
// user: the winning variation's override when the feature is enabled, the
// declared default otherwise.
func (c *Client) GetVariableValue(ctx context.Context, featureKey, variableKey string, user decision.UserContext) (any, error) {
	idx, err := c.snapshot(user)
	if err != nil {
		return nil, err
	}
	v, err := c.service.VariableValue(ctx, idx, featureKey, variableKey, user)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// SetForcedVariation records a runtime override for (experiment, user),
// reporting whether it was applied. An empty variation key removes a
// previous override.
func (c *Client) SetForcedVariation(experimentKey, userID, variationKey string) bool {
	idx := c.index.Load()
	if idx == nil {
		return false
	}
	return c.service.SetForcedVariation(idx, experimentKey, userID, variationKey)
}

// GetForcedVariation returns the override variation key for
// (experiment, user), or "" when none is set.
func (c *Client) GetForcedVariation(experimentKey, userID string) string {
	return c.service.ForcedVariation(experimentKey, userID)
}

func (c *Client) snapshot(user decision.UserContext) (*datafile.Index, error) {
	if user.ID == "" {
		return nil, ErrEmptyUserID
	}
	idx := c.index.Load()
	if idx == nil {
		return nil, ErrNoConfig
	}
	return idx, nil
}
