// Package client is the host-facing entry point of the decision engine: it
// owns the active configuration snapshot, resolves experiment and feature
// decisions against it, and fans every decision out to registered observers.
//
// # Snapshot semantics
//
// The client holds the configuration behind an atomic pointer. UpdateConfig
// validates the new datafile first and swaps only on success, so a broken
// payload never evicts a working snapshot. Each decide call loads the
// pointer once and resolves entirely against that snapshot: a concurrent
// swap never tears a decision, and DecideAll sees one consistent revision
// across all features.
//
// # Usage
//
//	c := client.New(
//		client.WithProfileStore(profile.NewMemoryStore()),
//		client.WithObserver(func(ctx context.Context, ev client.DecisionEvent) {
//			analytics.Track(ev)
//		}),
//	)
//	if err := c.UpdateConfigJSON(raw); err != nil {
//		return err
//	}
//	d, err := c.Decide(ctx, "checkout-redesign", decision.UserContext{
//		ID:         "user-42",
//		Attributes: map[string]any{"plan": "pro"},
//	})
//
// Observers run synchronously on the deciding goroutine; a panicking
// observer is recovered and logged without affecting the decision or other
// observers.
package client
