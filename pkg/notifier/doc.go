// Package notifier provides a synchronous, typed fan-out of events to
// registered observers.
//
// The decision engine publishes every decision it makes through a Hub; the
// host's analytics pipeline consumes them from there. Delivery is in-process
// and synchronous: there is no queue, no retry, and no ordering guarantee
// across concurrent publishers. Observer isolation is the one hard rule: a
// panicking observer is recovered and logged, never affecting sibling
// observers or the decision result already returned to the caller.
//
//	hub := notifier.NewHub[client.DecisionEvent]()
//	id := hub.Register(func(ctx context.Context, evt client.DecisionEvent) {
//		analytics.Track(ctx, evt)
//	})
//	defer hub.Unregister(id)
package notifier
