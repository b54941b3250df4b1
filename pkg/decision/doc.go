// Package decision orchestrates experiment and feature resolution: which
// variation a user receives, from which mechanism, and why.
//
// # Precedence
//
// Experiment resolution walks a strict chain, short-circuiting at the first
// definitive answer:
//
//  1. Runtime forced variation (Service.SetForcedVariation), which wins even
//     over a paused experiment.
//  2. Datafile whitelist.
//  3. Running-state check.
//  4. Sticky bucketing: a stored profile decision is replayed before the
//     group and audience checks recompute anything. A stored variation id
//     that no longer resolves is discarded silently.
//  5. Mutual-exclusion group: the group's own traffic allocation decides
//     which member experiment (if any) the user belongs to.
//  6. Audience gate, with Kleene three-valued evaluation: Unknown gates the
//     user out exactly like False, but the decision's Reasons record that
//     the evaluation was inconclusive rather than a mismatch.
//  7. Live bucketing over the experiment's allocation, with a write-back to
//     the profile store on success.
//
// This order is contractual for analytics consumers; do not reorder.
//
// Feature resolution cascades: feature-test experiments in declared order
// (full chain above), then rollout rules in order. Each rule evaluates only
// its own audience and allocation, falling through on either miss, then
// off-by-default.
//
// # Error policy
//
// Unknown experiment/feature/variable keys surface the datafile sentinels
// and produce no decision; the caller chooses whether to log or report.
// Everything else is absorbed: attribute type mismatches become Unknown
// inside the condition evaluator, profile store failures are logged and the
// decision proceeds as if no sticky record existed. Partial information
// never aborts a decision.
//
// # Usage
//
//	svc := decision.NewService(
//		decision.WithProfileStore(profile.NewMemoryStore()),
//		decision.WithLogger(logger),
//	)
//	d, err := svc.Feature(ctx, idx, "checkout-redesign", decision.UserContext{
//		ID:         "user-42",
//		Attributes: map[string]any{"plan": "pro"},
//	})
//
// The Service holds no snapshot: the Index is passed per call, so a
// configuration swap never tears a decision in flight.
package decision
