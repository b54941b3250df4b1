// Package datafile models the parsed configuration snapshot a decision
// engine runs against: experiments, variations, traffic allocations,
// mutual-exclusion groups, audiences, features, and rollouts.
//
// The package has two halves:
//
//  1. JSON-tagged entity structs matching the datafile wire format. How the
//     document is fetched, polled, or schema-validated is the host's
//     concern; this package only consumes the parsed result.
//  2. Index, an immutable queryable view with O(1) key/id lookups.
//
// # Snapshot discipline
//
// NewIndex deep-copies the input and validates referential integrity: every
// traffic-allocation entity id resolves, cumulative range ends strictly
// increase within the 10,000-slot bucket space, audience and group
// references resolve, group allocations only cover their own members, and
// feature references resolve. A snapshot that fails validation is rejected
// wholesale (ErrInvalidDatafile); the engine must keep serving its previous
// Index rather than operate on a partially valid one.
//
// A built Index is never mutated. Configuration updates construct a new
// Index and swap it atomically, so in-flight decisions always observe one
// consistent snapshot.
//
// # Usage
//
//	var df datafile.Datafile
//	if err := json.Unmarshal(raw, &df); err != nil {
//		// malformed document, keep the previous snapshot
//	}
//	idx, err := datafile.NewIndex(&df)
//	if err != nil {
//		// broken references, keep the previous snapshot
//	}
//	exp, err := idx.Experiment("checkout-redesign")
//
// Lookups return sentinel errors (ErrExperimentNotFound and friends) rather
// than panicking, deferring the how-to-surface decision to the caller.
package datafile
