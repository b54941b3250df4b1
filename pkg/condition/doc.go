// Package condition evaluates audience condition trees against a user's
// typed attribute set using three-valued (Kleene) logic.
//
// A condition tree is a tagged union: combinator nodes (and/or/not) over
// children, or leaf comparisons between a named attribute and an expected
// value from the configuration. The operator set is closed and versioned by
// the configuration format; the JSON codec rejects anything outside it.
//
// # Three-valued logic
//
// Evaluation returns a Ternary, not a bool. A missing attribute or a runtime
// type mismatch yields Unknown rather than False, because "we could not tell"
// and "we checked and it did not match" are different answers: gating treats
// both as excluded, but diagnostics must be able to report which one
// happened. Combinators follow Kleene semantics:
//
//   - AND is True when all children are True, False when any child is False,
//     otherwise Unknown.
//   - OR is True when any child is True, False when all children are False,
//     otherwise Unknown.
//   - NOT inverts True/False and leaves Unknown alone.
//
// # Usage
//
//	var tree condition.Tree
//	if err := json.Unmarshal(raw, &tree); err != nil {
//		// reject the snapshot
//	}
//
//	result, reasons := condition.EvaluateWithReasons(&tree, map[string]any{
//		"plan":        "pro",
//		"app_version": "2.1.0",
//	})
//	if result == condition.True {
//		// audience matched
//	}
//	for _, r := range reasons {
//		log.Debug("inconclusive leaf", "reason", r.String())
//	}
//
// A nil tree matches everyone; experiments without an audience reference use
// this to mean "no gate".
//
// # Wire format
//
// The codec accepts the nested-array document emitted by datafiles:
//
//	["and", ["or", {"name": "plan", "match": "exact", "value": "pro"}],
//	        {"name": "app_version", "match": "semver_ge", "value": "2.0.0"}]
//
// An array without a leading operator string defaults to "or"; a JSON string
// is treated as a double-encoded subdocument, which older datafile revisions
// emit for audience conditions.
//
// Semver comparisons are delegated to github.com/Masterminds/semver, which
// orders prerelease versions below their corresponding release.
package condition
