package condition

// Operator is a logical combinator over child condition trees.
type Operator string

const (
	OpAnd Operator = "and"
	OpOr  Operator = "or"
	OpNot Operator = "not"
)

// MatchKind identifies the comparison applied by a leaf condition.
// The set is closed and versioned by the configuration format.
type MatchKind string

const (
	MatchExact     MatchKind = "exact"
	MatchExists    MatchKind = "exists"
	MatchSubstring MatchKind = "substring"
	MatchGT        MatchKind = "gt"
	MatchGE        MatchKind = "ge"
	MatchLT        MatchKind = "lt"
	MatchLE        MatchKind = "le"
	MatchSemverEQ  MatchKind = "semver_eq"
	MatchSemverGT  MatchKind = "semver_gt"
	MatchSemverGE  MatchKind = "semver_ge"
	MatchSemverLT  MatchKind = "semver_lt"
	MatchSemverLE  MatchKind = "semver_le"
)

// Match is a leaf condition: a single comparison between a user attribute
// and an expected value from the configuration.
type Match struct {
	// Name is the attribute the condition reads.
	Name string `json:"name"`
	// Kind selects the comparison; defaults to exact when absent in JSON.
	Kind MatchKind `json:"match,omitempty"`
	// Value is the expected value. Its Go type (string, float64, bool)
	// doubles as the declared type the attribute must have at runtime.
	// Semver kinds expect a string value on both sides.
	Value any `json:"value,omitempty"`
}

// Tree is a tagged-union condition node: either a combinator over children
// (Op set, Leaf nil) or a leaf comparison (Leaf set, Op empty).
// A nil *Tree matches everyone.
type Tree struct {
	Op       Operator
	Children []*Tree
	Leaf     *Match
}

// validKinds is the closed operator set accepted by the JSON codec.
var validKinds = map[MatchKind]struct{}{
	MatchExact: {}, MatchExists: {}, MatchSubstring: {},
	MatchGT: {}, MatchGE: {}, MatchLT: {}, MatchLE: {},
	MatchSemverEQ: {}, MatchSemverGT: {}, MatchSemverGE: {},
	MatchSemverLT: {}, MatchSemverLE: {},
}
