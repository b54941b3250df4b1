package condition

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Reason records why a leaf evaluated to Unknown, letting callers tell an
// inconclusive evaluation apart from a definitive mismatch.
type Reason struct {
	Attribute string
	Kind      MatchKind
	Cause     string
}

func (r Reason) String() string {
	return fmt.Sprintf("attribute %q (%s): %s", r.Attribute, r.Kind, r.Cause)
}

// Evaluate walks the condition tree against the given attributes using
// Kleene three-valued logic. A nil tree matches everyone.
func Evaluate(t *Tree, attrs map[string]any) Ternary {
	result, _ := EvaluateWithReasons(t, attrs)
	return result
}

// EvaluateWithReasons is Evaluate plus the per-leaf reasons for every
// Unknown encountered, in evaluation order. Combinators do not short-circuit
// Unknown away: an OR with one True child is True, but reasons for its
// Unknown siblings evaluated before the True child are still reported.
func EvaluateWithReasons(t *Tree, attrs map[string]any) (Ternary, []Reason) {
	if t == nil {
		return True, nil
	}
	e := &evaluator{attrs: attrs}
	result := e.walk(t)
	return result, e.reasons
}

type evaluator struct {
	attrs   map[string]any
	reasons []Reason
}

func (e *evaluator) walk(t *Tree) Ternary {
	if t == nil {
		return True
	}
	if t.Leaf != nil {
		return e.leaf(t.Leaf)
	}

	switch t.Op {
	case OpNot:
		if len(t.Children) == 0 {
			return Unknown
		}
		return e.walk(t.Children[0]).Not()

	case OpAnd:
		result := True
		for _, child := range t.Children {
			result = result.And(e.walk(child))
			if result == False {
				return False
			}
		}
		return result

	default: // OpOr and the implicit default
		result := False
		for _, child := range t.Children {
			result = result.Or(e.walk(child))
			if result == True {
				return True
			}
		}
		return result
	}
}

func (e *evaluator) unknown(m *Match, cause string) Ternary {
	e.reasons = append(e.reasons, Reason{Attribute: m.Name, Kind: m.Kind, Cause: cause})
	return Unknown
}

func (e *evaluator) leaf(m *Match) Ternary {
	value, present := e.attrs[m.Name]

	if m.Kind == MatchExists {
		return Of(present && value != nil)
	}

	if !present || value == nil {
		return e.unknown(m, "attribute not provided")
	}

	switch m.Kind {
	case MatchExact:
		return e.exact(m, value)
	case MatchSubstring:
		return e.substring(m, value)
	case MatchGT, MatchGE, MatchLT, MatchLE:
		return e.numeric(m, value)
	case MatchSemverEQ, MatchSemverGT, MatchSemverGE, MatchSemverLT, MatchSemverLE:
		return e.version(m, value)
	default:
		return e.unknown(m, "unsupported match type")
	}
}

func (e *evaluator) exact(m *Match, value any) Ternary {
	switch expected := m.Value.(type) {
	case string:
		actual, ok := value.(string)
		if !ok {
			return e.unknown(m, fmt.Sprintf("expected string, got %T", value))
		}
		return Of(actual == expected)
	case bool:
		actual, ok := value.(bool)
		if !ok {
			return e.unknown(m, fmt.Sprintf("expected bool, got %T", value))
		}
		return Of(actual == expected)
	case float64:
		actual, ok := toFloat(value)
		if !ok {
			return e.unknown(m, fmt.Sprintf("expected number, got %T", value))
		}
		return Of(actual == expected)
	default:
		return e.unknown(m, fmt.Sprintf("unsupported expected value type %T", m.Value))
	}
}

func (e *evaluator) substring(m *Match, value any) Ternary {
	expected, ok := m.Value.(string)
	if !ok {
		return e.unknown(m, fmt.Sprintf("unsupported expected value type %T", m.Value))
	}
	actual, ok := value.(string)
	if !ok {
		return e.unknown(m, fmt.Sprintf("expected string, got %T", value))
	}
	return Of(strings.Contains(actual, expected))
}

func (e *evaluator) numeric(m *Match, value any) Ternary {
	expected, ok := toFloat(m.Value)
	if !ok {
		return e.unknown(m, fmt.Sprintf("unsupported expected value type %T", m.Value))
	}
	actual, ok := toFloat(value)
	if !ok {
		return e.unknown(m, fmt.Sprintf("expected number, got %T", value))
	}

	switch m.Kind {
	case MatchGT:
		return Of(actual > expected)
	case MatchGE:
		return Of(actual >= expected)
	case MatchLT:
		return Of(actual < expected)
	default:
		return Of(actual <= expected)
	}
}

func (e *evaluator) version(m *Match, value any) Ternary {
	expectedRaw, ok := m.Value.(string)
	if !ok {
		return e.unknown(m, fmt.Sprintf("unsupported expected value type %T", m.Value))
	}
	actualRaw, ok := value.(string)
	if !ok {
		return e.unknown(m, fmt.Sprintf("expected version string, got %T", value))
	}

	expected, err := semver.NewVersion(expectedRaw)
	if err != nil {
		return e.unknown(m, fmt.Sprintf("unparsable expected version %q", expectedRaw))
	}
	actual, err := semver.NewVersion(actualRaw)
	if err != nil {
		return e.unknown(m, fmt.Sprintf("unparsable version %q", actualRaw))
	}

	cmp := actual.Compare(expected)
	switch m.Kind {
	case MatchSemverEQ:
		return Of(cmp == 0)
	case MatchSemverGT:
		return Of(cmp > 0)
	case MatchSemverGE:
		return Of(cmp >= 0)
	case MatchSemverLT:
		return Of(cmp < 0)
	default:
		return Of(cmp <= 0)
	}
}

// toFloat widens the numeric types a caller can realistically hand in.
// JSON-decoded attributes arrive as float64 already.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
