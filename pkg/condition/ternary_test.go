package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flaglab/flagkit/pkg/condition"
)

func TestTernaryAnd(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b condition.Ternary
		want condition.Ternary
	}{
		{"TrueTrue", condition.True, condition.True, condition.True},
		{"TrueFalse", condition.True, condition.False, condition.False},
		{"TrueUnknown", condition.True, condition.Unknown, condition.Unknown},
		{"FalseUnknown", condition.False, condition.Unknown, condition.False},
		{"UnknownUnknown", condition.Unknown, condition.Unknown, condition.Unknown},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.a.And(tc.b))
			assert.Equal(t, tc.want, tc.b.And(tc.a), "And must be commutative")
		})
	}
}

func TestTernaryOr(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b condition.Ternary
		want condition.Ternary
	}{
		{"TrueFalse", condition.True, condition.False, condition.True},
		{"TrueUnknown", condition.True, condition.Unknown, condition.True},
		{"FalseUnknown", condition.False, condition.Unknown, condition.Unknown},
		{"FalseFalse", condition.False, condition.False, condition.False},
		{"UnknownUnknown", condition.Unknown, condition.Unknown, condition.Unknown},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.a.Or(tc.b))
			assert.Equal(t, tc.want, tc.b.Or(tc.a), "Or must be commutative")
		})
	}
}

func TestTernaryNot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, condition.False, condition.True.Not())
	assert.Equal(t, condition.True, condition.False.Not())
	assert.Equal(t, condition.Unknown, condition.Unknown.Not())
}

func TestTernaryString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "true", condition.True.String())
	assert.Equal(t, "false", condition.False.String())
	assert.Equal(t, "unknown", condition.Unknown.String())
}
