package lsystem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand always returns the same value
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

// sequenceRand cycles through values
type sequenceRand struct {
	values []float64
	i      int
}

func (s *sequenceRand) Float64() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func mustRuleSet(t *testing.T, lines []string, opts ...RuleSetOption) *RuleSet {
	t.Helper()
	rs, err := ParseRuleSet(lines, opts...)
	require.NoError(t, err)
	return rs
}

func TestSelectByContext(t *testing.T) {
	rs := mustRuleSet(t, []string{"a -> b % 1/2", "a -> c % 1/2", "b -> d % 1"})

	r, ok := rs.Select("ab")
	require.True(t, ok)
	assert.Equal(t, NewRule("b", "d", 1), r)

	_, ok = rs.Select("abc")
	assert.False(t, ok)
}

func TestSelectOnlyMatchingSuffix(t *testing.T) {
	rs := mustRuleSet(t, []string{"a -> x % 1", "b -> y % 1", "d -> z % 1"})

	_, ok := rs.Select("bac")
	assert.False(t, ok)

	r, ok := rs.Select("bad")
	require.True(t, ok)
	assert.Equal(t, "z", r.Right)
}

func TestSelectWeighted(t *testing.T) {
	lines := []string{"F -> AA % 1/4", "+F -> BB % 1/4", "F+F -> CC % 1/4", "F-F -> DD % 1/4"}

	tests := []struct {
		name     string
		context  string
		draw     float64
		expected string
	}{
		{"first of one", "F", 0.9, "AA"},
		{"low draw picks first", "+F", 0.1, "AA"},
		{"high draw picks second", "+F", 0.6, "BB"},
		{"exact boundary goes forward", "+F", 0.5, "BB"},
		{"three candidates low", "F+F", 0.2, "AA"},
		{"three candidates middle", "F+F", 0.5, "BB"},
		{"three candidates high", "F+F", 0.8, "CC"},
		{"minus context", "F-F", 0.9, "DD"},
		{"rounding falls back to last", "F-F", 1.0, "DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := mustRuleSet(t, lines, WithRand(fixedRand(tt.draw)))
			r, ok := rs.Select(tt.context)
			require.True(t, ok)
			assert.Equal(t, tt.expected, r.Right)
		})
	}
}

func TestSelectDistribution(t *testing.T) {
	rs := mustRuleSet(t, []string{"a -> b % 3/4", "a -> c % 1/4"}, WithSeed(42))

	counts := map[string]int{}
	const draws = 20000
	for range draws {
		r, ok := rs.Select("a")
		require.True(t, ok)
		counts[r.Right]++
	}
	assert.InDelta(t, 0.75, float64(counts["b"])/draws, 0.02)
	assert.InDelta(t, 0.25, float64(counts["c"])/draws, 0.02)
}

func TestSeededSetsAreReproducible(t *testing.T) {
	lines := []string{"a -> b % 1/2", "a -> c % 1/2"}
	first := mustRuleSet(t, lines, WithSeed(7))
	second := mustRuleSet(t, lines, WithSeed(7))

	for range 50 {
		r1, _ := first.Select("a")
		r2, _ := second.Select("a")
		assert.Equal(t, r1, r2)
	}
}

func TestParseRuleSetReportsLine(t *testing.T) {
	_, err := ParseRuleSet([]string{"a -> b % 1", "oops"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule 2")

	var parseErr *RuleParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestRuleSetString(t *testing.T) {
	rs := NewRuleSet([]Rule{NewRule("a", "b", 0.5), NewRule("a", "c", 0.5)})
	assert.Equal(t, "{ a -> b % 0.5, a -> c % 0.5 }", rs.String())
	assert.Equal(t, "{  }", NewRuleSet(nil).String())
}

func TestRulesReturnsCopy(t *testing.T) {
	rs := NewRuleSet([]Rule{NewRule("a", "b", 1)})
	rules := rs.Rules()
	rules[0].Right = "z"
	assert.Equal(t, "b", rs.Rules()[0].Right)
	assert.Equal(t, 1, rs.Len())
}

func TestContextSumsAndValidate(t *testing.T) {
	rs := mustRuleSet(t, []string{
		"F -> F % 1/2",
		"F -> FF % 1/4",
		"+F -> F % 1/4",
		"F+ -> F % 0.5",
	})

	sums := rs.ContextSums()
	require.Len(t, sums, 2)
	assert.Equal(t, byte('+'), sums[0].Char)
	assert.InDelta(t, 0.5, sums[0].Sum, 1e-9)
	assert.InDelta(t, -0.5, sums[0].Diff, 1e-9)
	assert.Equal(t, byte('F'), sums[1].Char)
	assert.InDelta(t, 1.0, sums[1].Sum, 1e-9)

	err := rs.Validate(DefaultTolerance)
	var sumErr *ProbabilitySumError
	require.True(t, errors.As(err, &sumErr))
	assert.Equal(t, byte('+'), sumErr.Char)

	ok := mustRuleSet(t, []string{"F -> F % 1/3", "F -> FF % 1/3", "F -> FFF % 0.3333"})
	assert.NoError(t, ok.Validate(DefaultTolerance))
	assert.Error(t, ok.Validate(1e-6))
}

func TestValidateRejectsEmptyLeftSide(t *testing.T) {
	rs := NewRuleSet([]Rule{NewRule("F", "FF", 1), NewRule("", "x", 1)})
	err := rs.Validate(DefaultTolerance)
	require.ErrorIs(t, err, ErrEmptyLeftSide)
	assert.Contains(t, err.Error(), "rule 2")

	_, ok := rs.Select("F")
	assert.True(t, ok)
	_, ok = rs.Select("+")
	assert.False(t, ok)
}
