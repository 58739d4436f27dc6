package lsystem

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
)

// DefaultTolerance is the allowed deviation of a context's probability sum from 1
const DefaultTolerance = 1e-3

// Rand is the source of uniform values in [0, 1) used for rule selection
type Rand interface {
	Float64() float64
}

// globalRand draws from the thread-safe package-level generator
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// RuleSetOption configures a RuleSet
type RuleSetOption func(*RuleSet)

// WithRand injects the random source
func WithRand(r Rand) RuleSetOption {
	return func(rs *RuleSet) {
		rs.rand = r
	}
}

// WithSeed uses a deterministic PCG source. The resulting set must not be shared
// between goroutines.
func WithSeed(seed uint64) RuleSetOption {
	return func(rs *RuleSet) {
		rs.rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// RuleSet is an ordered collection of rules with weighted selection
type RuleSet struct {
	rules []Rule
	rand  Rand
}

// NewRuleSet builds a rule set. The rules slice is copied.
func NewRuleSet(rules []Rule, opts ...RuleSetOption) *RuleSet {
	rs := &RuleSet{
		rules: append([]Rule(nil), rules...),
		rand:  globalRand{},
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// ParseRuleSet parses one rule per line and fails on the first bad line
func ParseRuleSet(lines []string, opts ...RuleSetOption) (*RuleSet, error) {
	rules := make([]Rule, 0, len(lines))
	for i, line := range lines {
		r, err := ParseRule(line)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules = append(rules, r)
	}
	return NewRuleSet(rules, opts...), nil
}

// WithOptions returns a copy of the set with the given options applied
func (rs *RuleSet) WithOptions(opts ...RuleSetOption) *RuleSet {
	out := &RuleSet{rules: rs.rules, rand: rs.rand}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

// Select picks one of the rules matching context, weighted by probability.
// Returns false when no rule matches.
func (rs *RuleSet) Select(context string) (Rule, bool) {
	var matches []Rule
	total := 0.0
	for _, r := range rs.rules {
		if r.Matches(context) {
			matches = append(matches, r)
			total += r.Probability
		}
	}
	if len(matches) == 0 {
		return Rule{}, false
	}

	target := rs.rand.Float64() * total
	acc := 0.0
	for _, r := range matches {
		acc += r.Probability
		if acc > target {
			return r, true
		}
	}
	// float rounding can leave acc == target on the last rule
	return matches[len(matches)-1], true
}

// Rules returns a copy of the rules in order
func (rs *RuleSet) Rules() []Rule {
	return append([]Rule(nil), rs.rules...)
}

// Len returns the number of rules
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

func (rs *RuleSet) String() string {
	parts := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		parts[i] = r.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// ContextSum is the total probability of rules rewriting one symbol
type ContextSum struct {
	Char byte
	Sum  float64
	// Diff is Sum - 1
	Diff float64
}

// ContextSums groups rule probabilities by context character, sorted by character
func (rs *RuleSet) ContextSums() []ContextSum {
	sums := map[byte]float64{}
	for _, r := range rs.rules {
		if r.Left == "" {
			continue
		}
		sums[r.ContextChar()] += r.Probability
	}
	out := make([]ContextSum, 0, len(sums))
	for c, s := range sums {
		out = append(out, ContextSum{Char: c, Sum: s, Diff: s - 1})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

// Validate checks that every rule has a left side and that every context character's
// probabilities sum to 1 within tolerance
func (rs *RuleSet) Validate(tolerance float64) error {
	for i, r := range rs.rules {
		if r.Left == "" {
			return fmt.Errorf("rule %d (%s): %w", i+1, r, ErrEmptyLeftSide)
		}
	}
	for _, cs := range rs.ContextSums() {
		if math.Abs(cs.Diff) > tolerance {
			return &ProbabilitySumError{Char: cs.Char, Sum: cs.Sum, Tolerance: tolerance}
		}
	}
	return nil
}
