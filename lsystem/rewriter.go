package lsystem

import (
	"slices"
	"strings"
)

// MaxLeftSideLen is the widest window the rewriter offers to rule selection
const MaxLeftSideLen = 3

// Rewriter performs one right-to-left derivation pass over a word
type Rewriter struct {
	rules *RuleSet
}

// NewRewriter creates a rewriter over the given rules
func NewRewriter(rules *RuleSet) *Rewriter {
	if rules == nil {
		rules = NewRuleSet(nil)
	}
	return &Rewriter{rules: rules}
}

// Rules returns the rule set used for selection
func (w *Rewriter) Rules() *RuleSet {
	return w.rules
}

// Rewrite derives the next word and returns the rules applied, in left-to-right order.
//
// The window ending at position i holds up to MaxLeftSideLen characters. A selected rule
// consumes len(Left) characters, otherwise the last window character is copied through.
func (w *Rewriter) Rewrite(word string) (string, []Rule) {
	if word == "" {
		return "", nil
	}

	var fragments []string
	var used []Rule
	for i := len(word) - 1; i >= 0; {
		j := max(0, i-MaxLeftSideLen+1)
		window := word[j : i+1]

		if r, ok := w.rules.Select(window); ok {
			fragments = append(fragments, r.Right)
			used = append(used, r)
			i -= max(1, len(r.Left))
			continue
		}
		fragments = append(fragments, window[len(window)-1:])
		i--
	}

	slices.Reverse(fragments)
	slices.Reverse(used)
	return strings.Join(fragments, ""), used
}
