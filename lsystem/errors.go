package lsystem

import (
	"errors"
	"fmt"
)

// ErrNothingToRollback is returned by Rollback at iteration zero
var ErrNothingToRollback = errors.New("nothing to rollback: l-system is at iteration 0")

// ErrEmptyLeftSide is returned by Validate for a rule that rewrites nothing
var ErrEmptyLeftSide = errors.New("rule has an empty left side")

// RuleParseError means the text is not in the "left -> right % p" form
type RuleParseError struct {
	Text   string
	Reason string
}

func (e *RuleParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("failed to parse rule %q: %s", e.Text, e.Reason)
	}
	return fmt.Sprintf("failed to parse rule %q: expected \"left -> right %% p\" or \"left -> right %% n/d\"", e.Text)
}

// RuleNumericParseError means the rule shape is right but its probability is not
type RuleNumericParseError struct {
	Text string
	Part string
	Err  error
}

func (e *RuleNumericParseError) Error() string {
	return fmt.Sprintf("invalid probability %q in rule %q: %v", e.Part, e.Text, e.Err)
}

func (e *RuleNumericParseError) Unwrap() error {
	return e.Err
}

// ProbabilitySumError reports a context character whose rule probabilities do not sum to 1
type ProbabilitySumError struct {
	Char      byte
	Sum       float64
	Tolerance float64
}

func (e *ProbabilitySumError) Error() string {
	return fmt.Sprintf("probabilities of rules ending with %q sum to %.4f, expected 1 (±%g)", e.Char, e.Sum, e.Tolerance)
}
