package lsystem

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	fractionRulePattern = regexp.MustCompile(`^(.*?)->(.*?)%(.*?)/(.*?)$`)
	decimalRulePattern  = regexp.MustCompile(`^(.*?)->(.*?)%([\d\.]*?)$`)
)

// Rule is a context-sensitive stochastic production "Left -> Right % Probability".
// The last character of Left is the symbol being rewritten, the characters before it are
// its left context.
type Rule struct {
	Left        string  `json:"left" yaml:"left"`
	Right       string  `json:"right" yaml:"right"`
	Probability float64 `json:"probability" yaml:"probability"`
}

// NewRule builds a rule without validation
func NewRule(left, right string, p float64) Rule {
	return Rule{Left: left, Right: right, Probability: p}
}

// ParseRule parses "ab -> c % 1/2" or "ab -> c % 0.5". Whitespace anywhere is ignored.
func ParseRule(text string) (Rule, error) {
	compact := stripWhitespace(text)

	var left, right string
	var p float64
	if m := fractionRulePattern.FindStringSubmatch(compact); m != nil {
		left, right = m[1], m[2]
		nom, err := strconv.Atoi(m[3])
		if err != nil {
			return Rule{}, &RuleNumericParseError{Text: text, Part: m[3], Err: err}
		}
		denom, err := strconv.Atoi(m[4])
		if err != nil {
			return Rule{}, &RuleNumericParseError{Text: text, Part: m[4], Err: err}
		}
		if denom == 0 {
			return Rule{}, &RuleNumericParseError{Text: text, Part: m[3] + "/" + m[4], Err: errors.New("zero denominator")}
		}
		p = float64(nom) / float64(denom)
	} else if m := decimalRulePattern.FindStringSubmatch(compact); m != nil {
		left, right = m[1], m[2]
		v, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return Rule{}, &RuleNumericParseError{Text: text, Part: m[3], Err: err}
		}
		p = v
	} else {
		return Rule{}, &RuleParseError{Text: text}
	}

	if left == "" {
		return Rule{}, &RuleParseError{Text: text, Reason: "left side is empty"}
	}
	if c, ok := firstForeignSymbol(left + right); ok {
		return Rule{}, &RuleParseError{Text: text, Reason: fmt.Sprintf("symbol %q is not allowed", c)}
	}
	if p <= 0 || p > 1 {
		return Rule{}, &RuleNumericParseError{Text: text, Part: strconv.FormatFloat(p, 'g', -1, 64), Err: errors.New("probability must be in (0, 1]")}
	}

	return Rule{Left: left, Right: right, Probability: p}, nil
}

// Matches reports whether candidate ends with the rule's left side. A rule with an
// empty left side matches nothing.
func (r Rule) Matches(candidate string) bool {
	return r.Left != "" && strings.HasSuffix(candidate, r.Left)
}

// ContextChar returns the symbol the rule rewrites
func (r Rule) ContextChar() byte {
	return r.Left[len(r.Left)-1]
}

func (r Rule) String() string {
	return fmt.Sprintf("%s -> %s %% %s", r.Left, r.Right, strconv.FormatFloat(r.Probability, 'g', -1, 64))
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// isSymbol reports whether c belongs to the rule alphabet
func isSymbol(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '+', c == '-', c == '[', c == ']':
		return true
	}
	return false
}

func firstForeignSymbol(s string) (rune, bool) {
	for _, c := range s {
		if !isSymbol(c) {
			return c, true
		}
	}
	return 0, false
}
