package lsystem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Rule
	}{
		{"fraction without spaces", "a->b%1/2", Rule{"a", "b", 0.5}},
		{"fraction with spaces", "abc -> def % 1/4", Rule{"abc", "def", 0.25}},
		{"decimal", "abc -> def % 0.125", Rule{"abc", "def", 0.125}},
		{"whitespace inside sides", " F +F ->\t[Fd+F]\n % 1 / 40 ", Rule{"F+F", "[Fd+F]", 1.0 / 40}},
		{"erasing production", "F -> % 1", Rule{"F", "", 1}},
		{"digits", "2h -> 1 % 1", Rule{"2h", "1", 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRule(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r)
		})
	}
}

func TestParseRuleErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		numeric bool
	}{
		{"missing arrow", "a b % 1", false},
		{"missing probability", "a -> b", false},
		{"empty left side", "-> b % 1", false},
		{"foreign symbol", "a -> ? % 1", false},
		{"bad nominator", "a -> b % x/2", true},
		{"bad denominator", "a -> b % 1/y", true},
		{"zero denominator", "a -> b % 1/0", true},
		{"empty decimal", "a -> b %", true},
		{"malformed decimal", "a -> b % 0.5.5", true},
		{"probability above one", "a -> b % 2", true},
		{"zero probability", "a -> b % 0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRule(tt.input)
			require.Error(t, err)

			var numErr *RuleNumericParseError
			var parseErr *RuleParseError
			if tt.numeric {
				require.True(t, errors.As(err, &numErr), "expected numeric error, got %T", err)
				assert.Equal(t, tt.input, numErr.Text)
			} else {
				require.True(t, errors.As(err, &parseErr), "expected parse error, got %T", err)
				assert.Equal(t, tt.input, parseErr.Text)
			}
		})
	}
}

func TestRuleMatches(t *testing.T) {
	r := NewRule("ab", "cd", 1)
	assert.True(t, r.Matches("ab"))
	assert.True(t, r.Matches("12345ab"))
	assert.False(t, r.Matches("b"))
	assert.False(t, r.Matches("ab1234b"))
	assert.Equal(t, byte('b'), r.ContextChar())

	assert.False(t, NewRule("", "x", 1).Matches("F"))
	assert.False(t, NewRule("", "x", 1).Matches(""))
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "F+F -> [Fd+F] % 0.025", NewRule("F+F", "[Fd+F]", 0.025).String())
	assert.Equal(t, "a -> b % 1", NewRule("a", "b", 1).String())

	r, err := ParseRule(NewRule("ab", "c", 0.5).String())
	require.NoError(t, err)
	assert.Equal(t, NewRule("ab", "c", 0.5), r)
}
