package lsystem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name     string
		rules    []string
		word     string
		expected string
		used     []string
	}{
		{
			name:     "single symbol rules",
			rules:    []string{"a -> 1 % 1", "b -> 2 % 1", "d -> 3 % 1"},
			word:     "abcdef",
			expected: "12c3ef",
			used:     []string{"a", "b", "d"},
		},
		{
			name:     "longest context wins through the window",
			rules:    []string{"def -> 11 % 1", "bcd -> 22 % 1", "bc -> 33 % 1", "ab -> 44 % 1", "a -> 55 % 1"},
			word:     "abcdef",
			expected: "553311",
			used:     []string{"a", "bc", "def"},
		},
		{
			name:     "replacements do not interlace",
			rules:    []string{"2h -> 1 % 1", "efg -> 2 % 1", "def -> 3 % 1", "bcd -> 4 % 1"},
			word:     "abcdefgh",
			expected: "a42h",
			used:     []string{"bcd", "efg"},
		},
		{
			name:     "no rules copies the word",
			rules:    nil,
			word:     "F+F-F",
			expected: "F+F-F",
		},
		{
			name:     "erasing rule",
			rules:    []string{"d -> % 1"},
			word:     "FdFd",
			expected: "FF",
			used:     []string{"d", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := mustRuleSet(t, tt.rules, WithRand(fixedRand(0)))
			word, used := NewRewriter(rs).Rewrite(tt.word)
			assert.Equal(t, tt.expected, word)

			lefts := make([]string, 0, len(used))
			for _, r := range used {
				lefts = append(lefts, r.Left)
			}
			if len(tt.used) == 0 {
				assert.Empty(t, lefts)
			} else {
				assert.Equal(t, tt.used, lefts)
			}
		})
	}
}

func TestRewriteEmptyWord(t *testing.T) {
	rs := mustRuleSet(t, []string{"F -> FF % 1"})
	word, used := NewRewriter(rs).Rewrite("")
	assert.Equal(t, "", word)
	assert.Nil(t, used)
}

func TestRewriteStochastic(t *testing.T) {
	rs := mustRuleSet(t, []string{"F -> A % 1/2", "F -> B % 1/2"},
		WithRand(&sequenceRand{values: []float64{0.1, 0.9, 0.1}}))

	// the pass runs right to left, so the first draw lands on the last F
	word, _ := NewRewriter(rs).Rewrite("FFF")
	assert.Equal(t, "ABA", word)

	rs = mustRuleSet(t, []string{"F -> A % 1/2", "F -> B % 1/2"},
		WithRand(&sequenceRand{values: []float64{0.9, 0.9, 0.1}}))
	word, _ = NewRewriter(rs).Rewrite("FFF")
	require.Len(t, word, 3)
	assert.Equal(t, "ABB", word)
}

func TestRewriteIgnoresEmptyLeftSide(t *testing.T) {
	rs := NewRuleSet([]Rule{NewRule("", "x", 1), NewRule("F", "F+", 1)})
	done := make(chan string, 1)
	go func() {
		word, _ := NewRewriter(rs).Rewrite("F-F")
		done <- word
	}()

	select {
	case word := <-done:
		assert.Equal(t, "F+-F+", word)
	case <-time.After(2 * time.Second):
		t.Fatal("rewrite did not finish")
	}
}

func TestNewRewriterNilRules(t *testing.T) {
	word, used := NewRewriter(nil).Rewrite("abc")
	assert.Equal(t, "abc", word)
	assert.Empty(t, used)
}
