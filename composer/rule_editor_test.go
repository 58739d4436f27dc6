package composer

import (
	"errors"
	"testing"

	"github.com/Conceptual-Machines/magda-lsystem-go/lsystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleEditorBestEffort(t *testing.T) {
	e := NewRuleEditor("F -> FF % 1/2\n\nF -> \nF -> F+F % 1/2\nF -> F % 2")

	rules := e.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "FF", rules[0].Right)
	assert.Equal(t, "F+F", rules[1].Right)

	diags := e.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, 5, diags[1].Line)
	assert.Contains(t, diags[1].String(), "line 5")

	var numErr *lsystem.RuleNumericParseError
	assert.True(t, errors.As(diags[1].Err, &numErr))

	err := e.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestRuleEditorCheckSums(t *testing.T) {
	e := NewRuleEditor("F -> FF % 1/2\nF -> F % 1/4")
	assert.Empty(t, e.Diagnostics())

	var sumErr *lsystem.ProbabilitySumError
	require.True(t, errors.As(e.Check(), &sumErr))
	assert.Equal(t, byte('F'), sumErr.Char)

	e.SetText("F -> FF % 1/2\nF -> F % 1/2")
	require.NoError(t, e.Check())
	rs, err := e.RuleSet(lsystem.WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
}

func TestRuleEditorSetTextClearsState(t *testing.T) {
	e := NewRuleEditor("garbage")
	require.Len(t, e.Diagnostics(), 1)

	e.SetText("F -> F % 1")
	assert.Empty(t, e.Diagnostics())
	assert.Len(t, e.Rules(), 1)
	assert.Equal(t, "F -> F % 1", e.Text)
}

func TestFromRuleSet(t *testing.T) {
	rs, err := lsystem.ParseRuleSet(lsystem.DefaultRules())
	require.NoError(t, err)

	e := FromRuleSet(rs)
	assert.Empty(t, e.Diagnostics())
	assert.Equal(t, rs.Rules(), e.Rules())
	assert.NoError(t, e.Check())
}
