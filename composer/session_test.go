package composer

import (
	"errors"
	"testing"

	"github.com/Conceptual-Machines/magda-lsystem-go/interpret"
	"github.com/Conceptual-Machines/magda-lsystem-go/lsystem"
	"github.com/Conceptual-Machines/magda-lsystem-go/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRuleSet(t *testing.T, lines ...string) *lsystem.RuleSet {
	t.Helper()
	rs, err := lsystem.ParseRuleSet(lines)
	require.NoError(t, err)
	return rs
}

func TestDefaultSession(t *testing.T) {
	s := DefaultSession()
	assert.Equal(t, lsystem.DefaultAxiom, s.Axiom)
	assert.True(t, s.Dirty)
	assert.Equal(t, lsystem.DefaultAxiom, s.System.State().Word)
	require.NoError(t, s.ApplyChanges())
}

func TestSessionStepAndStatistics(t *testing.T) {
	s := NewSession("F", mustRuleSet(t, "F -> F+F % 1"), interpret.DefaultInfo())
	s.Metrics = metrics.NewCollector(prometheus.NewRegistry())
	s.Sentry = metrics.NewSentryMetrics()
	s.ClearDirty()

	s.Step(1)
	assert.True(t, s.Dirty)
	assert.Equal(t, "F+F", s.System.State().Word)

	s.Step(1)
	state := s.System.State()
	assert.Equal(t, 2, state.Iteration)
	assert.Equal(t, "F+F+F+F", state.Word)

	rule := lsystem.NewRule("F", "F+F", 1)
	assert.Equal(t, []lsystem.Rule{rule, rule}, s.LastUsedRules())
	assert.Equal(t, []RuleUsage{{Rule: rule, Count: 2}}, s.Statistics())

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Iteration)
	assert.Equal(t, 7, history[1].WordLen)
	assert.NotEqual(t, history[0].ID, history[1].ID)
}

func TestSessionRollback(t *testing.T) {
	s := NewSession("F", mustRuleSet(t, "F -> FF % 1"), interpret.DefaultInfo())

	assert.ErrorIs(t, s.Rollback(), lsystem.ErrNothingToRollback)

	s.Step(2)
	require.Equal(t, "FFFF", s.System.State().Word)
	s.ClearDirty()

	require.NoError(t, s.Rollback())
	assert.Equal(t, "FF", s.System.State().Word)
	assert.Equal(t, 1, s.System.State().Iteration)
	assert.True(t, s.Dirty)
	assert.Len(t, s.History(), 1)

	// one level only
	assert.ErrorIs(t, s.Rollback(), lsystem.ErrNothingToRollback)
}

func TestSessionReset(t *testing.T) {
	s := NewSession("F", mustRuleSet(t, "F -> FF % 1"), interpret.DefaultInfo())
	s.Step(3)
	s.ClearDirty()

	s.Reset()
	assert.Equal(t, "F", s.System.State().Word)
	assert.Equal(t, 0, s.System.State().Iteration)
	assert.True(t, s.Dirty)
	assert.Empty(t, s.History())
	assert.ErrorIs(t, s.Rollback(), lsystem.ErrNothingToRollback)
}

func TestSessionApplyChanges(t *testing.T) {
	s := NewSession("F", mustRuleSet(t, "F -> FF % 1"), interpret.DefaultInfo())
	s.Step(1)
	previous := s.System

	s.Rules = mustRuleSet(t, "F -> FF % 1/2")
	err := s.ApplyChanges()
	var sumErr *lsystem.ProbabilitySumError
	require.True(t, errors.As(err, &sumErr))
	assert.Same(t, previous, s.System, "failed apply keeps the old system")

	s.Rules = mustRuleSet(t, "F -> F-F % 1")
	s.Axiom = "F]"
	assert.Error(t, s.ApplyChanges())

	s.Axiom = "F+F"
	s.ClearDirty()
	require.NoError(t, s.ApplyChanges())
	assert.True(t, s.Dirty)
	assert.Equal(t, "F+F", s.System.State().Word)
	assert.Empty(t, s.History())
}

func TestSessionScoreAndLily(t *testing.T) {
	s := NewSession("F+F", mustRuleSet(t, "F -> F % 1"), interpret.DefaultInfo())

	score, err := s.Score()
	require.NoError(t, err)
	assert.Len(t, score.Staves[0].Notes(), 2)

	source, err := s.Lily()
	require.NoError(t, err)
	assert.Contains(t, source, `\version "2.24.0"`)
	assert.Contains(t, source, "c'4 d'4")
}

func TestSessionScoreRejectsBadWord(t *testing.T) {
	s := NewSession("F", mustRuleSet(t, "F -> F] % 1"), interpret.DefaultInfo())
	s.Step(1)

	_, err := s.Score()
	var underflow *interpret.StackUnderflowError
	assert.True(t, errors.As(err, &underflow))

	_, err = s.Lily()
	assert.Error(t, err)
}
