package lsystem

import "fmt"

// State is the current derivation: how many passes ran and the resulting word
type State struct {
	Iteration int    `json:"iteration"`
	Word      string `json:"word"`
}

func (s State) String() string {
	return fmt.Sprintf("(iter %d): %s", s.Iteration, s.Word)
}

// LSystem is a context-sensitive stochastic L-system: an axiom, a rewriter and the
// current state
type LSystem struct {
	axiom    string
	rewriter *Rewriter
	state    State
}

// New creates an L-system positioned at its axiom
func New(axiom string, rules *RuleSet) *LSystem {
	return &LSystem{
		axiom:    axiom,
		rewriter: NewRewriter(rules),
		state:    State{Iteration: 0, Word: axiom},
	}
}

// Axiom returns the initial word
func (l *LSystem) Axiom() string {
	return l.axiom
}

// State returns a copy of the current state
func (l *LSystem) State() State {
	return l.state
}

// Rewriter returns the rewriter
func (l *LSystem) Rewriter() *Rewriter {
	return l.rewriter
}

// Rules returns the rule set
func (l *LSystem) Rules() *RuleSet {
	return l.rewriter.Rules()
}

// Step runs n rewrite passes and returns the rules used by each pass
func (l *LSystem) Step(n int) [][]Rule {
	if n <= 0 {
		return nil
	}
	passes := make([][]Rule, 0, n)
	for range n {
		word, used := l.rewriter.Rewrite(l.state.Word)
		l.state.Word = word
		l.state.Iteration++
		passes = append(passes, used)
	}
	return passes
}

// Rollback restores a word saved by the caller before the last Step and decrements the
// iteration count by one
func (l *LSystem) Rollback(previousWord string) error {
	if l.state.Iteration == 0 {
		return ErrNothingToRollback
	}
	l.state.Word = previousWord
	l.state.Iteration--
	return nil
}

// Reset returns to the axiom
func (l *LSystem) Reset() {
	l.state = State{Iteration: 0, Word: l.axiom}
}

func (l *LSystem) String() string {
	return fmt.Sprintf("CSSLSystem: {\n\taxiom = %s\n\trules = %s\n}", l.axiom, l.rewriter.Rules())
}
