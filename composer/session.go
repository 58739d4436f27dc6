package composer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/magda-lsystem-go/interpret"
	"github.com/Conceptual-Machines/magda-lsystem-go/lily"
	"github.com/Conceptual-Machines/magda-lsystem-go/lsystem"
	"github.com/Conceptual-Machines/magda-lsystem-go/metrics"
	"github.com/Conceptual-Machines/magda-lsystem-go/notation"
	"github.com/Conceptual-Machines/magda-lsystem-go/sanitizer"
	"github.com/google/uuid"
)

// StepRecord describes one rewrite pass performed through a Session
type StepRecord struct {
	ID        uuid.UUID      `json:"id"`
	Iteration int            `json:"iteration"`
	WordLen   int            `json:"word_len"`
	Used      []lsystem.Rule `json:"used"`
	At        time.Time      `json:"at"`
}

// RuleUsage counts how often a rule fired during the last pass
type RuleUsage struct {
	Rule  lsystem.Rule
	Count int
}

// Session is the editing state behind an interactive composer: the rules and axiom being
// edited, the interpretation settings and the L-system built from them.
//
// Rules and Axiom may be changed freely; they take effect on ApplyChanges. Dirty is set
// whenever the current word changes and cleared by the caller once it has re-rendered.
type Session struct {
	Rules  *lsystem.RuleSet
	Axiom  string
	Info   interpret.Info
	System *lsystem.LSystem
	Dirty  bool

	// Version is the LilyPond version written by Lily
	Version     string
	LineBreaker sanitizer.LineBreaker

	// Metrics and Sentry are optional
	Metrics *metrics.Collector
	Sentry  *metrics.SentryMetrics

	history      []StepRecord
	previousWord string
	canRollback  bool
}

// NewSession builds the L-system for axiom and rules. The session starts dirty so the first
// render happens without an explicit change.
func NewSession(axiom string, rules *lsystem.RuleSet, info interpret.Info) *Session {
	if rules == nil {
		rules = lsystem.NewRuleSet(nil)
	}
	return &Session{
		Rules:       rules,
		Axiom:       axiom,
		Info:        info,
		System:      lsystem.New(axiom, rules),
		Dirty:       true,
		Version:     lily.DefaultVersion,
		LineBreaker: sanitizer.NewLineBreaker(),
	}
}

// DefaultSession uses the built-in grammar and interpretation
func DefaultSession() *Session {
	rules, err := lsystem.ParseRuleSet(lsystem.DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("built-in grammar does not parse: %v", err))
	}
	return NewSession(lsystem.DefaultAxiom, rules, interpret.DefaultInfo())
}

// ApplyChanges validates the edited rules and axiom and rebuilds the L-system from them.
// On error the previous L-system is kept.
func (s *Session) ApplyChanges() error {
	if s.Rules == nil {
		s.Rules = lsystem.NewRuleSet(nil)
	}
	if err := s.Rules.Validate(lsystem.DefaultTolerance); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if err := interpret.CheckWord(s.Axiom); err != nil {
		return fmt.Errorf("axiom: %w", err)
	}

	s.System = lsystem.New(s.Axiom, s.Rules)
	s.history = nil
	s.canRollback = false
	s.Dirty = true
	log.Printf("✅ Applied %d rules with axiom %q", s.Rules.Len(), s.Axiom)
	return nil
}

// Reset returns the L-system to its axiom
func (s *Session) Reset() {
	s.System.Reset()
	s.history = nil
	s.canRollback = false
	s.Dirty = true
}

// Step runs n passes and records each of them. Only the last pass can be rolled back.
func (s *Session) Step(n int) {
	if n <= 0 {
		return
	}
	start := time.Now()
	for range n {
		s.previousWord = s.System.State().Word
		used := s.System.Step(1)[0]
		state := s.System.State()
		s.history = append(s.history, StepRecord{
			ID:        uuid.New(),
			Iteration: state.Iteration,
			WordLen:   len(state.Word),
			Used:      used,
			At:        time.Now(),
		})
		if s.Metrics != nil {
			chars := make([]byte, len(used))
			for i, r := range used {
				chars[i] = r.ContextChar()
			}
			s.Metrics.ObserveStep(chars, len(state.Word))
		}
	}
	s.canRollback = true
	s.Dirty = true

	state := s.System.State()
	if s.Sentry != nil {
		s.Sentry.RecordGeneration(context.Background(), n, state.Iteration, len(state.Word), time.Since(start))
	}
}

// Rollback undoes the last pass. It can be used once per Step.
func (s *Session) Rollback() error {
	if !s.canRollback {
		return lsystem.ErrNothingToRollback
	}
	if err := s.System.Rollback(s.previousWord); err != nil {
		return err
	}
	if len(s.history) > 0 {
		s.history = s.history[:len(s.history)-1]
	}
	s.canRollback = false
	s.Dirty = true
	return nil
}

// History returns the passes recorded since the last reset, oldest first
func (s *Session) History() []StepRecord {
	return append([]StepRecord(nil), s.history...)
}

// LastUsedRules returns the rules applied by the last pass, left to right
func (s *Session) LastUsedRules() []lsystem.Rule {
	if len(s.history) == 0 {
		return nil
	}
	return append([]lsystem.Rule(nil), s.history[len(s.history)-1].Used...)
}

// Statistics counts the rules applied by the last pass, in rule set order
func (s *Session) Statistics() []RuleUsage {
	used := s.LastUsedRules()
	if len(used) == 0 {
		return nil
	}
	counts := make(map[lsystem.Rule]int, len(used))
	for _, r := range used {
		counts[r]++
	}

	stats := make([]RuleUsage, 0, len(counts))
	for _, r := range s.System.Rules().Rules() {
		if c, ok := counts[r]; ok {
			stats = append(stats, RuleUsage{Rule: r, Count: c})
			delete(counts, r)
		}
	}
	return stats
}

// Score interprets the current word and fixes its spelling for the key
func (s *Session) Score() (*notation.Score, error) {
	word := s.System.State().Word
	score, err := interpret.New(s.Info).TranslateSafe(word)
	if err != nil {
		return nil, fmt.Errorf("interpret word: %w", err)
	}
	if err := (sanitizer.ScoreSanitizer{}).Sanitize(score); err != nil {
		return nil, fmt.Errorf("sanitize score: %w", err)
	}
	return score, nil
}

// Lily returns the LilyPond source for the current word
func (s *Session) Lily() (string, error) {
	score, err := s.Score()
	if err != nil {
		return "", err
	}
	doc := lily.FromScore(score, s.Version)
	if err := s.LineBreaker.Sanitize(doc); err != nil {
		return "", fmt.Errorf("break lines: %w", err)
	}
	return doc.String(), nil
}

// ClearDirty marks the current word as rendered
func (s *Session) ClearDirty() {
	s.Dirty = false
}
