package composer

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-lsystem-go/lsystem"
)

// Diagnostic reports a line of the editor text that is not a valid rule
type Diagnostic struct {
	Line int // 1-based
	Text string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %v", d.Line, d.Err)
}

// RuleEditor holds rule text being typed by a user, one rule per line. Parsing is best
// effort so the rules stay usable while a line is half written.
type RuleEditor struct {
	Text string

	rules       []lsystem.Rule
	diagnostics []Diagnostic
}

// NewRuleEditor parses text
func NewRuleEditor(text string) *RuleEditor {
	e := &RuleEditor{}
	e.SetText(text)
	return e
}

// FromRuleSet fills the editor with the rules of rs
func FromRuleSet(rs *lsystem.RuleSet) *RuleEditor {
	var b strings.Builder
	for i, r := range rs.Rules() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.String())
	}
	return NewRuleEditor(b.String())
}

// SetText replaces the text and reparses it, skipping the lines that do not parse
func (e *RuleEditor) SetText(text string) {
	e.Text = text
	e.rules = nil
	e.diagnostics = nil
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		r, err := lsystem.ParseRule(line)
		if err != nil {
			e.diagnostics = append(e.diagnostics, Diagnostic{Line: i + 1, Text: line, Err: err})
			continue
		}
		e.rules = append(e.rules, r)
	}
}

// Rules returns the rules parsed from the valid lines
func (e *RuleEditor) Rules() []lsystem.Rule {
	return append([]lsystem.Rule(nil), e.rules...)
}

// Diagnostics returns the lines that failed to parse, in line order
func (e *RuleEditor) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), e.diagnostics...)
}

// Check parses every line strictly and validates the probability sums
func (e *RuleEditor) Check() error {
	_, err := e.RuleSet()
	return err
}

// RuleSet is Check returning the resulting rule set
func (e *RuleEditor) RuleSet(opts ...lsystem.RuleSetOption) (*lsystem.RuleSet, error) {
	if len(e.diagnostics) > 0 {
		d := e.diagnostics[0]
		return nil, fmt.Errorf("line %d: %w", d.Line, d.Err)
	}
	rs := lsystem.NewRuleSet(e.rules, opts...)
	if err := rs.Validate(lsystem.DefaultTolerance); err != nil {
		return nil, err
	}
	return rs, nil
}
