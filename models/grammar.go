package models

import "github.com/Conceptual-Machines/magda-lsystem-go/lsystem"

// GrammarProposal is an L-system proposed by an LLM for a textual description
type GrammarProposal struct {
	Description string         `json:"description" yaml:"-"`
	Axiom       string         `json:"axiom" yaml:"axiom"`
	Rules       []lsystem.Rule `json:"rules" yaml:"-"`
	Provider    string         `json:"provider" yaml:"-"`
	Attempts    int            `json:"attempts" yaml:"-"`
	Usage       TokenUsage     `json:"usage" yaml:"-"`
}

// TokenUsage sums the tokens spent over all attempts
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// RuleLines returns the rules in their textual form, one per element
func (p *GrammarProposal) RuleLines() []string {
	lines := make([]string, len(p.Rules))
	for i, r := range p.Rules {
		lines[i] = r.String()
	}
	return lines
}
