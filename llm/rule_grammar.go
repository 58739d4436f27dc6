package llm

// RuleGrammarToolName is the custom tool the model calls with a grammar proposal
const RuleGrammarToolName = "lsystem_grammar"

// GetRuleGrammar returns the Lark grammar of a grammar proposal: one axiom line followed by
// one rule per line.
//
//	axiom: F++F
//	F -> F+F % 1/2
//	F -> FF % 0.5
func GetRuleGrammar() string {
	return `
// ---------- Start rule ----------
start: axiom_line (NL rule_line)+ NL?

// ---------- Axiom ----------
axiom_line: "axiom:" SP WORD

// ---------- Rules ----------
rule_line: LEFT SP "->" SP RIGHT? SP "%" SP PROBABILITY

// ---------- Terminals ----------
WORD: /[F+\-d\[\]]+/
LEFT: /[F+\-d\[\]]{1,3}/
RIGHT: /[F+\-d\[\]]+/
PROBABILITY: /[0-9]+\/[1-9][0-9]*/ | /0?\.[0-9]+/ | "1" | "1.0"
SP: " "
NL: "\n"
`
}

// RuleGrammarCFG wraps GetRuleGrammar as a custom tool
func RuleGrammarCFG() *CFGConfig {
	return &CFGConfig{
		ToolName:    RuleGrammarToolName,
		Description: "Emit an L-system: an axiom line followed by weighted rewrite rules, one per line.",
		Grammar:     GetRuleGrammar(),
		Syntax:      "lark",
	}
}
