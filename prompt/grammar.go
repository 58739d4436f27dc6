package prompt

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-lsystem-go/interpret"
	"github.com/Conceptual-Machines/magda-lsystem-go/lsystem"
)

// GrammarPromptBuilder builds prompts for the grammar agent
type GrammarPromptBuilder struct {
	// Example is shown to the model as a well-formed proposal
	ExampleAxiom string
	ExampleRules []string
}

// NewGrammarPromptBuilder creates a prompt builder using the built-in grammar as example
func NewGrammarPromptBuilder() *GrammarPromptBuilder {
	return &GrammarPromptBuilder{
		ExampleAxiom: lsystem.DefaultAxiom,
		ExampleRules: lsystem.DefaultRules(),
	}
}

// BuildPrompt builds the complete system prompt
func (b *GrammarPromptBuilder) BuildPrompt() (string, error) {
	if b.ExampleAxiom == "" || len(b.ExampleRules) == 0 {
		return "", fmt.Errorf("prompt example must have an axiom and at least one rule")
	}
	sections := []string{
		b.getSystemInstructions(),
		b.getAlphabetReference(),
		b.getRuleSyntax(),
		b.getOutputFormatInstructions(),
	}
	return strings.Join(sections, "\n\n"), nil
}

// BuildRetryMessage asks the model to fix the previous answer
func (b *GrammarPromptBuilder) BuildRetryMessage(err error) string {
	return fmt.Sprintf("Your previous answer was rejected: %v\n"+
		"Answer again with the complete corrected grammar in the same format.", err)
}

func (b *GrammarPromptBuilder) getSystemInstructions() string {
	return `You design stochastic context-sensitive L-systems whose words are read as melodies.

Given a description of a melody (its contour, density, repetition, ornamentation), propose an
axiom and a set of weighted rewrite rules that, after a few rewrite passes, produce words with
that character. Prefer small grammars: 3 to 16 rules.`
}

func (b *GrammarPromptBuilder) getAlphabetReference() string {
	var sb strings.Builder
	sb.WriteString("## Alphabet\n\n")
	sb.WriteString("Words may only contain the symbols `" + interpret.Alphabet + "`:\n\n")
	sb.WriteString("- `F` writes the current note\n")
	sb.WriteString("- `+` moves the current note one scale degree up\n")
	sb.WriteString("- `-` moves the current note one scale degree down\n")
	sb.WriteString("- `d` halves the duration of the current note\n")
	sb.WriteString("- `[` remembers the current note, `]` returns to the last remembered note\n\n")
	sb.WriteString("Every `]` must close an earlier `[` once the rules have been applied.")
	return sb.String()
}

func (b *GrammarPromptBuilder) getRuleSyntax() string {
	return fmt.Sprintf(`## Rule Syntax

A rule is written `+"`LEFT -> RIGHT %% PROBABILITY`"+`:

- LEFT is 1 to %d symbols. A rule applies where the word ends with LEFT while it is scanned
  right to left; the last symbol of LEFT is the symbol being rewritten.
- RIGHT is the replacement and may be empty.
- PROBABILITY is a fraction like 1/4 or a decimal like 0.25, greater than 0 and at most 1.
- For every last symbol of LEFT, the probabilities of the rules ending with it must sum to 1.`,
		lsystem.MaxLeftSideLen)
}

func (b *GrammarPromptBuilder) getOutputFormatInstructions() string {
	return "## Output Format\n\n" +
		"Answer with the axiom on the first line, prefixed by `axiom: `, followed by one rule per line. " +
		"Do not add comments, numbering or any other text. Example:\n\n" +
		"axiom: " + b.ExampleAxiom + "\n" + strings.Join(b.ExampleRules, "\n")
}
