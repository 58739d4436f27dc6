package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Conceptual-Machines/magda-lsystem-go/agents/grammar"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type proposeOptions struct {
	model    string
	provider string
	write    string
}

func newProposeCmd() *cobra.Command {
	opts := &proposeOptions{}
	cmd := &cobra.Command{
		Use:   "propose <description>",
		Short: "Ask an LLM for a grammar matching a melody description",
		Example: `  lsys propose "a slow descending line that keeps returning to its first note"
  lsys propose --model gemini-2.5-flash --write lsys.yaml "busy ornamented runs"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPropose(cmd, strings.Join(args, " "), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.model, "model", "", "model name (default: llm.model from the config)")
	f.StringVar(&opts.provider, "provider", "", "openai or gemini (default: inferred from the model)")
	f.StringVarP(&opts.write, "write", "w", "", "save the config with the proposed grammar to this YAML file")
	return cmd
}

func runPropose(cmd *cobra.Command, description string, opts *proposeOptions) error {
	if opts.model != "" {
		cfg.LLM.Model = opts.model
	}
	if opts.provider != "" {
		cfg.LLM.Provider = opts.provider
	}

	agent, err := grammar.NewAgent(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	proposal, err := agent.ProposeRules(cmd.Context(), description)
	if err != nil {
		return err
	}

	fprintf(cmd, "%s\n", titleStyle.Render("axiom: "+proposal.Axiom))
	for _, line := range proposal.RuleLines() {
		fprintf(cmd, "%s\n", line)
	}
	fprintf(cmd, "%s\n", mutedStyle.Render(fmt.Sprintf("%s, %d attempts, %d in / %d out tokens",
		proposal.Provider, proposal.Attempts, proposal.Usage.InputTokens, proposal.Usage.OutputTokens)))

	if opts.write == "" {
		return nil
	}
	cfg.Axiom = proposal.Axiom
	cfg.Rules = proposal.RuleLines()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(opts.write, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", opts.write, err)
	}
	fprintf(cmd, "%s\n", okStyle.Render("✓ saved to "+opts.write))
	return nil
}
