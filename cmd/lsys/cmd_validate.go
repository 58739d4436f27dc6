package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Conceptual-Machines/magda-lsystem-go/composer"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [rules-file]",
		Short: "Check rule syntax and probability sums",
		Long: `validate parses the rules of the config, or of a plain text file with one rule per
line, and prints the probability sum of every rewritten symbol.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := loadEditor(args)
			if err != nil {
				return err
			}
			fprintf(cmd, "%s", renderReport(editor))

			if err := editor.Check(); err != nil {
				return fmt.Errorf("rules are not usable: %w", err)
			}
			if len(args) == 0 {
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid config: %w", err)
				}
			}
			fprintf(cmd, "%s\n", okStyle.Render("✓ rules are valid"))
			return nil
		},
	}
}

func loadEditor(args []string) (*composer.RuleEditor, error) {
	if len(args) == 0 {
		return composer.NewRuleEditor(strings.Join(cfg.Rules, "\n")), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return composer.NewRuleEditor(string(data)), nil
}
