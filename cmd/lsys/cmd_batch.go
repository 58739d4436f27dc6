package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/Conceptual-Machines/magda-lsystem-go/composer"
	"github.com/Conceptual-Machines/magda-lsystem-go/sanitizer"
	"github.com/spf13/cobra"
)

type batchOptions struct {
	count       int
	steps       int
	seed        int64
	outDir      string
	concurrency int
}

func newBatchCmd() *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Derive several seeded variations of the grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&opts.count, "count", "k", 4, "number of variations")
	f.IntVarP(&opts.steps, "steps", "n", -1, "rewrite passes (default: iterations from the config)")
	f.Int64Var(&opts.seed, "seed", -1, "seed of the first variation (default: seed from the config, else random)")
	f.StringVarP(&opts.outDir, "out-dir", "o", "", "write variation-NN.ly files to this directory")
	f.IntVar(&opts.concurrency, "jobs", 0, "parallel derivations (default: GOMAXPROCS)")
	return cmd
}

func runBatch(cmd *cobra.Command, opts *batchOptions) error {
	if opts.count <= 0 {
		return fmt.Errorf("--count must be positive, got %d", opts.count)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	rules, err := cfg.RuleSet()
	if err != nil {
		return err
	}
	info, err := cfg.InterpretationInfo()
	if err != nil {
		return err
	}

	var seed uint64
	switch {
	case opts.seed >= 0:
		seed = uint64(opts.seed)
	case cfg.Seed != nil:
		seed = *cfg.Seed
	default:
		seed = rand.Uint64()
	}
	steps := cfg.Iterations
	if opts.steps >= 0 {
		steps = opts.steps
	}

	variations, err := composer.GenerateVariations(cmd.Context(), composer.VariationConfig{
		Axiom:       cfg.Axiom,
		Rules:       rules.Rules(),
		Steps:       steps,
		BaseSeed:    seed,
		Info:        info,
		Version:     cfg.Render.Version,
		LineBreaker: sanitizer.LineBreaker{MaxLineNotes: cfg.Render.LineNotes, MaxLineBars: cfg.Render.LineBars},
		Concurrency: opts.concurrency,
	}, opts.count)
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0750); err != nil {
			return fmt.Errorf("create %s: %w", opts.outDir, err)
		}
	}

	rows := [][]string{{"#", "seed", "length", "file"}}
	for _, v := range variations {
		file := "-"
		if opts.outDir != "" {
			file = filepath.Join(opts.outDir, fmt.Sprintf("variation-%02d.ly", v.Index))
			if err := os.WriteFile(file, []byte(v.Lily), 0600); err != nil {
				return fmt.Errorf("write %s: %w", file, err)
			}
		}
		rows = append(rows, []string{fmt.Sprint(v.Index), fmt.Sprint(v.Seed), fmt.Sprint(len(v.Word)), file})
	}
	fprintf(cmd, "%s", renderTable(rows))
	return nil
}
