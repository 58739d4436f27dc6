package composer

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/Conceptual-Machines/magda-lsystem-go/interpret"
	"github.com/Conceptual-Machines/magda-lsystem-go/lily"
	"github.com/Conceptual-Machines/magda-lsystem-go/lsystem"
	"github.com/Conceptual-Machines/magda-lsystem-go/sanitizer"
	"golang.org/x/sync/errgroup"
)

// VariationConfig describes a batch of derivations of one grammar
type VariationConfig struct {
	Axiom string
	Rules []lsystem.Rule
	Steps int
	// BaseSeed seeds variation i with BaseSeed+i
	BaseSeed    uint64
	Info        interpret.Info
	Version     string
	LineBreaker sanitizer.LineBreaker
	// Concurrency limits the goroutines; zero means GOMAXPROCS
	Concurrency int
}

// Variation is one derivation of a batch
type Variation struct {
	Index int
	Seed  uint64
	Word  string
	Lily  string
}

// GenerateVariations derives n words from the same grammar, each with its own seed, and
// engraves them. The result is ordered by index and reproducible for a given BaseSeed.
func GenerateVariations(ctx context.Context, cfg VariationConfig, n int) ([]Variation, error) {
	if n <= 0 {
		return nil, nil
	}
	if cfg.Steps < 0 {
		return nil, fmt.Errorf("steps must not be negative, got %d", cfg.Steps)
	}
	if err := lsystem.NewRuleSet(cfg.Rules).Validate(lsystem.DefaultTolerance); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if err := interpret.CheckWord(cfg.Axiom); err != nil {
		return nil, fmt.Errorf("axiom: %w", err)
	}
	version := cfg.Version
	if version == "" {
		version = lily.DefaultVersion
	}
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	out := make([]Variation, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range n {
		g.Go(func() error {
			seed := cfg.BaseSeed + uint64(i)
			v, err := deriveVariation(gctx, cfg, seed, version)
			if err != nil {
				return fmt.Errorf("variation %d: %w", i, err)
			}
			v.Index = i
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func deriveVariation(ctx context.Context, cfg VariationConfig, seed uint64, version string) (Variation, error) {
	system := lsystem.New(cfg.Axiom, lsystem.NewRuleSet(cfg.Rules, lsystem.WithSeed(seed)))
	for range cfg.Steps {
		if err := ctx.Err(); err != nil {
			return Variation{}, err
		}
		system.Step(1)
	}
	word := system.State().Word

	score, err := interpret.New(cfg.Info).TranslateSafe(word)
	if err != nil {
		var underflow *interpret.StackUnderflowError
		if errors.As(err, &underflow) {
			return Variation{}, fmt.Errorf("rules produced an unbalanced word: %w", err)
		}
		return Variation{}, err
	}
	if err := (sanitizer.ScoreSanitizer{}).Sanitize(score); err != nil {
		return Variation{}, err
	}
	doc := lily.FromScore(score, version)
	if err := cfg.LineBreaker.Sanitize(doc); err != nil {
		return Variation{}, err
	}
	return Variation{Seed: seed, Word: word, Lily: doc.String()}, nil
}
