package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Conceptual-Machines/magda-lsystem-go/composer"
	"github.com/Conceptual-Machines/magda-lsystem-go/config"
	"github.com/Conceptual-Machines/magda-lsystem-go/lily"
	"github.com/Conceptual-Machines/magda-lsystem-go/metrics"
	"github.com/Conceptual-Machines/magda-lsystem-go/sanitizer"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	steps    int
	seed     int64
	word     bool
	out      string
	render   string
	synth    bool
	noCache  bool
	showUsed bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Rewrite the axiom and print the melody as LilyPond",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&opts.steps, "steps", "n", -1, "rewrite passes (default: iterations from the config)")
	f.Int64Var(&opts.seed, "seed", -1, "random seed (default: seed from the config, else random)")
	f.BoolVar(&opts.word, "word", false, "print the derived word instead of LilyPond")
	f.StringVarP(&opts.out, "out", "o", "", "write the LilyPond source to this file")
	f.StringVar(&opts.render, "render", "", "engrave with lilypond using this output name")
	f.BoolVar(&opts.synth, "synth", false, "also synthesize a WAV with fluidsynth (needs --render)")
	f.BoolVar(&opts.noCache, "no-cache", false, "do not use the render cache")
	f.BoolVar(&opts.showUsed, "stats", false, "print the rules used by the last pass")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	if opts.synth && opts.render == "" {
		return fmt.Errorf("--synth needs --render")
	}
	if opts.seed >= 0 {
		seed := uint64(opts.seed)
		cfg.Seed = &seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	session, err := newSession(cfg)
	if err != nil {
		return err
	}
	steps := cfg.Iterations
	if opts.steps >= 0 {
		steps = opts.steps
	}
	session.Step(steps)

	if opts.showUsed {
		for _, u := range session.Statistics() {
			fprintf(cmd, "%3d × %s\n", u.Count, u.Rule)
		}
	}
	if opts.word {
		fprintf(cmd, "%s\n", session.System.State())
		return nil
	}

	source, err := session.Lily()
	if err != nil {
		return err
	}
	if opts.out != "" {
		if err := os.WriteFile(opts.out, []byte(source), 0600); err != nil {
			return fmt.Errorf("write %s: %w", opts.out, err)
		}
	} else if opts.render == "" {
		fprintf(cmd, "%s", source)
	}

	if opts.render == "" {
		return nil
	}
	renderer, closeRenderer, err := newRenderer(cfg, !opts.noCache)
	if err != nil {
		return err
	}
	defer closeRenderer()

	out, err := renderer.Render(cmd.Context(), source, opts.render)
	if err != nil {
		return err
	}
	for _, page := range out.Pages {
		fprintf(cmd, "page  %s\n", page)
	}
	fprintf(cmd, "midi  %s\n", out.MIDI)

	if opts.synth {
		wav, err := renderer.Synthesize(cmd.Context(), out.MIDI, opts.render)
		if err != nil {
			return err
		}
		fprintf(cmd, "audio %s\n", wav)
	}
	return nil
}

// newSession builds a composer session from a validated config
func newSession(c *config.Config) (*composer.Session, error) {
	rules, err := c.RuleSet()
	if err != nil {
		return nil, err
	}
	info, err := c.InterpretationInfo()
	if err != nil {
		return nil, err
	}
	s := composer.NewSession(c.Axiom, rules, info)
	s.Version = c.Render.Version
	s.LineBreaker = sanitizer.LineBreaker{MaxLineNotes: c.Render.LineNotes, MaxLineBars: c.Render.LineBars}
	s.Sentry = metrics.NewSentryMetrics()
	return s, nil
}

// newRenderer configures the external tools and, when asked, the badger render cache
func newRenderer(c *config.Config, cached bool) (*lily.Renderer, func(), error) {
	r, err := lily.NewRenderer(c.Render.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	r.Lilypond = c.Render.Lilypond
	r.Fluidsynth = c.Render.Fluidsynth
	r.SoundFont = c.Render.SoundFont

	if !cached {
		return r, func() {}, nil
	}
	cache, err := lily.OpenCache(filepath.Join(r.CacheDir, "index"))
	if err != nil {
		return nil, nil, err
	}
	r.Cache = cache
	return r, func() { _ = cache.Close() }, nil
}
