package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Conceptual-Machines/magda-lsystem-go/composer"
	"github.com/Conceptual-Machines/magda-lsystem-go/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

type watchOptions struct {
	metricsAddr string
	render      string
	steps       int
}

func newWatchCmd() *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch <rules-file>",
		Short: "Revalidate and regenerate whenever a rule file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	f.StringVar(&opts.render, "render", "", "re-engrave with lilypond under this output name after every valid change")
	f.IntVarP(&opts.steps, "steps", "n", -1, "rewrite passes (default: iterations from the config)")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, path string, opts *watchOptions) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(reg)

	if opts.metricsAddr != "" {
		srv := &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("📈 Serving metrics on %s/metrics", opts.metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("❌ Metrics server failed: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	var regen *composer.Regenerator
	if opts.render != "" {
		renderer, closeRenderer, err := newRenderer(cfg, true)
		if err != nil {
			return err
		}
		defer closeRenderer()
		regen = composer.NewRegenerator(renderer)
		regen.Metrics = collector
		regen.Sentry = metrics.NewSentryMetrics()
	}

	steps := cfg.Iterations
	if opts.steps >= 0 {
		steps = opts.steps
	}

	watcher := composer.NewRuleFileWatcher(path, func(editor *composer.RuleEditor) {
		fprintf(cmd, "%s", renderReport(editor))
		rules, err := editor.RuleSet()
		if err != nil {
			fprintf(cmd, "%s\n", errorStyle.Render("✗ "+err.Error()))
			return
		}

		session, err := newSession(cfg)
		if err != nil {
			fprintf(cmd, "%s\n", errorStyle.Render("✗ "+err.Error()))
			return
		}
		session.Rules = rules
		session.Metrics = collector
		if err := session.ApplyChanges(); err != nil {
			fprintf(cmd, "%s\n", errorStyle.Render("✗ "+err.Error()))
			return
		}
		session.Step(steps)
		source, err := session.Lily()
		if err != nil {
			fprintf(cmd, "%s\n", errorStyle.Render("✗ "+err.Error()))
			return
		}
		fprintf(cmd, "%s\n", okStyle.Render("✓ "+session.System.State().String()))

		if regen != nil {
			task := regen.Start(ctx, source, opts.render)
			go func() {
				if out, err := task.Wait(ctx); err == nil {
					log.Printf("🖼️  %d pages ready, midi %s", len(out.Pages), out.MIDI)
				}
			}()
		}
		session.ClearDirty()
	})
	return watcher.Run(ctx)
}
