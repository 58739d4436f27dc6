package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/Conceptual-Machines/magda-lsystem-go/config"
	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "lsys.yaml"

var (
	configPath string
	quiet      bool

	// cfg is loaded before every command runs
	cfg *config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lsys",
		Short: "Compose melodies with stochastic context-sensitive L-systems",
		Long: `lsys rewrites an axiom with weighted context-sensitive rules, reads the resulting
word as a melody and engraves it with LilyPond.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if quiet {
				log.SetOutput(io.Discard)
			}
			loaded, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			initSentry(cfg.SentryDSN)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default ./"+defaultConfigPath+" when present)")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress logging")

	root.AddCommand(
		newGenerateCmd(),
		newValidateCmd(),
		newWatchCmd(),
		newBatchCmd(),
		newProposeCmd(),
		newAudioInfoCmd(),
	)
	return root
}

func main() {
	err := newRootCmd().Execute()
	sentry.Flush(2 * time.Second)
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads path, or the default file when path is empty and the file exists
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	c, err := config.Load(path)
	switch {
	case err == nil:
		log.Printf("✅ Configuration loaded from %s", path)
	case !explicit && errors.Is(err, fs.ErrNotExist):
		c = config.Default()
	default:
		return nil, err
	}

	c.LoadEnv()
	return c, nil
}

func initSentry(dsn string) {
	if dsn == "" {
		return
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	}); err != nil {
		log.Printf("⚠️  Sentry initialization failed: %v", err)
		return
	}
	log.Printf("📡 Sentry enabled")
}

func fprintf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
