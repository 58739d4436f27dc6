package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/Conceptual-Machines/magda-lsystem-go/interpret"
	"github.com/Conceptual-Machines/magda-lsystem-go/lsystem"
	"github.com/Conceptual-Machines/magda-lsystem-go/notation"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config contains configuration for the generator, the renderer and the LLM agents
type Config struct {
	OpenAIAPIKey string `yaml:"-"` // OpenAI API key for LLM provider
	GeminiAPIKey string `yaml:"-"` // Google Gemini API key (optional)
	SentryDSN    string `yaml:"-"` // Sentry DSN (optional)

	Axiom          string             `yaml:"axiom"`
	Rules          []string           `yaml:"rules"`
	Iterations     int                `yaml:"iterations"`
	Seed           *uint64            `yaml:"seed,omitempty"`
	Interpretation Interpretation     `yaml:"interpretation"`
	Score          notation.ScoreInfo `yaml:"score"`
	Render         Render             `yaml:"render"`
	LLM            LLM                `yaml:"llm"`
}

// Interpretation holds the interpreter settings as written in YAML
type Interpretation struct {
	Key       string `yaml:"key"`
	Scale     string `yaml:"scale"`
	FirstNote string `yaml:"first_note"`
	Duration  int    `yaml:"duration"`
	Tempo     int    `yaml:"tempo"`
	Time      string `yaml:"time"`
	Clef      string `yaml:"clef"`
}

// Render configures the external tools
type Render struct {
	Lilypond   string `yaml:"lilypond"`
	Fluidsynth string `yaml:"fluidsynth"`
	SoundFont  string `yaml:"sound_font"`
	CacheDir   string `yaml:"cache_dir"`
	Version    string `yaml:"version"`
	LineNotes  int    `yaml:"line_notes"`
	LineBars   int    `yaml:"line_bars"`
}

// LLM selects the model used for grammar proposals
type LLM struct {
	Model    string `yaml:"model"`
	Provider string `yaml:"provider"`
}

// Default returns the built-in grammar with C major, 4/4 at 120
func Default() *Config {
	return &Config{
		Axiom:      lsystem.DefaultAxiom,
		Rules:      lsystem.DefaultRules(),
		Iterations: 3,
		Interpretation: Interpretation{
			Key:       "C major",
			Scale:     "basic",
			FirstNote: "C4",
			Duration:  4,
			Tempo:     120,
			Time:      "4/4",
			Clef:      "treble",
		},
		Render: Render{
			Lilypond:   "lilypond",
			Fluidsynth: "fluidsynth",
			Version:    "2.24.0",
			LineNotes:  45,
			LineBars:   7,
		},
		LLM: LLM{Model: "gpt-5.1"},
	}
}

// Load reads a YAML file over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv fills API keys from the environment, reading .env first when present
func (c *Config) LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("⚠️  Warning: Could not load .env file: %v", err)
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		c.SentryDSN = v
	}
}

// Validate checks that the grammar parses and the interpretation settings are usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Axiom) == "" {
		return errors.New("axiom must not be empty")
	}
	if err := interpret.CheckWord(c.Axiom); err != nil {
		return fmt.Errorf("axiom: %w", err)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", c.Iterations)
	}
	rs, err := c.RuleSet()
	if err != nil {
		return err
	}
	if err := rs.Validate(lsystem.DefaultTolerance); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if _, err := c.InterpretationInfo(); err != nil {
		return err
	}
	return nil
}

// RuleSet parses the configured rules, seeded when a seed is set
func (c *Config) RuleSet() (*lsystem.RuleSet, error) {
	var opts []lsystem.RuleSetOption
	if c.Seed != nil {
		opts = append(opts, lsystem.WithSeed(*c.Seed))
	}
	rs, err := lsystem.ParseRuleSet(c.Rules, opts...)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return rs, nil
}

// InterpretationInfo converts the YAML settings to interpreter input
func (c *Config) InterpretationInfo() (interpret.Info, error) {
	in := c.Interpretation
	info := interpret.DefaultInfo()
	info.Score = c.Score

	var err error
	if in.Key != "" {
		if info.Key, err = notation.ParseKeySignature(in.Key); err != nil {
			return info, fmt.Errorf("interpretation.key: %w", err)
		}
	}
	if info.Scale, err = interpret.ParseScaleType(in.Scale); err != nil {
		return info, fmt.Errorf("interpretation.scale: %w", err)
	}
	if in.FirstNote != "" {
		if info.FirstNote.Pitch, err = notation.ParsePitch(in.FirstNote); err != nil {
			return info, fmt.Errorf("interpretation.first_note: %w", err)
		}
	}
	if in.Duration != 0 {
		d := notation.Duration(in.Duration)
		if !d.Valid() {
			return info, fmt.Errorf("interpretation.duration: %d is not a note value", in.Duration)
		}
		info.FirstNote.Duration = d
	}
	if in.Tempo < 0 {
		return info, fmt.Errorf("interpretation.tempo: must be positive, got %d", in.Tempo)
	}
	if in.Tempo > 0 {
		info.Tempo.BPM = in.Tempo
	}
	if in.Time != "" {
		if info.Time, err = notation.ParseTimeSignature(in.Time); err != nil {
			return info, fmt.Errorf("interpretation.time: %w", err)
		}
	}
	if in.Clef != "" {
		if info.Clef, err = notation.ParseClef(in.Clef); err != nil {
			return info, fmt.Errorf("interpretation.clef: %w", err)
		}
	}
	return info, nil
}
