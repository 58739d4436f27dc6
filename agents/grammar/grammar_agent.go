package grammar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/magda-lsystem-go/config"
	"github.com/Conceptual-Machines/magda-lsystem-go/interpret"
	"github.com/Conceptual-Machines/magda-lsystem-go/llm"
	"github.com/Conceptual-Machines/magda-lsystem-go/lsystem"
	"github.com/Conceptual-Machines/magda-lsystem-go/metrics"
	"github.com/Conceptual-Machines/magda-lsystem-go/models"
	"github.com/Conceptual-Machines/magda-lsystem-go/prompt"
	"github.com/getsentry/sentry-go"
)

const (
	axiomPrefix = "axiom:"
	// DefaultMaxAttempts is the first answer plus one retry with the error fed back
	DefaultMaxAttempts = 2
)

// ErrEmptyDescription is returned when there is nothing to propose a grammar for
var ErrEmptyDescription = errors.New("description must not be empty")

// Agent asks an LLM for an L-system matching a melody description
type Agent struct {
	provider      llm.Provider
	model         string
	systemPrompt  string
	promptBuilder *prompt.GrammarPromptBuilder
	metrics       *metrics.SentryMetrics
	collector     *metrics.Collector

	// MaxAttempts bounds the number of requests per proposal
	MaxAttempts int
}

// NewAgent creates an agent using the provider chosen by the configured model
func NewAgent(ctx context.Context, cfg *config.Config) (*Agent, error) {
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	provider, err := factory.GetProvider(ctx, cfg.LLM.Model, cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}
	return NewAgentWithProvider(provider, cfg.LLM.Model)
}

// NewAgentWithProvider creates an agent on an existing provider
func NewAgentWithProvider(provider llm.Provider, model string) (*Agent, error) {
	promptBuilder := prompt.NewGrammarPromptBuilder()
	systemPrompt, err := promptBuilder.BuildPrompt()
	if err != nil {
		return nil, fmt.Errorf("build system prompt: %w", err)
	}

	log.Printf("🤖 GRAMMAR AGENT INITIALIZED:")
	log.Printf("   Provider: %s", provider.Name())
	log.Printf("   Model: %s", model)
	log.Printf("   System prompt loaded: %d chars", len(systemPrompt))

	return &Agent{
		provider:      provider,
		model:         model,
		systemPrompt:  systemPrompt,
		promptBuilder: promptBuilder,
		metrics:       metrics.NewSentryMetrics(),
		MaxAttempts:   DefaultMaxAttempts,
	}, nil
}

// WithCollector records proposal outcomes in Prometheus
func (a *Agent) WithCollector(c *metrics.Collector) *Agent {
	a.collector = c
	return a
}

// ProposeRules asks for a grammar, checks that every rule parses and that the probabilities
// sum to one, and retries with the error when they do not.
func (a *Agent) ProposeRules(ctx context.Context, description string) (*models.GrammarProposal, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	startTime := time.Now()
	log.Printf("🤖 GRAMMAR PROPOSAL STARTED: %s", description)

	transaction := sentry.StartTransaction(ctx, "grammar.propose_rules")
	defer transaction.Finish()
	transaction.SetTag("model", a.model)
	transaction.SetTag("provider", a.provider.Name())
	ctx = transaction.Context()

	request := &llm.GenerationRequest{
		Model:         a.model,
		SystemPrompt:  a.systemPrompt,
		InputArray:    []map[string]any{llm.UserMessage(description)},
		ReasoningMode: "low",
		CFGGrammar:    llm.RuleGrammarCFG(),
	}

	maxAttempts := max(a.MaxAttempts, 1)
	proposal := &models.GrammarProposal{Description: description, Provider: a.provider.Name()}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		proposal.Attempts = attempt
		resp, err := a.provider.Generate(ctx, request)
		if err != nil {
			lastErr = err
			break
		}
		proposal.Usage.InputTokens += resp.Usage.InputTokens
		proposal.Usage.OutputTokens += resp.Usage.OutputTokens
		a.metrics.RecordTokenUsage(ctx, a.model, resp.Usage.InputTokens, resp.Usage.OutputTokens)

		axiom, rules, err := ParseProposal(resp.RawOutput)
		if err == nil {
			proposal.Axiom, proposal.Rules = axiom, rules
			lastErr = nil
			break
		}
		lastErr = err
		log.Printf("⚠️  Attempt %d rejected: %v", attempt, err)
		request.InputArray = append(request.InputArray,
			llm.AssistantMessage(resp.RawOutput),
			llm.UserMessage(a.promptBuilder.BuildRetryMessage(err)),
		)
	}

	duration := time.Since(startTime)
	a.metrics.RecordProposal(ctx, a.provider.Name(), proposal.Attempts, duration, lastErr == nil)
	if a.collector != nil {
		a.collector.ObserveProposal(a.provider.Name(), lastErr)
	}
	if lastErr != nil {
		transaction.SetTag("success", "false")
		log.Printf("❌ GRAMMAR PROPOSAL FAILED after %d attempts: %v", proposal.Attempts, lastErr)
		return nil, fmt.Errorf("propose rules: %w", lastErr)
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ GRAMMAR PROPOSAL COMPLETED in %v (%d rules, %d attempts)", duration, len(proposal.Rules), proposal.Attempts)
	return proposal, nil
}

// ParseProposal reads an "axiom: ..." line followed by one rule per line. Every rule must
// parse, the axiom must be interpretable and the probabilities must sum to one.
func ParseProposal(text string) (string, []lsystem.Rule, error) {
	var axiom string
	var ruleLines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, axiomPrefix); ok {
			if axiom != "" {
				return "", nil, errors.New("more than one axiom line")
			}
			axiom = strings.TrimSpace(rest)
			continue
		}
		ruleLines = append(ruleLines, line)
	}

	if axiom == "" {
		return "", nil, errors.New("missing axiom line")
	}
	if err := interpret.CheckWord(axiom); err != nil {
		return "", nil, fmt.Errorf("axiom %q: %w", axiom, err)
	}
	if len(ruleLines) == 0 {
		return "", nil, errors.New("no rules")
	}

	rs, err := lsystem.ParseRuleSet(ruleLines)
	if err != nil {
		return "", nil, err
	}
	if err := rs.Validate(lsystem.DefaultTolerance); err != nil {
		return "", nil, err
	}
	return axiom, rs.Rules(), nil
}
