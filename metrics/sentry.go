package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics records generation, rendering and proposal spans in Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // spans are dropped by the SDK when Sentry is not initialized
	}
}

// RecordTokenUsage records LLM token usage on the current transaction
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens int) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("llm.model", model)
		transaction.SetData("llm.input_tokens", inputTokens)
		transaction.SetData("llm.output_tokens", outputTokens)
	}

	span := sentry.StartSpan(ctx, "llm.token_usage")
	defer span.Finish()

	span.SetTag("model", model)
	span.SetTag("total_tokens", fmt.Sprintf("%d", inputTokens+outputTokens))
	span.SetData("input_tokens", inputTokens)
	span.SetData("output_tokens", outputTokens)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Token Usage: %s", model)
}

// RecordGeneration records a batch of rewrite passes
func (m *SentryMetrics) RecordGeneration(ctx context.Context, steps, iteration, wordLen int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "lsystem.step")
	defer span.Finish()

	span.SetTag("steps", fmt.Sprintf("%d", steps))
	span.SetData("iteration", iteration)
	span.SetData("word_length", wordLen)
	span.SetData("duration_ms", duration.Milliseconds())

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("L-system step x%d -> iteration %d", steps, iteration)
}

// RecordRender records a lilypond or fluidsynth run
func (m *SentryMetrics) RecordRender(ctx context.Context, tool string, duration time.Duration, cached bool, err error) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "render."+tool)
	defer span.Finish()

	span.SetTag("cached", fmt.Sprintf("%t", cached))
	span.SetTag("success", fmt.Sprintf("%t", err == nil))
	span.SetData("duration_ms", duration.Milliseconds())

	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		sentry.CaptureException(err)
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Description = fmt.Sprintf("Render %s: %t", tool, err == nil)
}

// RecordProposal records an LLM grammar proposal
func (m *SentryMetrics) RecordProposal(ctx context.Context, provider string, attempts int, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "grammar.proposal")
	defer span.Finish()

	span.SetTag("provider", provider)
	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("attempts", attempts)
	span.SetData("duration_ms", duration.Milliseconds())

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("Grammar Proposal: %t", success)
}
