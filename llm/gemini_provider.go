package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const providerNameGemini = "gemini"

// GeminiProvider implements the Provider interface using the Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	return newGeminiProvider(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
}

func newGeminiProvider(ctx context.Context, cfg *genai.ClientConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate runs one generation. Gemini has no grammar-constrained tools, so CFGGrammar is
// ignored and the prompt alone describes the output format.
func (p *GeminiProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 GEMINI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	contents := geminiContents(request.InputArray)
	config := &genai.GenerateContentConfig{}
	if request.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemPrompt, genai.RoleUser)
	}

	span := transaction.StartChild("gemini.api_call")
	resp, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	span.Finish()
	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := extractAndCleanTextOutput(resp.Text())
	if text == "" {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("gemini response did not include any output text")
	}

	usage := Usage{}
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	log.Printf("📊 USAGE: input=%d, output=%d", usage.InputTokens, usage.OutputTokens)
	log.Printf("✅ GEMINI GENERATION COMPLETED in %v (%d chars)", time.Since(startTime), len(text))
	transaction.SetTag("success", "true")
	return &GenerationResponse{RawOutput: text, Usage: usage}, nil
}

// geminiContents converts input items; assistant turns become model turns
func geminiContents(items []map[string]any) []*genai.Content {
	contents := make([]*genai.Content, 0, len(items))
	for _, item := range items {
		role, content, ok := messageParts(item)
		if !ok {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}
		var r genai.Role = genai.RoleUser
		if role == assistantRole {
			r = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(content, r))
	}
	return contents
}
