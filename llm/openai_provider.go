package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	// Role constants
	userRole      = "user"
	assistantRole = "assistant"
	developerRole = "developer"

	// Reasoning effort levels
	reasoningNone    = "none"
	reasoningMinimal = "minimal"
	reasoningLow     = "low"
	reasoningMedium  = "medium"
	reasoningHigh    = "high"
	reasoningMin     = "min"
	reasoningMed     = "med"

	// Provider name
	providerNameOpenAI = "openai"

	customToolCallType = "custom_tool_call"
	defaultOpenAIURL   = "https://api.openai.com/v1"

	// Logging limits
	maxPreviewChars = 200
	maxErrorChars   = 500
)

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client     *openai.Client
	apiKey     string // Store API key for raw HTTP requests when needed
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, opts ...option.RequestOption) *OpenAIProvider {
	return newOpenAIProvider(apiKey, defaultOpenAIURL, opts...)
}

func newOpenAIProvider(apiKey, baseURL string, opts ...option.RequestOption) *OpenAIProvider {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:     &client,
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate runs one non-streaming generation. With a CFG grammar the request is sent as raw
// JSON because the SDK has no custom tool type.
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 OPENAI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)
	transaction.SetTag("cfg_enabled", fmt.Sprintf("%t", request.CFGGrammar != nil))

	params := p.buildRequestParams(request)

	span := transaction.StartChild("openai.api_call")
	apiStartTime := time.Now()

	var result *GenerationResponse
	var err error
	if request.CFGGrammar != nil {
		result, err = p.generateWithCFG(ctx, params, request.CFGGrammar)
	} else {
		var resp *responses.Response
		resp, err = p.client.Responses.New(ctx, params)
		if err == nil {
			result, err = p.processResponse(resp)
		}
	}

	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	log.Printf("✅ OPENAI GENERATION COMPLETED in %v (%d chars)", time.Since(startTime), len(result.RawOutput))
	transaction.SetTag("success", "true")
	return result, nil
}

// buildRequestParams converts GenerationRequest to OpenAI-specific ResponseNewParams
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	inputItems := responses.ResponseInputParam{}

	for _, item := range request.InputArray {
		role, content, ok := messageParts(item)
		if !ok {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}

		var roleEnum responses.EasyInputMessageRole
		switch role {
		case developerRole:
			roleEnum = responses.EasyInputMessageRoleDeveloper
		case assistantRole:
			roleEnum = responses.EasyInputMessageRoleAssistant
		default:
			roleEnum = responses.EasyInputMessageRoleUser
		}

		inputItems = append(inputItems,
			responses.ResponseInputItemParamOfMessage(content, roleEnum),
		)
	}

	return responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
		Instructions: openai.String(request.SystemPrompt),
		Reasoning: shared.ReasoningParam{
			Effort: reasoningEffort(request.ReasoningMode),
		},
	}
}

// reasoningEffort maps a reasoning mode to an effort, defaulting to low
func reasoningEffort(mode string) shared.ReasoningEffort {
	switch mode {
	case reasoningNone:
		return shared.ReasoningEffort("none")
	case reasoningMinimal, reasoningMin, reasoningLow:
		return responses.ReasoningEffortLow
	case reasoningMedium, reasoningMed:
		return responses.ReasoningEffortMedium
	case reasoningHigh:
		return responses.ReasoningEffortHigh
	default:
		return responses.ReasoningEffortLow
	}
}

// buildCFGTool returns the custom tool payload for a grammar
func buildCFGTool(cfg *CFGConfig) map[string]any {
	syntax := cfg.Syntax
	if syntax == "" {
		syntax = "lark"
	}
	return map[string]any{
		"type":        "custom",
		"name":        cfg.ToolName,
		"description": cfg.Description,
		"format": map[string]any{
			"type":       "grammar",
			"syntax":     syntax,
			"definition": strings.TrimSpace(cfg.Grammar),
		},
	}
}

func (p *OpenAIProvider) generateWithCFG(
	ctx context.Context, params responses.ResponseNewParams, cfg *CFGConfig,
) (*GenerationResponse, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	var paramsMap map[string]any
	if err := json.Unmarshal(paramsJSON, &paramsMap); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	paramsMap["tools"] = []any{buildCFGTool(cfg)}
	paramsMap["tool_choice"] = map[string]any{"type": "custom", "name": cfg.ToolName}
	paramsMap["parallel_tool_calls"] = false
	log.Printf("🔧 CFG GRAMMAR CONFIGURED: %s (syntax: %s)", cfg.ToolName, cfg.Syntax)

	body, err := json.Marshal(paramsMap)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	log.Printf("📤 Making raw HTTP request (JSON size: %d bytes)", len(body))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			log.Printf("⚠️  Failed to close response body: %v", closeErr)
		}
	}()
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", httpResp.StatusCode, truncate(string(respBody), maxErrorChars))
	}

	var resp responses.Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	p.logUsageStats(resp.Usage)

	if input := findToolInput(respBody, cfg.ToolName); input != "" {
		log.Printf("🔧 Found CFG tool call input: %s", truncate(input, maxPreviewChars))
		return &GenerationResponse{RawOutput: input, Usage: usageOf(resp.Usage)}, nil
	}
	return nil, fmt.Errorf("CFG grammar was configured but the model did not call the %s tool", cfg.ToolName)
}

// findToolInput returns the input of the first custom tool call named toolName
func findToolInput(body []byte, toolName string) string {
	var raw struct {
		Output []struct {
			Type  string `json:"type"`
			Name  string `json:"name"`
			Input string `json:"input"`
		} `json:"output"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return ""
	}
	for _, item := range raw.Output {
		if item.Type == customToolCallType && item.Name == toolName && item.Input != "" {
			return item.Input
		}
	}
	return ""
}

// processResponse converts an OpenAI Response to a GenerationResponse
func (p *OpenAIProvider) processResponse(resp *responses.Response) (*GenerationResponse, error) {
	textOutput := extractAndCleanTextOutput(resp.OutputText())
	log.Printf("📥 OPENAI RESPONSE: output_length=%d, output_items=%d, tokens=%d",
		len(textOutput), len(resp.Output), resp.Usage.TotalTokens)
	p.logUsageStats(resp.Usage)

	if textOutput == "" {
		return nil, fmt.Errorf("openai response did not include any output text")
	}
	return &GenerationResponse{RawOutput: textOutput, Usage: usageOf(resp.Usage)}, nil
}

func usageOf(u responses.ResponseUsage) Usage {
	return Usage{InputTokens: int(u.InputTokens), OutputTokens: int(u.OutputTokens)}
}

// extractAndCleanTextOutput strips markdown code fences around model output
func extractAndCleanTextOutput(textOutput string) string {
	if textOutput == "" {
		return ""
	}

	cleaned := strings.TrimSpace(textOutput)
	if strings.HasPrefix(cleaned, "```") {
		// drop the opening fence together with its language tag
		if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
			cleaned = cleaned[nl+1:]
		} else {
			cleaned = strings.TrimPrefix(cleaned, "```")
		}
	}
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned != textOutput {
		log.Printf("🧹 Stripped markdown code blocks from output: %d -> %d chars", len(textOutput), len(cleaned))
	}
	return cleaned
}

// logUsageStats logs token usage statistics
func (p *OpenAIProvider) logUsageStats(usage responses.ResponseUsage) {
	log.Printf("📊 USAGE: input=%d, output=%d, reasoning=%d, total=%d",
		usage.InputTokens, usage.OutputTokens,
		usage.OutputTokensDetails.ReasoningTokens, usage.TotalTokens)
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
