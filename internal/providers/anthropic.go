package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"picoagent/internal/backoff"
	"picoagent/pkg/models"
)

// chatRetryAttempts bounds how many times a single Chat call retries a
// transport failure before surfacing it. Anthropic's own SDK already
// retries connection-level errors; this covers the remaining transient
// 5xx/429 responses that reach us as plain errors.
const chatRetryAttempts = 3

// AnthropicClient implements Client against Anthropic's Messages API. It
// has no notion of embeddings (Anthropic does not offer an embedding
// endpoint), so Embed always returns an error; callers should pair this
// client with an embedding-capable Client for that operation, or rely on
// automatic fallback.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// AnthropicConfig configures an AnthropicClient.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// NewAnthropicClient constructs a Client backed by the Anthropic API.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("providers: anthropic api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &AnthropicClient{client: client, model: model}, nil
}

func (c *AnthropicClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("providers: anthropic does not offer an embeddings endpoint")
}

func (c *AnthropicClient) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	var system string
	var converted []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = m.Content
		case "assistant":
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		Messages:  converted,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := backoff.RetryFunc(ctx, chatRetryAttempts, func(_ int) (*anthropic.Message, error) {
		return c.client.Messages.New(ctx, params)
	})
	if err != nil {
		return "", &ProviderTransportError{Provider: "anthropic", Cause: err}
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if text := block.AsText(); text.Text != "" {
			out.WriteString(text.Text)
		}
	}
	return out.String(), nil
}

func (c *AnthropicClient) ScoreTools(ctx context.Context, userMessage string, candidates []models.ToolDescriptor) (map[string]float64, error) {
	prompt := buildScoringPrompt(userMessage, candidates)
	raw, err := c.Chat(ctx, []ChatMessage{
		{Role: "system", Content: scoringSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}
	scores, err := parseScores(raw)
	if err != nil {
		return nil, &ProviderDecodeError{Provider: "anthropic", Cause: err}
	}
	return scores, nil
}

func (c *AnthropicClient) PlanToolArgs(ctx context.Context, userMessage string, tool models.ToolDescriptor) (map[string]any, error) {
	prompt := buildPlanPrompt(userMessage, tool)
	raw, err := c.Chat(ctx, []ChatMessage{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}
	var args map[string]any
	if err := unmarshalJSONObject(raw, &args); err != nil {
		return nil, &ProviderDecodeError{Provider: "anthropic", Cause: err}
	}
	return args, nil
}

func (c *AnthropicClient) SynthesizeResponse(ctx context.Context, userMessage string, toolResult *models.ToolResult) (string, error) {
	prompt := buildSynthesisPrompt(userMessage, toolResult)
	return c.Chat(ctx, []ChatMessage{
		{Role: "system", Content: synthesisSystemPrompt},
		{Role: "user", Content: prompt},
	})
}
