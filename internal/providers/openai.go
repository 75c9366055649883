package providers

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"picoagent/internal/backoff"
	"picoagent/pkg/models"
)

// transportRetryAttempts bounds how many times a single OpenAI call retries
// a transient transport failure (rate limits, 5xx) before surfacing it.
const transportRetryAttempts = 3

// OpenAIClient implements Client against the OpenAI chat completions and
// embeddings APIs, covering all five provider operations from a single
// vendor (unlike AnthropicClient, which needs an embedding-capable peer).
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
}

// OpenAIConfig configures an OpenAIClient.
type OpenAIConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
}

// NewOpenAIClient constructs a Client backed by the OpenAI API.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("providers: openai api key is required")
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	embeddingModel := openai.SmallEmbedding3
	if cfg.EmbeddingModel != "" {
		embeddingModel = openai.EmbeddingModel(cfg.EmbeddingModel)
	}
	return &OpenAIClient{
		client:         openai.NewClient(cfg.APIKey),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}, nil
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := backoff.RetryFunc(ctx, transportRetryAttempts, func(_ int) (openai.EmbeddingResponse, error) {
		return c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
	})
	if err != nil {
		return nil, &ProviderTransportError{Provider: "openai", Cause: err}
	}
	if len(resp.Data) == 0 {
		return nil, &ProviderDecodeError{Provider: "openai", Cause: fmt.Errorf("no embedding returned")}
	}
	return resp.Data[0].Embedding, nil
}

func (c *OpenAIClient) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	var converted []openai.ChatCompletionMessage
	for _, m := range messages {
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	resp, err := backoff.RetryFunc(ctx, transportRetryAttempts, func(_ int) (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.chatModel,
			Messages: converted,
		})
	})
	if err != nil {
		return "", &ProviderTransportError{Provider: "openai", Cause: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderDecodeError{Provider: "openai", Cause: fmt.Errorf("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) ScoreTools(ctx context.Context, userMessage string, candidates []models.ToolDescriptor) (map[string]float64, error) {
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
		return nil, &ProviderDecodeError{Provider: "openai", Cause: err}
	}
	return scores, nil
}

func (c *OpenAIClient) PlanToolArgs(ctx context.Context, userMessage string, tool models.ToolDescriptor) (map[string]any, error) {
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
		return nil, &ProviderDecodeError{Provider: "openai", Cause: err}
	}
	return args, nil
}

func (c *OpenAIClient) SynthesizeResponse(ctx context.Context, userMessage string, toolResult *models.ToolResult) (string, error) {
	prompt := buildSynthesisPrompt(userMessage, toolResult)
	return c.Chat(ctx, []ChatMessage{
		{Role: "system", Content: synthesisSystemPrompt},
		{Role: "user", Content: prompt},
	})
}
