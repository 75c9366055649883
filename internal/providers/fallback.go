package providers

import (
	"context"
	"log/slog"

	"picoagent/pkg/models"
)

// FallbackClient wraps a primary Client (typically a vendor-backed one) and
// falls back to a secondary Client (typically HeuristicClient) whenever the
// primary returns an error. This keeps the agent loop usable offline or
// when a vendor key is missing or rate-limited, at the cost of routing and
// synthesis quality.
type FallbackClient struct {
	primary   Client
	secondary Client
	logger    *slog.Logger
}

// NewFallbackClient constructs a Client that prefers primary and falls
// back to secondary on any error. logger may be nil.
func NewFallbackClient(primary, secondary Client, logger *slog.Logger) *FallbackClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackClient{primary: primary, secondary: secondary, logger: logger}
}

func (c *FallbackClient) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := c.primary.Embed(ctx, text)
	if err == nil {
		return v, nil
	}
	c.logger.Warn("provider fallback", "operation", "embed", "error", err)
	return c.secondary.Embed(ctx, text)
}

func (c *FallbackClient) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	v, err := c.primary.Chat(ctx, messages)
	if err == nil {
		return v, nil
	}
	c.logger.Warn("provider fallback", "operation", "chat", "error", err)
	return c.secondary.Chat(ctx, messages)
}

func (c *FallbackClient) ScoreTools(ctx context.Context, userMessage string, candidates []models.ToolDescriptor) (map[string]float64, error) {
	v, err := c.primary.ScoreTools(ctx, userMessage, candidates)
	if err == nil {
		return v, nil
	}
	c.logger.Warn("provider fallback", "operation", "score_tools", "error", err)
	return c.secondary.ScoreTools(ctx, userMessage, candidates)
}

func (c *FallbackClient) PlanToolArgs(ctx context.Context, userMessage string, tool models.ToolDescriptor) (map[string]any, error) {
	v, err := c.primary.PlanToolArgs(ctx, userMessage, tool)
	if err == nil {
		return v, nil
	}
	c.logger.Warn("provider fallback", "operation", "plan_tool_args", "error", err)
	return c.secondary.PlanToolArgs(ctx, userMessage, tool)
}

func (c *FallbackClient) SynthesizeResponse(ctx context.Context, userMessage string, toolResult *models.ToolResult) (string, error) {
	v, err := c.primary.SynthesizeResponse(ctx, userMessage, toolResult)
	if err == nil {
		return v, nil
	}
	c.logger.Warn("provider fallback", "operation", "synthesize_response", "error", err)
	return c.secondary.SynthesizeResponse(ctx, userMessage, toolResult)
}
