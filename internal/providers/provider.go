// Package providers implements the pluggable LLM/embedding backends behind
// the agent loop's five provider operations: embed, chat, score_tools,
// plan_tool_args, and synthesize_response.
package providers

import (
	"context"

	"picoagent/pkg/models"
)

// ChatMessage is one turn of conversation passed to Chat.
type ChatMessage struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// Client is the full provider contract the agent loop depends on.
type Client interface {
	// Embed returns a fixed-dimension embedding for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Chat produces a free-form assistant reply given a message history.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)

	// ScoreTools scores each candidate tool's relevance to userMessage,
	// returning raw (unnormalized) non-negative scores.
	ScoreTools(ctx context.Context, userMessage string, candidates []models.ToolDescriptor) (map[string]float64, error)

	// PlanToolArgs produces the JSON arguments to call the named tool
	// given the user's message and that tool's descriptor.
	PlanToolArgs(ctx context.Context, userMessage string, tool models.ToolDescriptor) (map[string]any, error)

	// SynthesizeResponse turns a tool result (or the absence of one) into
	// a final natural-language reply to the user.
	SynthesizeResponse(ctx context.Context, userMessage string, toolResult *models.ToolResult) (string, error)
}

// ProviderTransportError wraps a network/transport-level failure talking
// to a provider.
type ProviderTransportError struct {
	Provider string
	Cause    error
}

func (e *ProviderTransportError) Error() string {
	return "providers: " + e.Provider + " transport error: " + e.Cause.Error()
}

func (e *ProviderTransportError) Unwrap() error { return e.Cause }

// ProviderDecodeError wraps a failure decoding a provider's response.
type ProviderDecodeError struct {
	Provider string
	Cause    error
}

func (e *ProviderDecodeError) Error() string {
	return "providers: " + e.Provider + " decode error: " + e.Cause.Error()
}

func (e *ProviderDecodeError) Unwrap() error { return e.Cause }
