// Package vectormemory exposes VectorMemory's recall and store operations
// as agent-callable tools, so the model can explicitly search or save a
// memory rather than relying solely on the AgentLoop's automatic recall.
package vectormemory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"picoagent/internal/memory"
	"picoagent/pkg/models"
)

// Embedder produces an embedding vector for a piece of text. It is
// satisfied by internal/providers.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

func decodeArgs(args map[string]any, dst any) error {
	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	return json.Unmarshal(payload, dst)
}

func toolError(message string) *models.ToolResult {
	return &models.ToolResult{Success: false, Error: message}
}

func marshalResult(v any) *models.ToolResult {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode result: %v", err))
	}
	return &models.ToolResult{Success: true, Content: string(payload)}
}

func mustSchema(schema map[string]any) json.RawMessage {
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// SearchTool performs a recall() over the store.
type SearchTool struct {
	store    *memory.Store
	embedder Embedder
}

// NewSearchTool constructs a memory_search tool.
func NewSearchTool(store *memory.Store, embedder Embedder) *SearchTool {
	return &SearchTool{store: store, embedder: embedder}
}

func (t *SearchTool) Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:        "memory_search",
		Description: "Search long-term memory for records relevant to a query.",
		Schema: mustSchema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Text to search for.",
				},
				"top_k": map[string]any{
					"type":        "integer",
					"description": "Maximum number of results (default 5).",
					"minimum":     1,
				},
			},
			"required": []string{"query"},
		}),
		Timeout: 15,
	}
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (*models.ToolResult, error) {
	var input struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return toolError("invalid parameters: " + err.Error()), nil
	}
	if strings.TrimSpace(input.Query) == "" {
		return toolError("query is required"), nil
	}

	embedding, err := t.embedder.Embed(ctx, input.Query)
	if err != nil {
		return toolError("embed query: " + err.Error()), nil
	}

	matches := t.store.Recall(models.MemoryQuery{
		Text:      input.Query,
		Embedding: embedding,
		TopK:      input.TopK,
		Now:       time.Now(),
	})

	results := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		results = append(results, map[string]any{
			"text":       m.Record.Text,
			"score":      m.Score,
			"similarity": m.Similarity,
			"decay":      m.Decay,
		})
	}
	return marshalResult(map[string]any{"results": results}), nil
}

// WriteTool stores a new record via store().
type WriteTool struct {
	store    *memory.Store
	embedder Embedder
}

// NewWriteTool constructs a memory_write tool.
func NewWriteTool(store *memory.Store, embedder Embedder) *WriteTool {
	return &WriteTool{store: store, embedder: embedder}
}

func (t *WriteTool) Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:        "memory_write",
		Description: "Save a fact or observation to long-term memory.",
		Schema: mustSchema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "Text to remember.",
				},
				"session_id": map[string]any{
					"type":        "string",
					"description": "Session this memory originates from.",
				},
			},
			"required": []string{"text"},
		}),
		Timeout: 15,
	}
}

func (t *WriteTool) Execute(ctx context.Context, args map[string]any) (*models.ToolResult, error) {
	var input struct {
		Text      string `json:"text"`
		SessionID string `json:"session_id"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return toolError("invalid parameters: " + err.Error()), nil
	}
	if strings.TrimSpace(input.Text) == "" {
		return toolError("text is required"), nil
	}

	embedding, err := t.embedder.Embed(ctx, input.Text)
	if err != nil {
		return toolError("embed text: " + err.Error()), nil
	}

	rec, err := t.store.Store(input.SessionID, input.Text, embedding)
	if err != nil {
		return toolError(err.Error()), nil
	}
	return marshalResult(map[string]any{"id": rec.ID}), nil
}
