package vectormemory

import (
	"context"
	"strings"
	"testing"

	"picoagent/internal/memory"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.Contains(text, "blue") {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func TestWriteThenSearch(t *testing.T) {
	store := memory.NewStore(memory.DefaultConfig(), nil)
	embedder := stubEmbedder{}

	writeTool := NewWriteTool(store, embedder)
	if result, err := writeTool.Execute(context.Background(), map[string]any{"text": "the sky is blue", "session_id": "s1"}); err != nil || !result.Success {
		t.Fatalf("write failed: err=%v result=%v", err, result)
	}

	searchTool := NewSearchTool(store, embedder)
	result, err := searchTool.Execute(context.Background(), map[string]any{"query": "blue sky", "top_k": 1})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Content, "sky is blue") {
		t.Fatalf("expected matching memory in results: %s", result.Content)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	store := memory.NewStore(memory.DefaultConfig(), nil)
	tool := NewSearchTool(store, stubEmbedder{})
	result, err := tool.Execute(context.Background(), map[string]any{"query": ""})
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure for empty query")
	}
}
