package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"picoagent/pkg/models"
)

// embeddingDim is the fixed dimension of the local heuristic embedder.
const embeddingDim = 64

// HeuristicClient is a deterministic, dependency-free provider used when no
// vendor API key is configured, and in tests. It never makes a network
// call: Embed hashes text into a fixed-size vector, ScoreTools counts
// shared tokens between the message and each tool's name/description, and
// SynthesizeResponse echoes the tool result.
type HeuristicClient struct{}

// NewHeuristicClient constructs the local fallback provider.
func NewHeuristicClient() *HeuristicClient {
	return &HeuristicClient{}
}

// Embed hashes text into a deterministic unit vector. It is not semantically
// meaningful beyond exact and near-duplicate token overlap, which is enough
// for tests and for an offline-first default.
func (c *HeuristicClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, embeddingDim)
	for _, token := range tokenize(text) {
		h := sha256.Sum256([]byte(token))
		for i := 0; i < embeddingDim; i++ {
			idx := int(binary.LittleEndian.Uint32(h[(i*4)%len(h):])) % embeddingDim
			if idx < 0 {
				idx += embeddingDim
			}
			vec[idx] += 1
		}
	}
	normalize(vec)
	return vec, nil
}

func (c *HeuristicClient) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}
	return "I heard: " + messages[len(messages)-1].Content, nil
}

// ScoreTools scores each tool by the count of tokens it shares with the
// user message, against its name and description.
func (c *HeuristicClient) ScoreTools(ctx context.Context, userMessage string, candidates []models.ToolDescriptor) (map[string]float64, error) {
	messageTokens := tokenSet(userMessage)
	scores := make(map[string]float64, len(candidates))
	for _, cand := range candidates {
		toolTokens := tokenSet(cand.Name + " " + cand.Description)
		overlap := 0.0
		for t := range toolTokens {
			if messageTokens[t] {
				overlap++
			}
		}
		// Every candidate gets a small floor so an all-zero overlap
		// still produces a valid (maximum-entropy) distribution rather
		// than an empty one.
		scores[cand.Name] = overlap + 0.1
	}
	return scores, nil
}

// PlanToolArgs produces an empty argument set; callers relying on the
// heuristic provider are expected to pair it with tools that have no
// required parameters, or to supply arguments out of band.
func (c *HeuristicClient) PlanToolArgs(ctx context.Context, userMessage string, tool models.ToolDescriptor) (map[string]any, error) {
	return map[string]any{}, nil
}

func (c *HeuristicClient) SynthesizeResponse(ctx context.Context, userMessage string, toolResult *models.ToolResult) (string, error) {
	if toolResult == nil {
		return fmt.Sprintf("Understood: %s", userMessage), nil
	}
	if !toolResult.Success {
		return fmt.Sprintf("The tool call failed: %s", toolResult.Error), nil
	}
	return toolResult.Content, nil
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return fields
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokenize(text) {
		set[t] = true
	}
	return set
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
