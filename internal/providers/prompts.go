package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"picoagent/pkg/models"
)

// These prompt templates and parsers are shared by every vendor-backed
// Client (anthropic.go, openai.go): each vendor only needs to implement
// Chat, and gets ScoreTools/PlanToolArgs/SynthesizeResponse by asking the
// model to answer in a constrained, easily-parsed shape.

const scoringSystemPrompt = `You score how relevant each candidate tool is to the user's message.
Respond with ONLY a JSON object mapping each tool name to a non-negative number.
A tool with no relevance at all should still get a small positive score, not zero.
Do not include any text outside the JSON object.`

const planSystemPrompt = `You produce the JSON arguments to call a single tool, matching its parameter schema.
Respond with ONLY a JSON object of arguments. Do not include any text outside the JSON object.`

const synthesisSystemPrompt = `You turn a tool's result into a short, direct answer to the user's original message.
If the tool failed, say so plainly and suggest what the user might try instead.`

func buildScoringPrompt(userMessage string, candidates []models.ToolDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User message: %s\n\nCandidate tools:\n", userMessage)
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
	}
	return b.String()
}

func buildPlanPrompt(userMessage string, tool models.ToolDescriptor) string {
	return fmt.Sprintf("User message: %s\n\nTool: %s\nDescription: %s\nParameter schema: %s\n",
		userMessage, tool.Name, tool.Description, string(tool.Schema))
}

func buildSynthesisPrompt(userMessage string, result *models.ToolResult) string {
	if result == nil {
		return fmt.Sprintf("User message: %s\n\nNo tool was called.", userMessage)
	}
	if !result.Success {
		return fmt.Sprintf("User message: %s\n\nThe tool failed with error: %s", userMessage, result.Error)
	}
	return fmt.Sprintf("User message: %s\n\nTool result:\n%s", userMessage, result.Content)
}

// parseScores decodes a model's free-form reply into a score map, tolerating
// surrounding prose by extracting the first JSON object found.
func parseScores(raw string) (map[string]float64, error) {
	var scores map[string]float64
	if err := json.Unmarshal([]byte(extractJSON(raw)), &scores); err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("no scores decoded")
	}
	for name, v := range scores {
		if v < 0 {
			scores[name] = 0
		}
	}
	return scores, nil
}

// unmarshalJSONObject decodes a model's reply into dst, tolerating
// surrounding prose the same way parseScores does.
func unmarshalJSONObject(raw string, dst any) error {
	return json.Unmarshal([]byte(extractJSON(raw)), dst)
}

// extractJSON returns the substring of s spanning the first balanced
// top-level '{'...'}' span, or s unchanged if none is found. Vendor chat
// completions occasionally wrap JSON in prose or code fences despite
// instructions not to.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return s
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}
