package exec

import (
	"encoding/json"
	"fmt"

	"picoagent/pkg/models"
)

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
