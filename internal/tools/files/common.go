// Package files implements workspace-restricted file tools: read, write,
// edit, and unified-diff patch application. Every path argument is resolved
// through Resolver before touching the filesystem, so a tool can never
// escape its configured workspace root.
package files

import (
	"encoding/json"
	"fmt"

	"picoagent/pkg/models"
)

// Config controls filesystem tool defaults.
type Config struct {
	Workspace    string
	MaxReadBytes int
}

// decodeArgs re-marshals a generic argument map into a typed struct. Tool
// arguments arrive pre-validated against the tool's JSON schema, so this
// only fails on a genuine structural mismatch.
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

func toolOK(content string) *models.ToolResult {
	return &models.ToolResult{Success: true, Content: content}
}

func marshalResult(v any) *models.ToolResult {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode result: %v", err))
	}
	return toolOK(string(payload))
}

func mustSchema(schema map[string]any) json.RawMessage {
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}
