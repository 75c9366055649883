package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"picoagent/pkg/models"
)

// WriteTool implements file writes within the workspace.
type WriteTool struct {
	resolver Resolver
}

// NewWriteTool creates a write tool scoped to the workspace.
func NewWriteTool(cfg Config) *WriteTool {
	return &WriteTool{resolver: Resolver{Root: cfg.Workspace}}
}

// Descriptor returns the tool's name, description, and parameter schema.
func (t *WriteTool) Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:        "write",
		Description: "Write content to a file in the workspace (overwrites by default).",
		Schema: mustSchema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path to write (relative to workspace).",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "File contents to write.",
				},
				"append": map[string]any{
					"type":        "boolean",
					"description": "Append instead of overwrite (default: false).",
				},
			},
			"required": []string{"path", "content"},
		}),
		Timeout: 10,
	}
}

// Execute writes file contents.
func (t *WriteTool) Execute(ctx context.Context, args map[string]any) (*models.ToolResult, error) {
	var input struct {
		Path    string `json:"path"`
		Content string `json:"content"`
		Append  bool   `json:"append"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return toolError("invalid parameters: " + err.Error()), nil
	}
	if strings.TrimSpace(input.Path) == "" {
		return toolError("path is required"), nil
	}

	resolved, err := t.resolver.Resolve(input.Path)
	if err != nil {
		return toolError(err.Error()), nil
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return toolError("create directory: " + err.Error()), nil
	}

	flags := os.O_CREATE | os.O_WRONLY
	if input.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(resolved, flags, 0o644)
	if err != nil {
		return toolError("open file: " + err.Error()), nil
	}
	defer file.Close()

	n, err := file.WriteString(input.Content)
	if err != nil {
		return toolError("write file: " + err.Error()), nil
	}

	return marshalResult(map[string]any{
		"path":          input.Path,
		"bytes_written": n,
		"append":        input.Append,
	}), nil
}
