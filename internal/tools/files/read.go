package files

import (
	"context"
	"io"
	"os"
	"strings"

	"picoagent/pkg/models"
)

// ReadTool implements a safe file reader.
type ReadTool struct {
	resolver   Resolver
	maxReadLen int
}

// NewReadTool creates a read tool scoped to the workspace.
func NewReadTool(cfg Config) *ReadTool {
	limit := cfg.MaxReadBytes
	if limit <= 0 {
		limit = 200000
	}
	return &ReadTool{
		resolver:   Resolver{Root: cfg.Workspace},
		maxReadLen: limit,
	}
}

// Descriptor returns the tool's name, description, and parameter schema.
func (t *ReadTool) Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:        "read",
		Description: "Read a file from the workspace with optional offset and byte limit.",
		Schema: mustSchema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path to the file (relative to workspace).",
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Byte offset to start reading from (default: 0).",
					"minimum":     0,
				},
				"max_bytes": map[string]any{
					"type":        "integer",
					"description": "Maximum bytes to read (capped by tool default).",
					"minimum":     0,
				},
			},
			"required": []string{"path"},
		}),
		Timeout: 10,
	}
}

// Execute reads a file with safety limits.
func (t *ReadTool) Execute(ctx context.Context, args map[string]any) (*models.ToolResult, error) {
	var input struct {
		Path     string `json:"path"`
		Offset   int64  `json:"offset"`
		MaxBytes int    `json:"max_bytes"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return toolError("invalid parameters: " + err.Error()), nil
	}
	if strings.TrimSpace(input.Path) == "" {
		return toolError("path is required"), nil
	}
	if input.Offset < 0 {
		return toolError("offset must be >= 0"), nil
	}

	resolved, err := t.resolver.Resolve(input.Path)
	if err != nil {
		return toolError(err.Error()), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return toolError("open file: " + err.Error()), nil
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return toolError("stat file: " + err.Error()), nil
	}

	if input.Offset > 0 {
		if _, err := file.Seek(input.Offset, io.SeekStart); err != nil {
			return toolError("seek file: " + err.Error()), nil
		}
	}

	limit := t.maxReadLen
	if input.MaxBytes > 0 && input.MaxBytes < limit {
		limit = input.MaxBytes
	}

	remaining := int64(limit)
	if size := info.Size(); size > 0 {
		remaining = size - input.Offset
		if remaining < 0 {
			remaining = 0
		}
		if remaining > int64(limit) {
			remaining = int64(limit)
		}
	}

	buf, err := io.ReadAll(io.LimitReader(file, remaining))
	if err != nil {
		return toolError("read file: " + err.Error()), nil
	}

	truncated := info.Size() > 0 && input.Offset+int64(len(buf)) < info.Size()

	return marshalResult(map[string]any{
		"path":      input.Path,
		"content":   string(buf),
		"offset":    input.Offset,
		"bytes":     len(buf),
		"truncated": truncated,
	}), nil
}
