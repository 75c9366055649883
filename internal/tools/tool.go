// Package tools implements the tool registry: registration, JSON-schema
// parameter validation, cached execution, and hard per-call timeouts.
package tools

import (
	"context"

	"picoagent/pkg/models"
)

// Tool is anything the agent loop can invoke by name.
type Tool interface {
	Descriptor() models.ToolDescriptor
	Execute(ctx context.Context, args map[string]any) (*models.ToolResult, error)
}
