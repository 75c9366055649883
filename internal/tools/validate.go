package tools

import (
	"fmt"

	"picoagent/pkg/models"
)

// ValidationError reports that a tool call's arguments failed schema
// validation.
type ValidationError struct {
	ToolName string
	Cause    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tools: invalid arguments for %s: %v", e.ToolName, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Validate checks args against the tool's compiled JSON schema.
func (r *Registry) Validate(name string, args map[string]any) error {
	r.mu.RLock()
	schema, ok := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("tools: unknown tool %q", name)
	}

	v := make(map[string]any, len(args))
	for k, val := range args {
		v[k] = val
	}
	if err := schema.Validate(v); err != nil {
		return &ValidationError{ToolName: name, Cause: err}
	}
	return nil
}

// Descriptor returns the descriptor for a registered tool, for timeout
// lookups and introspection.
func (r *Registry) Descriptor(name string) (models.ToolDescriptor, bool) {
	t, ok := r.Get(name)
	if !ok {
		return models.ToolDescriptor{}, false
	}
	return t.Descriptor(), true
}
