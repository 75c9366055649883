package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"picoagent/pkg/models"
)

// DefaultTimeout is used when a tool descriptor does not set one.
const DefaultTimeout = 30 * time.Second

// Registry holds every tool the agent can call, keyed by name, along with
// its compiled parameter schema and a shared result cache.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	schemas map[string]*jsonschema.Schema
	cache   *resultCache
	logger  *slog.Logger
}

// NewRegistry constructs an empty Registry with a fingerprint cache of
// ttl/maxEntries as described in the tool-result caching contract.
func NewRegistry(ttl time.Duration, maxEntries int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*jsonschema.Schema),
		cache:   newResultCache(ttl, maxEntries),
		logger:  logger,
	}
}

// NameConflictError reports that a tool name is already registered (spec
// §4.4: "duplicate name fails with NameConflict").
type NameConflictError struct {
	Name string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("tools: name conflict: %q is already registered", e.Name)
}

// Register adds a tool to the registry, compiling its parameter schema
// eagerly so malformed schemas fail at startup rather than at call time.
// Registering a name that is already taken fails with *NameConflictError
// rather than silently overwriting the earlier registration.
func (r *Registry) Register(tool Tool) error {
	desc := tool.Descriptor()
	if strings.TrimSpace(desc.Name) == "" {
		return fmt.Errorf("tools: tool name is required")
	}

	r.mu.RLock()
	_, exists := r.tools[desc.Name]
	r.mu.RUnlock()
	if exists {
		return &NameConflictError{Name: desc.Name}
	}

	compiler := jsonschema.NewCompiler()
	url := "mem://" + desc.Name + ".json"
	schemaBody := desc.Schema
	if len(schemaBody) == 0 {
		schemaBody = []byte(`{"type":"object"}`)
	}
	schemaBody, err := denyUnknownProperties(schemaBody)
	if err != nil {
		return fmt.Errorf("tools: parse schema for %s: %w", desc.Name, err)
	}
	if err := compiler.AddResource(url, strings.NewReader(string(schemaBody))); err != nil {
		return fmt.Errorf("tools: add schema resource for %s: %w", desc.Name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("tools: compile schema for %s: %w", desc.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[desc.Name] = tool
	r.schemas[desc.Name] = schema
	return nil
}

// denyUnknownProperties returns schemaBody with "additionalProperties":
// false injected at the top level when the schema is an object schema that
// doesn't already declare additionalProperties. Spec §4.4 requires "unknown
// extra keys rejected unless schema declares additional_properties"; the
// jsonschema/v5 compiler otherwise defaults to permissive, so this is where
// that default gets flipped for every tool's top-level parameter object.
func denyUnknownProperties(schemaBody []byte) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(schemaBody, &doc); err != nil {
		return nil, err
	}
	if doc["type"] != "object" {
		return schemaBody, nil
	}
	if _, declared := doc["additionalProperties"]; declared {
		return schemaBody, nil
	}
	doc["additionalProperties"] = false
	return json.Marshal(doc)
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the descriptors of every registered tool, for inclusion in
// the LLM's available-tools context.
func (r *Registry) List() []models.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ToolDescriptor, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Descriptor())
	}
	return out
}
