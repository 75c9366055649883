package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"picoagent/pkg/models"
)

type stubTool struct {
	desc  models.ToolDescriptor
	calls int
	delay time.Duration
	fn    func(args map[string]any) (*models.ToolResult, error)
}

func (s *stubTool) Descriptor() models.ToolDescriptor { return s.desc }

func (s *stubTool) Execute(ctx context.Context, args map[string]any) (*models.ToolResult, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.fn != nil {
		return s.fn(args)
	}
	return &models.ToolResult{Success: true, Content: "ok"}, nil
}

func echoDescriptor(name string) models.ToolDescriptor {
	schema, _ := json.Marshal(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	})
	return models.ToolDescriptor{Name: name, Description: "echoes text", Schema: schema, Timeout: 1}
}

func TestRegistry_RegisterAndList(t *testing.T) {
	r := NewRegistry(time.Minute, 10, nil)
	tool := &stubTool{desc: echoDescriptor("echo")}
	if err := r.Register(tool); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	list := r.List()
	if len(list) != 1 || list[0].Name != "echo" {
		t.Errorf("List() = %v, want one descriptor named echo", list)
	}
}

func TestRegistry_RegisterRejectsDuplicateName(t *testing.T) {
	r := NewRegistry(time.Minute, 10, nil)
	if err := r.Register(&stubTool{desc: echoDescriptor("echo")}); err != nil {
		t.Fatalf("Register() first call error = %v", err)
	}
	err := r.Register(&stubTool{desc: echoDescriptor("echo")})
	if err == nil {
		t.Fatal("Register() expected error for duplicate name, got nil")
	}
	if _, ok := err.(*NameConflictError); !ok {
		t.Errorf("Register() error type = %T, want *NameConflictError", err)
	}
	if len(r.List()) != 1 {
		t.Errorf("List() = %d tools, want 1 (duplicate must not overwrite)", len(r.List()))
	}
}

func TestRegistry_ValidateRejectsMissingRequired(t *testing.T) {
	r := NewRegistry(time.Minute, 10, nil)
	r.Register(&stubTool{desc: echoDescriptor("echo")})

	if err := r.Validate("echo", map[string]any{}); err == nil {
		t.Error("Validate() expected error for missing required field, got nil")
	}
	if err := r.Validate("echo", map[string]any{"text": "hi"}); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}
}

func TestRegistry_ValidateRejectsUnknownProperties(t *testing.T) {
	r := NewRegistry(time.Minute, 10, nil)
	r.Register(&stubTool{desc: echoDescriptor("echo")})

	err := r.Validate("echo", map[string]any{"text": "hi", "extra": "nope"})
	if err == nil {
		t.Error("Validate() expected error for unknown property, got nil")
	}
}

func TestDenyUnknownProperties_RespectsExplicitDeclaration(t *testing.T) {
	schema, _ := json.Marshal(map[string]any{
		"type":                 "object",
		"additionalProperties": true,
	})
	out, err := denyUnknownProperties(schema)
	if err != nil {
		t.Fatalf("denyUnknownProperties() error = %v", err)
	}
	var doc map[string]any
	json.Unmarshal(out, &doc)
	if doc["additionalProperties"] != true {
		t.Errorf("denyUnknownProperties() overrode an explicit additionalProperties declaration")
	}
}

func TestRegistry_RunCachesSuccessfulResults(t *testing.T) {
	r := NewRegistry(time.Minute, 10, nil)
	tool := &stubTool{desc: echoDescriptor("echo")}
	r.Register(tool)

	ctx := context.Background()
	if _, err := r.Run(ctx, "echo", map[string]any{"text": "hi"}, 0); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	result, err := r.Run(ctx, "echo", map[string]any{"text": "hi"}, 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Cached {
		t.Error("Run() expected second call to be served from cache")
	}
	if tool.calls != 1 {
		t.Errorf("Execute() called %d times, want 1 (second call should hit cache)", tool.calls)
	}
}

func TestRegistry_RunSkipsCacheWhenNotCacheable(t *testing.T) {
	r := NewRegistry(time.Minute, 10, nil)
	desc := echoDescriptor("echo")
	notCacheable := false
	desc.Cacheable = &notCacheable
	tool := &stubTool{desc: desc}
	r.Register(tool)

	ctx := context.Background()
	if _, err := r.Run(ctx, "echo", map[string]any{"text": "hi"}, 0); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	result, err := r.Run(ctx, "echo", map[string]any{"text": "hi"}, 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Cached {
		t.Error("Run() should not serve a cacheable=false tool from cache")
	}
	if tool.calls != 2 {
		t.Errorf("Execute() called %d times, want 2 (cache disabled)", tool.calls)
	}
}

func TestRegistry_RunTimesOut(t *testing.T) {
	r := NewRegistry(time.Minute, 10, nil)
	desc := echoDescriptor("slow")
	desc.Timeout = 0
	r.Register(&stubTool{desc: desc, delay: 200 * time.Millisecond})

	ctx := context.Background()
	result, err := r.Run(ctx, "slow", map[string]any{"text": "hi"}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Success {
		t.Error("Run() expected a timeout result, got success")
	}
	if result.Error != "timeout" {
		t.Errorf("Run() error field = %q, want %q", result.Error, "timeout")
	}
}

func TestRegistry_RunRejectsUnknownTool(t *testing.T) {
	r := NewRegistry(time.Minute, 10, nil)
	if _, err := r.Run(context.Background(), "missing", nil, 0); err == nil {
		t.Error("Run() expected error for unknown tool, got nil")
	}
}

func TestFingerprint_IsOrderIndependent(t *testing.T) {
	a := fingerprint("echo", map[string]any{"x": 1, "y": 2})
	b := fingerprint("echo", map[string]any{"y": 2, "x": 1})
	if a != b {
		t.Errorf("fingerprint() not order independent: %s != %s", a, b)
	}
}

func TestResultCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newResultCache(time.Minute, 2)
	c.put("a", models.ToolResult{Content: "a"})
	c.put("b", models.ToolResult{Content: "b"})
	c.get("a") // touch a, making b the LRU entry
	c.put("c", models.ToolResult{Content: "c"})

	if _, ok := c.get("b"); ok {
		t.Error("expected b to be evicted as least recently used")
	}
	if _, ok := c.get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
}
