package exec

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestExecToolRunsCommand(t *testing.T) {
	mgr := NewManager(t.TempDir())
	tool := NewExecTool("exec", mgr, nil)
	args := map[string]any{"command": "echo hello"}
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success: %s", result.Error)
	}
	if !strings.Contains(result.Content, "hello") {
		t.Fatalf("expected stdout in result: %s", result.Content)
	}
}

func TestExecToolRefusesDeniedCommand(t *testing.T) {
	mgr := NewManager(t.TempDir())
	tool := NewExecTool("exec", mgr, nil)
	args := map[string]any{"command": "rm -rf /"}
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Success {
		t.Fatal("expected denied command to fail")
	}
	if !strings.Contains(result.Error, "refused") {
		t.Fatalf("expected refusal reason, got: %s", result.Error)
	}
}

func TestProcessToolLifecycle(t *testing.T) {
	mgr := NewManager(t.TempDir())
	execTool := NewExecTool("exec", mgr, nil)
	procTool := NewProcessTool(mgr)

	result, err := execTool.Execute(context.Background(), map[string]any{
		"command":    "echo background",
		"background": true,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success: %s", result.Error)
	}

	var payload struct {
		ProcessID string `json:"process_id"`
	}
	if err := json.Unmarshal([]byte(result.Content), &payload); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if payload.ProcessID == "" {
		t.Fatalf("expected process_id")
	}

	time.Sleep(50 * time.Millisecond)
	statusResult, err := procTool.Execute(context.Background(), map[string]any{
		"action":     "status",
		"process_id": payload.ProcessID,
	})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !statusResult.Success {
		t.Fatalf("expected status success: %s", statusResult.Error)
	}

	removeResult, err := procTool.Execute(context.Background(), map[string]any{
		"action":     "remove",
		"process_id": payload.ProcessID,
	})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removeResult.Success {
		t.Fatalf("expected remove success: %s", removeResult.Error)
	}
}
