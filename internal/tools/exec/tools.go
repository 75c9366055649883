package exec

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"picoagent/internal/tools/security"
	"picoagent/pkg/models"
)

// ExecTool runs shell commands, refusing anything matching the configured
// deny-pattern list before it ever reaches the shell.
type ExecTool struct {
	name         string
	manager      *Manager
	denyPatterns []string
}

// NewExecTool creates an exec tool with the given name and deny patterns.
// A nil/empty denyPatterns falls back to security.DefaultDenyPatterns.
func NewExecTool(name string, manager *Manager, denyPatterns []string) *ExecTool {
	if strings.TrimSpace(name) == "" {
		name = "exec"
	}
	return &ExecTool{name: name, manager: manager, denyPatterns: denyPatterns}
}

func (t *ExecTool) Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:        t.name,
		Description: "Run a shell command in the workspace (supports optional background execution).",
		Schema: mustSchema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{
					"type":        "string",
					"description": "Shell command to execute.",
				},
				"cwd": map[string]any{
					"type":        "string",
					"description": "Working directory (relative to workspace).",
				},
				"env": map[string]any{
					"type":        "object",
					"description": "Environment overrides (string values).",
				},
				"input": map[string]any{
					"type":        "string",
					"description": "Stdin content to pass to the command.",
				},
				"timeout_seconds": map[string]any{
					"type":        "integer",
					"description": "Timeout in seconds (0 = no timeout).",
					"minimum":     0,
				},
				"background": map[string]any{
					"type":        "boolean",
					"description": "Run in background and return a process id.",
				},
			},
			"required": []string{"command"},
		}),
		Timeout: 30,
	}
}

func (t *ExecTool) Execute(ctx context.Context, args map[string]any) (*models.ToolResult, error) {
	if t.manager == nil {
		return toolError("exec manager unavailable"), nil
	}
	var input struct {
		Command        string            `json:"command"`
		Cwd            string            `json:"cwd"`
		Env            map[string]string `json:"env"`
		Input          string            `json:"input"`
		TimeoutSeconds int               `json:"timeout_seconds"`
		Background     bool              `json:"background"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return toolError("invalid parameters: " + err.Error()), nil
	}
	command := strings.TrimSpace(input.Command)
	if command == "" {
		return toolError("command is required"), nil
	}

	if reason, denied := security.MatchDenyPattern(command, t.denyPatterns); denied {
		return toolError("command refused: " + reason), nil
	}

	// Deny patterns reject outright; anything merely risky (chaining,
	// pipes, redirects, subshells, background execution) is still run but
	// annotated on the result so a caller reviewing tool output can see why
	// a command was flagged.
	analysis := security.AnalyzeCommandQuoteAware(command)

	timeout := time.Duration(input.TimeoutSeconds) * time.Second

	if input.Background {
		proc, err := t.manager.startBackground(ctx, command, input.Cwd, input.Env, input.Input, timeout)
		if err != nil {
			return toolError(err.Error()), nil
		}
		return marshalResult(withRiskNotice(map[string]any{
			"status":     "running",
			"process_id": proc.id,
		}, analysis)), nil
	}

	result, err := t.manager.runSync(ctx, command, input.Cwd, input.Env, input.Input, timeout)
	if err != nil {
		return toolError(err.Error()), nil
	}
	return marshalResult(withRiskNotice(result, analysis)), nil
}

// withRiskNotice adds a "risk_notice" field to result when analysis found
// the command unsafe-but-not-denied (it ran, but contains shell syntax
// worth a second look). result may be any JSON-marshalable value,
// including the ExecResult struct runSync returns.
func withRiskNotice(result any, analysis *security.ShellAnalysis) any {
	if analysis == nil || analysis.IsSafe {
		return result
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return result
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return result
	}
	out["risk_notice"] = analysis.Reason
	return out
}

// ProcessTool inspects and manages background exec processes.
type ProcessTool struct {
	manager *Manager
}

// NewProcessTool creates a process tool.
func NewProcessTool(manager *Manager) *ProcessTool {
	return &ProcessTool{manager: manager}
}

func (t *ProcessTool) Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:        "process",
		Description: "Manage background exec processes (list, status, log, write, kill, remove).",
		Schema: mustSchema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{
					"type":        "string",
					"description": "Action: list, status, log, write, kill, remove.",
				},
				"process_id": map[string]any{
					"type":        "string",
					"description": "Process id for actions that target a process.",
				},
				"input": map[string]any{
					"type":        "string",
					"description": "Input for write action.",
				},
			},
			"required": []string{"action"},
		}),
		Timeout: 10,
	}
}

func (t *ProcessTool) Execute(ctx context.Context, args map[string]any) (*models.ToolResult, error) {
	if t.manager == nil {
		return toolError("process manager unavailable"), nil
	}
	var input struct {
		Action    string `json:"action"`
		ProcessID string `json:"process_id"`
		Input     string `json:"input"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return toolError("invalid parameters: " + err.Error()), nil
	}
	action := strings.ToLower(strings.TrimSpace(input.Action))
	if action == "" {
		return toolError("action is required"), nil
	}

	switch action {
	case "list":
		return marshalResult(map[string]any{"processes": t.manager.list()}), nil
	case "status", "log", "write", "kill", "remove":
		if strings.TrimSpace(input.ProcessID) == "" {
			return toolError("process_id is required"), nil
		}
		proc, ok := t.manager.get(strings.TrimSpace(input.ProcessID))
		if !ok {
			return toolError("process not found"), nil
		}
		switch action {
		case "status":
			return marshalResult(proc.info()), nil
		case "log":
			return marshalResult(map[string]any{
				"stdout": proc.stdout.String(),
				"stderr": proc.stderr.String(),
				"status": proc.status(),
			}), nil
		case "write":
			if proc.stdin == nil {
				return toolError("process stdin unavailable"), nil
			}
			if input.Input == "" {
				return toolError("input is required"), nil
			}
			if _, err := proc.stdin.Write([]byte(input.Input)); err != nil {
				return toolError("write stdin: " + err.Error()), nil
			}
			return marshalResult(map[string]any{"status": "written"}), nil
		case "kill":
			if proc.cmd.Process == nil {
				return toolError("process not running"), nil
			}
			if err := proc.cmd.Process.Kill(); err != nil {
				return toolError("kill process: " + err.Error()), nil
			}
			return marshalResult(map[string]any{"status": "killed"}), nil
		case "remove":
			if proc.status() == "running" {
				return toolError("process still running"), nil
			}
			if !t.manager.remove(proc.id) {
				return toolError("remove failed"), nil
			}
			return marshalResult(map[string]any{"status": "removed"}), nil
		}
	}
	return toolError("unsupported action"), nil
}
