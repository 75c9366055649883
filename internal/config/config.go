// Package config loads and validates picoagent's JSON configuration file,
// the single source of truth for provider selection, tool policy, and
// workspace location (spec §6).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ChannelConfig is one entry under the config file's "channels" object: a
// per-adapter enable flag plus an allowlist of senders permitted to reach
// the loop. picoagent itself never dials out to a channel; this is purely
// the policy an adapter is handed at construction.
type ChannelConfig struct {
	Enabled   bool     `json:"enabled"`
	Allowlist []string `json:"allowlist,omitempty"`
}

// MCPServer names one external MCP server to connect to as a tool source.
type MCPServer struct {
	Name    string            `json:"name"`
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Config is the full decoded shape of ~/.picoagent/config.json.
type Config struct {
	Provider             string                   `json:"provider"`
	ChatModel            string                   `json:"chat_model"`
	EmbeddingModel       string                   `json:"embedding_model"`
	APIKeyEnv            string                   `json:"api_key_env"`
	MaxToolChain         int                      `json:"max_tool_chain"`
	ToolTimeoutSeconds   int                      `json:"tool_timeout_seconds"`
	ToolCacheTTLSeconds  int                      `json:"tool_cache_ttl_seconds"`
	WorkspaceRoot        string                   `json:"workspace_root"`
	Channels             map[string]ChannelConfig `json:"channels,omitempty"`
	MCPServers           []MCPServer              `json:"mcp_servers,omitempty"`
	AllowShell           bool                     `json:"allow_shell"`
	AllowFileTool        bool                     `json:"allow_file_tool"`
	RestrictToWorkspace  bool                     `json:"restrict_to_workspace"`
	ShellDenyPatterns    []string                 `json:"shell_deny_patterns,omitempty"`
}

// Error reports a malformed or missing configuration value. It is fatal at
// startup (spec §7 ConfigError): the process should print Error() and exit
// with code 2 rather than attempt to run with a partially valid config.
type Error struct {
	Field string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("config: %s is invalid", e.Field)
}

func (e *Error) Unwrap() error { return e.Cause }

// Defaults returns a Config with every field a fresh onboard would start
// from: the local heuristic provider, conservative tool policy, and a
// workspace rooted at the user's home directory.
func Defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Provider:            "heuristic",
		ChatModel:           "",
		EmbeddingModel:      "",
		APIKeyEnv:           "",
		MaxToolChain:        3,
		ToolTimeoutSeconds:  30,
		ToolCacheTTLSeconds: 60,
		WorkspaceRoot:       filepath.Join(home, "picoagent-workspace"),
		AllowShell:          false,
		AllowFileTool:       true,
		RestrictToWorkspace: true,
	}
}

// DefaultPath returns ~/.picoagent/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".picoagent", "config.json"), nil
}

// Load reads and validates the config file at path. A missing file is not
// silently defaulted here — callers that want first-run behavior should
// check os.IsNotExist themselves and invoke onboarding; Load's contract is
// "the file exists and is valid, or I tell you exactly why not."
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Field: "path", Cause: err}
	}
	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Field: "json", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants spec §6 implies: a known provider, a
// positive chain bound, and a workspace root that is actually set whenever
// file/shell tools are allowed to touch the filesystem.
func (c Config) Validate() error {
	switch c.Provider {
	case "heuristic", "anthropic", "openai", "":
	default:
		return &Error{Field: "provider", Cause: fmt.Errorf("unknown provider %q", c.Provider)}
	}
	if c.MaxToolChain < 0 {
		return &Error{Field: "max_tool_chain", Cause: fmt.Errorf("must be >= 0, got %d", c.MaxToolChain)}
	}
	if c.ToolTimeoutSeconds < 0 {
		return &Error{Field: "tool_timeout_seconds", Cause: fmt.Errorf("must be >= 0, got %d", c.ToolTimeoutSeconds)}
	}
	if (c.AllowShell || c.AllowFileTool) && strings.TrimSpace(c.WorkspaceRoot) == "" {
		return &Error{Field: "workspace_root", Cause: fmt.Errorf("required when allow_shell or allow_file_tool is set")}
	}
	if c.Provider != "heuristic" && c.Provider != "" && strings.TrimSpace(c.APIKeyEnv) == "" {
		return &Error{Field: "api_key_env", Cause: fmt.Errorf("required for provider %q", c.Provider)}
	}
	return nil
}

// Save writes cfg to path atomically with 0600 permissions, per spec §6.
func (c Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	payload, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("config: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("config: rename temp file: %w", err)
	}
	return nil
}

// APIKey resolves the provider's API key from the environment variable
// named by APIKeyEnv. It returns "" for the heuristic provider, which
// needs no key.
func (c Config) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}
