package models

import "encoding/json"

// ToolDescriptor is the static, registered shape of a tool: its name,
// description, and a JSON-schema subset describing its parameters.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema"`
	Timeout     int             `json:"timeout_seconds"`

	// Cacheable opts a tool out of result caching when explicitly set to
	// false; zero-value descriptors (the common case) default to
	// cacheable, matching the spec's "opt out per descriptor" framing.
	Cacheable *bool `json:"cacheable,omitempty"`
}

// CacheEnabled reports whether this descriptor allows result caching.
// Descriptors that never set Cacheable default to true.
func (d ToolDescriptor) CacheEnabled() bool {
	return d.Cacheable == nil || *d.Cacheable
}

// ToolResult is the outcome of executing a tool.
type ToolResult struct {
	Success bool            `json:"success"`
	Content string          `json:"content,omitempty"`
	Error   string          `json:"error,omitempty"`
	Cached  bool            `json:"cached,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

// ToolScores holds the per-candidate-tool distribution produced by the
// scoring stage, and the entropy derived from it.
type ToolScores struct {
	Candidates map[string]float64 `json:"candidates"`
	Entropy    float64            `json:"entropy_bits"`
}

// Decision is the AgentLoop's routing verdict for a turn.
type Decision string

const (
	DecisionAct     Decision = "act"
	DecisionClarify Decision = "clarify"
	DecisionNoTool  Decision = "no_tool"
)

// RoutingDecision is the full output of EntropyScheduler.Decide: which way
// the gate swung, which tool (if any) to act on, the confidence in that
// choice, and — for a Clarify — the reason a human can be shown.
type RoutingDecision struct {
	Decision   Decision `json:"decision"`
	ToolName   string   `json:"tool_name,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Entropy    float64  `json:"entropy_bits"`
}

// AdaptiveOutcome is one observed turn outcome fed to AdaptiveThreshold.Observe,
// retained in a bounded ring for Stats().
type AdaptiveOutcome struct {
	Acted   bool    `json:"acted"`
	Success bool    `json:"success"`
	Entropy float64 `json:"entropy"`
}

// AdaptiveState is the persisted state of the adaptive confidence
// threshold: its current value, the learning rate, and a bounded ring of
// recent outcomes used to compute win_rate/sample_count in Stats().
type AdaptiveState struct {
	Threshold    float64           `json:"threshold"`
	LearningRate float64           `json:"learning_rate"`
	Outcomes     []AdaptiveOutcome `json:"outcomes"`
}
