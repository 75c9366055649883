package context

import (
	"fmt"
	"strings"

	"picoagent/internal/providers"
	"picoagent/pkg/models"
)

// historyWindow bounds how many prior turns are replayed verbatim into the
// dynamic block; anything older is expected to have been folded into
// MEMORY.md by DualMemoryStore.
const historyWindow = 10

// Builder assembles the per-turn message list: a stable system prompt
// computed once at construction, followed by the turn's dynamic content.
// The stable prefix never changes for the life of the Builder, which lets
// a provider-side prompt cache key off it.
type Builder struct {
	stablePrompt string
}

// NewBuilder loads the workspace files and renders the stable system
// prompt once. Rereading the workspace requires constructing a new
// Builder (e.g. after an explicit reload command).
func NewBuilder(cfg LoaderConfig) (*Builder, error) {
	files, err := LoadWorkspace(cfg)
	if err != nil {
		return nil, err
	}
	return &Builder{stablePrompt: renderStablePrompt(files)}, nil
}

// NewBuilderFromFiles constructs a Builder directly from already-loaded
// files, useful for tests and for callers that load the workspace
// themselves.
func NewBuilderFromFiles(files WorkspaceFiles) *Builder {
	return &Builder{stablePrompt: renderStablePrompt(files)}
}

// StablePrompt returns the byte-identical system prompt prefix.
func (b *Builder) StablePrompt() string {
	return b.stablePrompt
}

// Input bundles the turn-varying content the dynamic block is built from.
type Input struct {
	SkillPrompts   []string
	MemorySnippets []string
	History        []models.Turn
	UserMessage    string
}

// Build renders the full message list for a turn: the stable system
// prompt, then skill prompts, memory snippets, a bounded window of recent
// history, and finally the current user message.
func (b *Builder) Build(in Input) []providers.ChatMessage {
	messages := []providers.ChatMessage{{Role: "system", Content: b.stablePrompt}}

	if dynamic := renderDynamicBlock(in.SkillPrompts, in.MemorySnippets); dynamic != "" {
		messages = append(messages, providers.ChatMessage{Role: "system", Content: dynamic})
	}

	for _, turn := range recentWindow(in.History, historyWindow) {
		messages = append(messages, providers.ChatMessage{Role: "user", Content: turn.UserMessage})
		if turn.Response != "" {
			messages = append(messages, providers.ChatMessage{Role: "assistant", Content: turn.Response})
		}
	}

	messages = append(messages, providers.ChatMessage{Role: "user", Content: in.UserMessage})
	return messages
}

func renderStablePrompt(files WorkspaceFiles) string {
	var parts []string
	if files.Soul != "" {
		parts = append(parts, strings.TrimSpace(files.Soul))
	}
	if files.Agents != "" {
		parts = append(parts, strings.TrimSpace(files.Agents))
	}

	identity := ParseIdentity(files.Identity)
	if identity.Name != "" {
		line := fmt.Sprintf("Your name is %s.", identity.Name)
		if identity.Vibe != "" {
			line += fmt.Sprintf(" Your vibe is %s.", identity.Vibe)
		}
		parts = append(parts, line)
	}

	user := ParseUserProfile(files.User)
	if user.Name != "" {
		addr := user.PreferredAddress
		if addr == "" {
			addr = user.Name
		}
		line := fmt.Sprintf("You are talking to %s (address them as %s).", user.Name, addr)
		if user.Timezone != "" {
			line += fmt.Sprintf(" Their timezone is %s.", user.Timezone)
		}
		parts = append(parts, line)
	}

	if files.Tools != "" {
		parts = append(parts, strings.TrimSpace(files.Tools))
	}

	return strings.Join(parts, "\n\n")
}

func renderDynamicBlock(skillPrompts, memorySnippets []string) string {
	var parts []string
	if len(skillPrompts) > 0 {
		parts = append(parts, "Active skills:\n"+strings.Join(skillPrompts, "\n---\n"))
	}
	if len(memorySnippets) > 0 {
		parts = append(parts, "Relevant memories:\n"+strings.Join(memorySnippets, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func recentWindow(history []models.Turn, n int) []models.Turn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
