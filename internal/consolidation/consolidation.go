// Package consolidation implements DualMemoryStore (spec §4.7): background
// folding of long session histories into two durable Markdown artifacts,
// HISTORY.md and MEMORY.md, so old turns can drop out of the per-turn
// context window without being lost.
package consolidation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"picoagent/internal/providers"
	"picoagent/pkg/models"
)

// DefaultK is how many unconsolidated turns accumulate before a
// consolidation pass is scheduled (spec §4.7).
const DefaultK = 20

const consolidationSystemPrompt = `You summarize a slice of a conversation for long-term storage.
Respond in exactly this format, nothing else:
HISTORY: <one line chronicling what happened in this slice>
BULLET: <a durable fact or preference worth remembering long-term>
BULLET: <a second durable fact, or omit this line if there isn't one>
BULLET: <a third durable fact, or omit this line if there isn't one>`

// Result is what one consolidation pass produced.
type Result struct {
	HistoryLine string
	Bullets     []string
}

// Store owns the two on-disk artifacts and the one-task-per-session
// in-flight guard (spec §4.7: "only one consolidation task runs per
// session_id concurrently; a second trigger is coalesced").
type Store struct {
	mu          sync.Mutex
	fileMu      sync.Mutex
	historyPath string
	memoryPath  string
	client      providers.Client
	logger      *slog.Logger
	running     map[string]bool
}

// New constructs a Store writing HISTORY.md and MEMORY.md under
// workspaceRoot, consolidating via client.
func New(workspaceRoot string, client providers.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		historyPath: filepath.Join(workspaceRoot, "HISTORY.md"),
		memoryPath:  filepath.Join(workspaceRoot, "MEMORY.md"),
		client:      client,
		logger:      logger,
		running:     make(map[string]bool),
	}
}

// ShouldTrigger reports whether history has accumulated K or more
// unconsolidated turns.
func ShouldTrigger(history []models.Turn, offset, k int) bool {
	if k <= 0 {
		k = DefaultK
	}
	return len(history)-offset >= k
}

// TriggerAsync schedules a background consolidation of history[offset :
// offset+k) for sessionID, if one is not already running for that session.
// onSuccess is invoked with the new offset once the pass completes and its
// artifacts are durably written; it is the caller's job to advance
// SessionState.ConsolidationOffset and persist it. A failed pass logs and
// never calls onSuccess, leaving the offset untouched so the same window is
// retried on the next trigger.
func (s *Store) TriggerAsync(sessionID string, history []models.Turn, offset, k int, onSuccess func(newOffset int)) {
	if k <= 0 {
		k = DefaultK
	}
	end := offset + k
	if end > len(history) {
		end = len(history)
	}
	if end <= offset {
		return
	}

	s.mu.Lock()
	if s.running[sessionID] {
		s.mu.Unlock()
		return
	}
	s.running[sessionID] = true
	s.mu.Unlock()

	window := append([]models.Turn(nil), history[offset:end]...)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.running, sessionID)
			s.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := s.consolidate(ctx, sessionID, window)
		if err != nil {
			s.logger.Warn("consolidation failed", "session_id", sessionID, "error", err)
			return
		}
		if err := s.appendArtifacts(sessionID, result); err != nil {
			s.logger.Warn("consolidation artifact write failed", "session_id", sessionID, "error", err)
			return
		}
		if onSuccess != nil {
			onSuccess(end)
		}
	}()
}

func (s *Store) consolidate(ctx context.Context, sessionID string, window []models.Turn) (Result, error) {
	var b strings.Builder
	for _, t := range window {
		fmt.Fprintf(&b, "user: %s\n", t.UserMessage)
		if t.Response != "" {
			fmt.Fprintf(&b, "assistant: %s\n", t.Response)
		}
	}

	reply, err := s.client.Chat(ctx, []providers.ChatMessage{
		{Role: "system", Content: consolidationSystemPrompt},
		{Role: "user", Content: b.String()},
	})
	if err != nil {
		return Result{}, fmt.Errorf("consolidation: chat: %w", err)
	}
	return parseConsolidation(reply), nil
}

func parseConsolidation(reply string) Result {
	var result Result
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "HISTORY:"):
			result.HistoryLine = strings.TrimSpace(strings.TrimPrefix(line, "HISTORY:"))
		case strings.HasPrefix(line, "BULLET:"):
			bullet := strings.TrimSpace(strings.TrimPrefix(line, "BULLET:"))
			if bullet != "" {
				result.Bullets = append(result.Bullets, bullet)
			}
		}
	}
	if len(result.Bullets) > 3 {
		result.Bullets = result.Bullets[:3]
	}
	if result.HistoryLine == "" {
		result.HistoryLine = strings.TrimSpace(reply)
	}
	return result
}

// appendArtifacts writes the history line and semantic bullets atomically:
// each file is read in full, the new content appended in memory, and the
// result written via write-then-rename, so a crash mid-write never leaves
// a truncated artifact (spec §8 Atomicity).
func (s *Store) appendArtifacts(sessionID string, result Result) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	if result.HistoryLine != "" {
		line := fmt.Sprintf("- %s — %s (session %s)\n", time.Now().UTC().Format(time.RFC3339), result.HistoryLine, sessionID)
		if err := appendAtomic(s.historyPath, line); err != nil {
			return fmt.Errorf("consolidation: write history: %w", err)
		}
	}
	if len(result.Bullets) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "\n## %s — session %s\n", time.Now().UTC().Format("2006-01-02"), sessionID)
		for _, bullet := range result.Bullets {
			fmt.Fprintf(&b, "- %s\n", bullet)
		}
		if err := appendAtomic(s.memoryPath, b.String()); err != nil {
			return fmt.Errorf("consolidation: write memory: %w", err)
		}
	}
	return nil
}

func appendAtomic(path, suffix string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	content := append(existing, []byte(suffix)...)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
