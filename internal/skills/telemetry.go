package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// UsageRecorder appends one JSON line per skill activation to a durable
// telemetry file, per spec's skill_usage.jsonl format.
type UsageRecorder struct {
	mu   sync.Mutex
	path string
}

// NewUsageRecorder constructs a recorder writing to path.
func NewUsageRecorder(path string) *UsageRecorder {
	return &UsageRecorder{path: path}
}

type usageRecord struct {
	Timestamp time.Time `json:"ts"`
	Skill     string    `json:"skill"`
	SessionID string    `json:"session_id"`
}

// RecordUse appends one usage line. Errors are the caller's to log; they
// never affect the turn.
func (r *UsageRecorder) RecordUse(skillName, sessionID string, ts time.Time) error {
	line, err := json.Marshal(usageRecord{Timestamp: ts, Skill: skillName, SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("encode usage record: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open usage log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write usage record: %w", err)
	}
	return nil
}
