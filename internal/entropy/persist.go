package entropy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"picoagent/pkg/models"
)

// LoadState reads AdaptiveState from path, the same atomic write-then-rename
// JSON document every picoagent store uses. A missing file is not an error:
// it means the threshold has never been persisted, so the caller gets a
// zero state and NewAdaptiveThreshold applies its defaults.
func LoadState(path string) (models.AdaptiveState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return models.AdaptiveState{}, nil
	}
	if err != nil {
		return models.AdaptiveState{}, fmt.Errorf("entropy: read threshold state: %w", err)
	}
	var state models.AdaptiveState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.AdaptiveState{}, fmt.Errorf("entropy: decode threshold state: %w", err)
	}
	return state, nil
}

// SaveState persists a's current state to path via write-then-rename.
func SaveState(path string, a *AdaptiveThreshold) error {
	payload, err := json.MarshalIndent(a.State(), "", "  ")
	if err != nil {
		return fmt.Errorf("entropy: encode threshold state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("entropy: create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0600); err != nil {
		return fmt.Errorf("entropy: write threshold state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("entropy: rename threshold state: %w", err)
	}
	return nil
}
