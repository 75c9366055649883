package main

import (
	"fmt"
	"time"

	"picoagent/internal/config"
	"picoagent/internal/memory"

	"github.com/spf13/cobra"
)

// buildPruneMemoryCmd creates the "prune-memory" command (spec §6):
// evicts vector-memory records below a minimum decayed score, optionally
// restricted to records older than a given duration.
func buildPruneMemoryCmd() *cobra.Command {
	var (
		configPath string
		olderThan  time.Duration
		minScore   float64
	)

	cmd := &cobra.Command{
		Use:   "prune-memory",
		Short: "Evict stale vector-memory records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPruneMemory(cmd, configPath, olderThan, minScore)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only consider records older than this duration (e.g. 720h)")
	cmd.Flags().Float64Var(&minScore, "min-score", 0.05, "Evict records whose decayed score falls below this")
	return cmd
}

func runPruneMemory(cmd *cobra.Command, configPath string, olderThan time.Duration, minScore float64) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	paths := pathsFor(cfg.WorkspaceRoot)
	store, err := memory.Load(paths.vectorMemory, 0, memory.DefaultConfig())
	if err != nil {
		return fmt.Errorf("load vector memory: %w", err)
	}

	now := time.Now()
	removed := 0
	if olderThan > 0 {
		removed += store.PruneOlderThan(now.Add(-olderThan))
	}
	removed += store.Prune(minScore, now)

	if err := store.Save(paths.vectorMemory); err != nil {
		return fmt.Errorf("save vector memory: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d record(s); %d remain\n", removed, store.Len())
	return nil
}
