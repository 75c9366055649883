package main

import (
	"fmt"

	"picoagent/internal/config"
	"picoagent/internal/entropy"

	"github.com/spf13/cobra"
)

// buildThresholdStatsCmd creates the "threshold-stats" command: prints the
// adaptive threshold's current value and its recent win rate (spec §6).
func buildThresholdStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "threshold-stats",
		Short: "Print the adaptive confidence threshold's current value and win rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThresholdStats(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	return cmd
}

func runThresholdStats(cmd *cobra.Command, configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	paths := pathsFor(cfg.WorkspaceRoot)
	state, err := entropy.LoadState(paths.threshold)
	if err != nil {
		return err
	}
	threshold := entropy.NewAdaptiveThreshold(state)
	value, winRate, samples := threshold.Stats()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "threshold:    %.4f bits\n", value)
	fmt.Fprintf(out, "win rate:     %.2f%% (over %d retained outcomes)\n", winRate*100, samples)
	return nil
}
