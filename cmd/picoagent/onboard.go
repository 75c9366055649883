package main

import (
	"fmt"
	"os"

	"picoagent/internal/config"

	"github.com/spf13/cobra"
)

// buildOnboardCmd creates the "onboard" command. Full interactive
// onboarding (provider selection, channel setup) is out of scope for this
// runtime (spec §1); this writes config.Defaults() to the config path if
// none exists yet, which is the one piece of onboarding every other command
// in this CLI depends on.
func buildOnboardCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Write a default configuration file if one does not already exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnboard(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	return cmd
}

func runOnboard(cmd *cobra.Command, configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "config already exists at %s, leaving it untouched\n", path)
		return nil
	}

	cfg := config.Defaults()
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote default config to %s (provider=%s, workspace=%s)\n", path, cfg.Provider, cfg.WorkspaceRoot)
	return nil
}
