package main

import (
	"fmt"

	"picoagent/internal/config"
	"picoagent/internal/memory"
	"picoagent/internal/providers"
	"picoagent/internal/tools"

	"github.com/spf13/cobra"
)

// buildToolsCmd creates the "tools" command: lists every tool the registry
// would register for the current config, per the tool registry protocol
// (spec §4.4, the one piece of the tool surface that is in scope).
func buildToolsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools this config registers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTools(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	return cmd
}

func runTools(cmd *cobra.Command, configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	registry := tools.NewRegistry(0, 1, nil)
	if err := registerTools(registry, cfg); err != nil {
		return err
	}
	memStore := memory.NewStore(memory.DefaultConfig(), nil)
	if err := registerMemoryTools(registry, memStore, providers.NewHeuristicClient()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	descriptors := registry.List()
	if len(descriptors) == 0 {
		fmt.Fprintln(out, "no tools registered (allow_shell and allow_file_tool are both false)")
		return nil
	}
	for _, d := range descriptors {
		fmt.Fprintf(out, "%-12s %s\n", d.Name, d.Description)
	}
	return nil
}
