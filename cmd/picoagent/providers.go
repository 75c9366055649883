package main

import (
	"fmt"

	"picoagent/internal/config"

	"github.com/spf13/cobra"
)

// buildProvidersCmd creates the "providers" command. Provider selection and
// credential wiring is specified only at the Client contract (spec §1,
// §4.6); this lists the configured provider and whether its key is
// resolvable, which is all a CLI needs to say about providers without
// re-implementing per-vendor account management.
func buildProvidersCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Show the configured model provider and credential status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProviders(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	return cmd
}

func runProviders(cmd *cobra.Command, configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "provider:        %s\n", orHeuristic(cfg.Provider))
	fmt.Fprintf(out, "chat model:      %s\n", cfg.ChatModel)
	fmt.Fprintf(out, "embedding model: %s\n", cfg.EmbeddingModel)
	if cfg.Provider == "" || cfg.Provider == "heuristic" {
		fmt.Fprintln(out, "credentials:     not required (heuristic provider)")
		return nil
	}
	if cfg.APIKey() == "" {
		fmt.Fprintf(out, "credentials:     MISSING (%s is unset)\n", cfg.APIKeyEnv)
		return nil
	}
	fmt.Fprintf(out, "credentials:     present (%s)\n", cfg.APIKeyEnv)
	return nil
}

func orHeuristic(provider string) string {
	if provider == "" {
		return "heuristic"
	}
	return provider
}
