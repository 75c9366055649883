// Package main provides the CLI entry point for picoagent.
//
// picoagent is a local-first assistant runtime that routes a message to at
// most one tool call per turn, gated by the Shannon entropy of a scored
// candidate distribution, and asks a clarifying question whenever that
// distribution is too ambiguous to act on confidently.
//
// # Basic usage
//
//	picoagent run --message "what's on my calendar today"
//	picoagent doctor
//	picoagent threshold-stats
//	picoagent export-session <id> --out session.json
//	picoagent import-session session.json
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"picoagent/internal/observability"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	obs := observability.NewLogger(observability.LogConfig{
		Level:  os.Getenv("PICOAGENT_LOG_LEVEL"),
		Format: "json",
		Output: os.Stderr,
	})

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		code := exitCodeFor(err)
		obs.Error(context.Background(), "command failed", "error", err, "exit_code", code)
		os.Exit(code)
	}
}

// buildRootCmd assembles the command tree. Separated from main for testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "picoagent",
		Short: "picoagent - a local, entropy-gated personal assistant runtime",
		Long: `picoagent routes each message through recall, skill selection, entropy-gated
tool scoring, and bounded tool chaining, falling back to a clarifying
question whenever the scored candidates are too ambiguous to act on.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildRunCmd(),
		buildDoctorCmd(),
		buildThresholdStatsCmd(),
		buildPruneMemoryCmd(),
		buildExportSessionCmd(),
		buildImportSessionCmd(),
		buildOnboardCmd(),
		buildAgentCmd(),
		buildGatewayCmd(),
		buildProvidersCmd(),
		buildToolsCmd(),
		buildMcpCmd(),
		buildImportSkillsCmd(),
		buildInstallSkillCmd(),
		buildReloadSkillsCmd(),
	)

	return rootCmd
}
