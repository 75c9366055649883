package main

import (
	"fmt"

	"picoagent/internal/config"
	"picoagent/internal/sessions"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// buildRunCmd creates the "run" command: a single turn through AgentLoop.
func buildRunCmd() *cobra.Command {
	var (
		configPath string
		sessionID  string
		message    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one turn through the agent loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, configPath, sessionID, message)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Session to continue (a new id is generated when empty)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "User message for this turn (required)")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func runRun(cmd *cobra.Command, configPath, sessionID, message string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(path)
	if err != nil {
		return err
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	response, err := rt.loop.RunTurn(cmd.Context(), sessionID, message)
	if response != "" {
		fmt.Fprintln(cmd.OutOrStdout(), response)
	}
	if err != nil {
		return err
	}
	return rt.persist()
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

// newSessionStoreOrDie is a small helper shared by the export/import
// commands, which only need a session store and not the full runtime.
func loadSessionsOnly(cfg *config.Config) (*sessions.Store, runtimePaths, error) {
	paths := pathsFor(cfg.WorkspaceRoot)
	store, err := sessions.Load(paths.sessions)
	if err != nil {
		return nil, paths, fmt.Errorf("load sessions: %w", err)
	}
	return store, paths, nil
}
