package main

import (
	"encoding/json"
	"fmt"
	"os"

	"picoagent/internal/config"
	"picoagent/pkg/models"

	"github.com/spf13/cobra"
)

// buildExportSessionCmd creates "export-session <id>" (spec §6): writes a
// single SessionState to a standalone JSON file for backup or transfer.
func buildExportSessionCmd() *cobra.Command {
	var (
		configPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export-session <id>",
		Short: "Export a session to a standalone JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportSession(cmd, configPath, args[0], outPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (defaults to <session-id>.json)")
	return cmd
}

func runExportSession(cmd *cobra.Command, configPath, sessionID, outPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	store, _, err := loadSessionsOnly(cfg)
	if err != nil {
		return err
	}

	state, ok := store.Export(sessionID)
	if !ok {
		return fmt.Errorf("session %q not found", sessionID)
	}

	if outPath == "" {
		outPath = sessionID + ".json"
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(outPath, payload, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported session %s to %s\n", sessionID, outPath)
	return nil
}

// buildImportSessionCmd creates "import-session <file>" (spec §6): loads a
// previously exported SessionState back into the session store.
func buildImportSessionCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "import-session <file>",
		Short: "Import a session from a standalone JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportSession(cmd, configPath, args[0])
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	return cmd
}

func runImportSession(cmd *cobra.Command, configPath, inPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}
	var state models.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decode %s: %w", inPath, err)
	}
	if state.SessionID == "" {
		return fmt.Errorf("%s has no session_id", inPath)
	}

	store, _, err := loadSessionsOnly(cfg)
	if err != nil {
		return err
	}
	store.Put(&state)
	if err := store.Save(); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported session %s from %s\n", state.SessionID, inPath)
	return nil
}
