package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// buildAgentCmd creates the "agent" command: an interactive REPL that plays
// the role of a single channel adapter reading stdin and writing stdout
// (spec §6's channel contract: poll() returns one line at a time, send()
// writes the reply). Real multi-channel adapters are out of scope (spec
// §1); this is the minimal honest implementation of that contract for a
// local terminal session.
func buildAgentCmd() *cobra.Command {
	var (
		configPath string
		sessionID  string
	)

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start an interactive session against the agent loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd, configPath, sessionID)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Session to continue (a new id is generated when empty)")
	return cmd
}

func runAgent(cmd *cobra.Command, configPath, sessionID string) error {
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

	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session %s — type a message, or Ctrl-D to exit\n", sessionID)

	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			break
		}
		message := strings.TrimSpace(in.Text())
		if message == "" {
			continue
		}
		response, err := rt.loop.RunTurn(cmd.Context(), sessionID, message)
		if err != nil {
			fmt.Fprintf(out, "(turn error: %v)\n", err)
		}
		if response != "" {
			fmt.Fprintln(out, response)
		}
	}

	return rt.persist()
}
