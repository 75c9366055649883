package main

import (
	"fmt"

	"picoagent/internal/config"

	"github.com/spf13/cobra"
)

// buildGatewayCmd creates the "gateway" command. A real multi-channel
// gateway (Telegram/Discord/Slack/WhatsApp/Email adapters dialing out to
// AgentLoop) is out of scope for this runtime (spec §1) — only the
// channel contract's shape is specified. This prints which channels the
// config has enabled so an operator can see what a gateway process would
// otherwise drive, without this binary pretending to run one.
func buildGatewayCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "List the channels this config enables (no adapters are implemented)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGateway(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	return cmd
}

func runGateway(cmd *cobra.Command, configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(cfg.Channels) == 0 {
		fmt.Fprintln(out, "no channels configured; use `picoagent agent` for an interactive local session")
		return nil
	}
	for name, ch := range cfg.Channels {
		fmt.Fprintf(out, "%-12s enabled=%v allowlist=%v\n", name, ch.Enabled, ch.Allowlist)
	}
	return nil
}
