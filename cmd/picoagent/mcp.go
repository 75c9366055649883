package main

import (
	"fmt"

	"picoagent/internal/config"

	"github.com/spf13/cobra"
)

// buildMcpCmd creates the "mcp" command. An MCP client/server is out of
// scope for this runtime (spec §1); this lists the MCP servers the config
// names, which is the extent of MCP picoagent's core is specified to know
// about (spec §6's mcp_servers[] config field).
func buildMcpCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "List configured MCP servers (no MCP client is implemented)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMcp(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	return cmd
}

func runMcp(cmd *cobra.Command, configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(cfg.MCPServers) == 0 {
		fmt.Fprintln(out, "no mcp_servers configured")
		return nil
	}
	for _, server := range cfg.MCPServers {
		fmt.Fprintf(out, "%-16s %s %v\n", server.Name, server.Command, server.Args)
	}
	return nil
}
