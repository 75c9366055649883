package main

import (
	"fmt"
	"io"
	"os"

	"picoagent/internal/config"

	"github.com/spf13/cobra"
)

// buildDoctorCmd creates the "doctor" command: a read-only health report
// over config, provider credentials, workspace writability, and the skills
// directory (spec §6, grounded on the teacher's own buildDoctorCmd).
func buildDoctorCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, provider credentials, and workspace health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config.json (defaults to ~/.picoagent/config.json)")
	return cmd
}

type doctorCheck struct {
	name string
	ok   bool
	note string
}

func runDoctor(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}

	var checks []doctorCheck

	info, statErr := os.Stat(path)
	switch {
	case statErr != nil:
		checks = append(checks, doctorCheck{"config file", false, fmt.Sprintf("%s: %v", path, statErr)})
		printDoctorReport(out, checks)
		return nil
	case info.Mode().Perm()&0o077 != 0:
		checks = append(checks, doctorCheck{"config file", false, fmt.Sprintf("%s has loose permissions %v, want 0600", path, info.Mode().Perm())})
	default:
		checks = append(checks, doctorCheck{"config file", true, path})
	}

	cfg, err := config.Load(path)
	if err != nil {
		checks = append(checks, doctorCheck{"config contents", false, err.Error()})
		printDoctorReport(out, checks)
		return nil
	}
	checks = append(checks, doctorCheck{"config contents", true, fmt.Sprintf("provider=%s", cfg.Provider)})

	if cfg.Provider == "heuristic" || cfg.Provider == "" {
		checks = append(checks, doctorCheck{"provider api key", true, "heuristic provider needs no key"})
	} else if cfg.APIKey() == "" {
		checks = append(checks, doctorCheck{"provider api key", false, fmt.Sprintf("%s is unset", cfg.APIKeyEnv)})
	} else {
		checks = append(checks, doctorCheck{"provider api key", true, cfg.APIKeyEnv})
	}

	if err := os.MkdirAll(cfg.WorkspaceRoot, 0o700); err != nil {
		checks = append(checks, doctorCheck{"workspace root", false, err.Error()})
	} else {
		probe := cfg.WorkspaceRoot + "/.picoagent-doctor-probe"
		if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
			checks = append(checks, doctorCheck{"workspace root", false, fmt.Sprintf("not writable: %v", err)})
		} else {
			_ = os.Remove(probe)
			checks = append(checks, doctorCheck{"workspace root", true, cfg.WorkspaceRoot})
		}
	}

	paths := pathsFor(cfg.WorkspaceRoot)
	if _, err := os.Stat(paths.skills); err != nil && !os.IsNotExist(err) {
		checks = append(checks, doctorCheck{"skills directory", false, err.Error()})
	} else {
		checks = append(checks, doctorCheck{"skills directory", true, paths.skills})
	}

	printDoctorReport(out, checks)
	return nil
}

func printDoctorReport(out io.Writer, checks []doctorCheck) {
	for _, c := range checks {
		status := "ok  "
		if !c.ok {
			status = "FAIL"
		}
		fmt.Fprintf(out, "[%s] %-20s %s\n", status, c.name, c.note)
	}
}
