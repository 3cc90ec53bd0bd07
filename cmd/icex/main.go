// Package main provides the entry point for the icex CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/icex/internal/config"
	"github.com/gorewood/icex/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		// Walk up to root to find the persistent flag
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// serverURL reads the --server persistent flag, falling back to the
// configured base URL.
func serverURL(cmd *cobra.Command, cfg config.Config) string {
	flag := cmd.Flags().Lookup("server")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("server")
	}
	if flag != nil && flag.Value.String() != "" {
		return flag.Value.String()
	}
	return cfg.BaseURL
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the icex CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "icex",
		Short: "Export iCity diaries to JSON, text, and Markdown",
		Long: `icex - Export the full text of an iCity diary.

icex signs in to the iCity web service, walks the paginated entry listing,
and writes three renditions of the diary:
  - a structured JSON dump for pipelines
  - a human-readable text dump
  - optionally, one Markdown file per diary day in a year/month tree

Run icex with no arguments for a guided export; every value can also be
supplied via flags, environment variables (ICITY_USERNAME, ICITY_PASSWORD),
or the config file. The password is only ever read from the environment or
an interactive prompt, never from a flag.

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Bare invocation runs the guided export
			return runExport(cmd, exportFlags{guided: true})
		},
	}

	// Load env files so credentials can live outside the shell profile.
	// Environment variables already set always take precedence.
	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		loadEnvFiles()
		return nil
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("server", "", "Override the iCity base URL")

	// Configure lipgloss for TTY detection
	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// loadEnvFiles loads env files in priority order. First match for each
// variable wins; environment variables already set always take precedence.
//
// Resolution order:
//  1. $CWD/.env.local    (per-directory override, gitignored)
//  2. $CWD/.env          (per-directory)
//  3. ~/.config/icex/env (global fallback)
func loadEnvFiles() {
	_ = config.LoadEnvFile(".env.local")
	_ = config.LoadEnvFile(".env")

	if dir := config.Dir(); dir != "" {
		_ = config.LoadEnvFile(filepath.Join(dir, "env"))
	}
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "query", Title: "Query Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newExportCmd(), "core")
	addGroupedCommand(cmd, newLoginCmd(), "core")
	addGroupedCommand(cmd, newFetchCmd(), "query")
	addGroupedCommand(cmd, newServeCmd(), "agent")
}

// addGroupedCommand adds a command to the root with a group assignment.
func addGroupedCommand(cmd *cobra.Command, sub *cobra.Command, group string) {
	sub.GroupID = group
	cmd.AddCommand(sub)
}
