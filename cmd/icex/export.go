// Package main provides the entry point for the icex CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/icex/internal/config"
	"github.com/gorewood/icex/internal/diary"
	"github.com/gorewood/icex/internal/export"
	"github.com/gorewood/icex/internal/icity"
	"github.com/gorewood/icex/internal/output"
)

// exportFlags holds the export command's flag values. The zero value means
// "ask or use configured defaults".
type exportFlags struct {
	username      string
	targetUser    string
	outputDir     string
	prefix        string
	maxPages      int
	noMarkdown    bool
	noInteractive bool
	// guided marks a bare invocation, which walks through every question
	// including the Markdown one.
	guided bool
}

// exportOptions is the fully resolved input for one export run.
type exportOptions struct {
	serverURL  string
	username   string
	password   string
	targetUser string
	outputDir  string
	prefix     string
	maxPages   int
	delay      time.Duration
	markdown   bool
}

// exportResult summarizes what an export run wrote.
type exportResult struct {
	Total         int    `json:"total"`
	JSONPath      string `json:"json_path"`
	TextPath      string `json:"text_path"`
	MarkdownRoot  string `json:"markdown_root,omitempty"`
	MarkdownFiles int    `json:"markdown_files,omitempty"`
}

// newExportCmd creates the export command.
func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Sign in, fetch every diary entry, and write the dumps",
		Long: `Sign in to iCity, fetch every diary entry, and write the export files.

Anything not supplied via flags is prompted for interactively; pass
--no-interactive (or --json) to fail instead of prompting. The password is
read from ICITY_PASSWORD or an interactive prompt, never from a flag.

Examples:
  icex export                                      # Guided export
  icex export --username alice                     # Prompt only for the password
  ICITY_PASSWORD=... icex export --username alice --no-interactive
  icex export --username alice --target-user bob   # Export another visible diary
  icex export --username alice --max-pages 3       # Cap the crawl while testing
  icex export --username alice --no-markdown       # Skip the per-day Markdown tree`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.username, "username", "", "Account name (or ICITY_USERNAME)")
	cmd.Flags().StringVar(&flags.targetUser, "target-user", "", "User whose diary to export (default: the account)")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for the export files (default ./export)")
	cmd.Flags().StringVar(&flags.prefix, "prefix", "", "Filename prefix (default icity_<user>_diary_export)")
	cmd.Flags().IntVar(&flags.maxPages, "max-pages", 0, "Stop after N listing pages (0 = all)")
	cmd.Flags().BoolVar(&flags.noMarkdown, "no-markdown", false, "Skip the per-day Markdown tree")
	cmd.Flags().BoolVar(&flags.noInteractive, "no-interactive", false, "Never prompt; fail when a value is missing")

	return cmd
}

// runExport executes the export command.
func runExport(cmd *cobra.Command, flags exportFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	cfg, err := config.LoadDefault()
	if err != nil {
		wrapped := output.NewUserError(err.Error())
		printer.Error(wrapped)
		return wrapped
	}

	opts, err := resolveExportOptions(cmd, printer, cfg, flags)
	if err != nil {
		printer.Error(err)
		return err
	}

	records, err := fetchRecords(cmd, printer, opts)
	if err != nil {
		printer.Error(err)
		return err
	}

	if len(records) == 0 {
		printer.Warn("no entries found; check the account's permissions or the target user")
	}

	result, err := writeOutputs(records, opts)
	if err != nil {
		printer.Error(err)
		return err
	}

	printSummary(printer, result)
	return nil
}

// resolveExportOptions turns flags, environment, config, and prompts into a
// complete option set. JSON mode implies non-interactive.
func resolveExportOptions(cmd *cobra.Command, printer *output.Printer, cfg config.Config, flags exportFlags) (exportOptions, error) {
	interactive := !flags.noInteractive && !isJSONMode(cmd)
	prompt := newPrompter(printer, cmd.InOrStdin())

	opts := exportOptions{
		serverURL: serverURL(cmd, cfg),
		outputDir: flags.outputDir,
		prefix:    flags.prefix,
		maxPages:  flags.maxPages,
		delay:     cfg.PageDelay(),
	}
	if opts.maxPages == 0 {
		opts.maxPages = cfg.MaxPages
	}

	username, password, err := resolveCredentials(prompt, flags.username, interactive)
	if err != nil {
		return opts, err
	}
	opts.username = username
	opts.password = password

	opts.targetUser, err = resolveTargetUser(prompt, flags.targetUser, cfg, username, interactive)
	if err != nil {
		return opts, err
	}

	if err := resolveOutputLayout(prompt, cfg, &opts, interactive); err != nil {
		return opts, err
	}

	opts.markdown, err = resolveMarkdown(prompt, cfg, flags.noMarkdown, interactive && flags.guided)
	if err != nil {
		return opts, err
	}

	return opts, nil
}

// resolveCredentials resolves the account name and password. The password
// comes from ICITY_PASSWORD or a masked prompt only.
func resolveCredentials(prompt *prompter, usernameFlag string, interactive bool) (string, string, error) {
	username := usernameFlag
	if username == "" {
		username = os.Getenv("ICITY_USERNAME")
	}
	if username == "" {
		if !interactive {
			return "", "", output.NewUserError("provide --username or set ICITY_USERNAME")
		}
		var err error
		username, err = prompt.String("Account name", "")
		if err != nil {
			return "", "", err
		}
	}
	if strings.TrimSpace(username) == "" {
		return "", "", output.NewUserError("the account name must not be empty")
	}

	password := os.Getenv("ICITY_PASSWORD")
	if password == "" {
		if !interactive {
			return "", "", output.NewUserError("set ICITY_PASSWORD to run without prompts")
		}
		var err error
		password, err = prompt.Secret("Password")
		if err != nil {
			return "", "", err
		}
	}
	if password == "" {
		return "", "", output.NewUserError("the password must not be empty")
	}

	return username, password, nil
}

// resolveTargetUser picks whose diary to export, defaulting to the account
// itself.
func resolveTargetUser(prompt *prompter, targetFlag string, cfg config.Config, username string, interactive bool) (string, error) {
	target := targetFlag
	if target == "" {
		target = cfg.TargetUser
	}
	if target == "" && interactive {
		answered, err := prompt.String("Target user", username)
		if err != nil {
			return "", err
		}
		target = answered
	}
	if target == "" {
		target = username
	}
	return target, nil
}

// resolveOutputLayout fills in the output directory and filename prefix.
func resolveOutputLayout(prompt *prompter, cfg config.Config, opts *exportOptions, interactive bool) error {
	if opts.outputDir == "" {
		if interactive {
			dir, err := prompt.String("Output directory", cfg.OutputDir)
			if err != nil {
				return err
			}
			opts.outputDir = dir
		} else {
			opts.outputDir = cfg.OutputDir
		}
	}

	defaultPrefix := cfg.Prefix
	if defaultPrefix == "" {
		defaultPrefix = "icity_" + opts.targetUser + "_diary_export"
	}
	if opts.prefix == "" {
		if interactive {
			prefix, err := prompt.String("Filename prefix", defaultPrefix)
			if err != nil {
				return err
			}
			opts.prefix = prefix
		} else {
			opts.prefix = defaultPrefix
		}
	}
	return nil
}

// resolveMarkdown decides whether to write the per-day Markdown tree. Only
// the guided run asks; `export` derives the answer from --no-markdown and
// the config file.
func resolveMarkdown(prompt *prompter, cfg config.Config, noMarkdown, ask bool) (bool, error) {
	if noMarkdown {
		return false, nil
	}
	if ask {
		return prompt.YesNo("Write per-day Markdown files?", cfg.WantMarkdown())
	}
	return cfg.WantMarkdown(), nil
}

// fetchRecords signs in and crawls the full entry listing, reporting
// per-page progress on stderr.
func fetchRecords(cmd *cobra.Command, printer *output.Printer, opts exportOptions) ([]*diary.Record, error) {
	client, err := icity.New(opts.serverURL, opts.delay)
	if err != nil {
		return nil, err
	}

	printer.Stderr("Signing in as %s...\n", opts.username)
	if err := client.Login(cmd.Context(), opts.username, opts.password, opts.targetUser); err != nil {
		return nil, err
	}

	printer.Stderr("Fetching entries for %s...\n", opts.targetUser)
	records, err := client.FetchEntries(cmd.Context(), opts.targetUser, opts.maxPages, func(page, added, total int) {
		printer.Stderr("[page %d] +%d entries (total: %d)\n", page, added, total)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// writeOutputs writes the JSON dump, the text dump, and (when enabled) the
// Markdown tree under the output directory.
func writeOutputs(records []*diary.Record, opts exportOptions) (*exportResult, error) {
	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return nil, output.NewIOError("creating "+opts.outputDir, err)
	}

	result := &exportResult{
		Total:    len(records),
		JSONPath: filepath.Join(opts.outputDir, opts.prefix+".json"),
		TextPath: filepath.Join(opts.outputDir, opts.prefix+".txt"),
	}

	if err := export.WriteJSONDump(result.JSONPath, records); err != nil {
		return nil, err
	}
	if err := export.WriteTextDump(result.TextPath, records); err != nil {
		return nil, err
	}

	if opts.markdown {
		root := filepath.Join(opts.outputDir, opts.prefix+"_md")
		written, err := export.WriteMarkdownTree(records, root)
		if err != nil {
			return nil, err
		}
		result.MarkdownRoot = root
		result.MarkdownFiles = written
	}

	return result, nil
}

// printSummary reports what the run wrote.
func printSummary(printer *output.Printer, result *exportResult) {
	if printer.IsJSON() {
		_ = printer.WriteJSON(result)
		return
	}

	printer.Success(fmt.Sprintf("exported %d entries", result.Total))
	printer.KeyValue("JSON", result.JSONPath)
	printer.KeyValue("Text", result.TextPath)
	if result.MarkdownRoot != "" {
		printer.KeyValue("Markdown", fmt.Sprintf("%s (%d files)", result.MarkdownRoot, result.MarkdownFiles))
	}
}
