package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/icex/internal/config"
	"github.com/gorewood/icex/internal/diary"
	"github.com/gorewood/icex/internal/icity"
	"github.com/gorewood/icex/internal/output"
)

// newFetchCmd creates the fetch command.
func newFetchCmd() *cobra.Command {
	var usernameFlag string
	var targetFlag string
	var maxPagesFlag int
	var lastFlag int
	var noInteractiveFlag bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch entries and print them without writing files",
		Long: `Fetch diary entries and print them as a table (or JSON with --json)
without writing any export files. Useful for a quick look before a full
export.

Examples:
  icex fetch --username alice --last 10      # The ten most recent entries
  icex fetch --username alice --max-pages 1  # Just the first listing page
  icex fetch --username alice --json         # Structured output for pipelines`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, usernameFlag, targetFlag, maxPagesFlag, lastFlag, noInteractiveFlag)
		},
	}

	cmd.Flags().StringVar(&usernameFlag, "username", "", "Account name (or ICITY_USERNAME)")
	cmd.Flags().StringVar(&targetFlag, "target-user", "", "User whose diary to fetch (default: the account)")
	cmd.Flags().IntVar(&maxPagesFlag, "max-pages", 0, "Stop after N listing pages (0 = all)")
	cmd.Flags().IntVar(&lastFlag, "last", 0, "Show only the last N fetched entries")
	cmd.Flags().BoolVar(&noInteractiveFlag, "no-interactive", false, "Never prompt; fail when a value is missing")

	return cmd
}

// runFetch executes the fetch command.
func runFetch(cmd *cobra.Command, usernameFlag, targetFlag string, maxPages, last int, noInteractive bool) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	cfg, err := config.LoadDefault()
	if err != nil {
		wrapped := output.NewUserError(err.Error())
		printer.Error(wrapped)
		return wrapped
	}

	interactive := !noInteractive && !isJSONMode(cmd)
	prompt := newPrompter(printer, cmd.InOrStdin())

	username, password, err := resolveCredentials(prompt, usernameFlag, interactive)
	if err != nil {
		printer.Error(err)
		return err
	}
	target, err := resolveTargetUser(prompt, targetFlag, cfg, username, interactive)
	if err != nil {
		printer.Error(err)
		return err
	}
	if maxPages == 0 {
		maxPages = cfg.MaxPages
	}

	client, err := icity.New(serverURL(cmd, cfg), cfg.PageDelay())
	if err != nil {
		printer.Error(err)
		return err
	}

	printer.Stderr("Signing in as %s...\n", username)
	if err := client.Login(cmd.Context(), username, password, target); err != nil {
		printer.Error(err)
		return err
	}

	records, err := client.FetchEntries(cmd.Context(), target, maxPages, func(page, added, total int) {
		printer.Stderr("[page %d] +%d entries (total: %d)\n", page, added, total)
	})
	if err != nil {
		printer.Error(err)
		return err
	}

	records = diary.Last(records, last)
	printRecords(printer, records)
	return nil
}

// printRecords renders fetched records as JSON or a table.
func printRecords(printer *output.Printer, records []*diary.Record) {
	if printer.IsJSON() {
		_ = printer.WriteJSON(records)
		return
	}

	if len(records) == 0 {
		printer.Println("No entries.")
		return
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		date, clock := "", ""
		if day, c, ok := record.Day(); ok {
			date, clock = day.String(), c
		}
		rows = append(rows, []string{date, clock, record.Title, record.Location, record.ID})
	}
	printer.Table([]string{"DATE", "TIME", "TITLE", "LOCATION", "ID"}, rows)
}
