package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/icex/internal/config"
	"github.com/gorewood/icex/internal/icity"
	"github.com/gorewood/icex/internal/output"
)

// newLoginCmd creates the login command.
func newLoginCmd() *cobra.Command {
	var usernameFlag string
	var noInteractiveFlag bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials against the service",
		Long: `Sign in to iCity once to verify credentials, then discard the session.
Nothing is stored; this is a dry run for the export.

Examples:
  icex login --username alice
  ICITY_USERNAME=alice ICITY_PASSWORD=... icex login --no-interactive`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, usernameFlag, noInteractiveFlag)
		},
	}

	cmd.Flags().StringVar(&usernameFlag, "username", "", "Account name (or ICITY_USERNAME)")
	cmd.Flags().BoolVar(&noInteractiveFlag, "no-interactive", false, "Never prompt; fail when a value is missing")

	return cmd
}

// runLogin executes the login command.
func runLogin(cmd *cobra.Command, usernameFlag string, noInteractive bool) error {
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

	client, err := icity.New(serverURL(cmd, cfg), cfg.PageDelay())
	if err != nil {
		printer.Error(err)
		return err
	}

	if err := client.Login(cmd.Context(), username, password, username); err != nil {
		printer.Error(err)
		return err
	}

	printer.Success("signed in as " + username)
	return nil
}
