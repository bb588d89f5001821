package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexa-tasks/nexa/internal/api"
	"github.com/nexa-tasks/nexa/internal/forms"
	"github.com/nexa-tasks/nexa/internal/router"
)

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the Nexa Tasks API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, app, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set NEXA_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set NEXA_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, app *App, email, password string) error {
	ctx := cmd.Context()

	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("NEXA_EMAIL")
	}
	if password == "" {
		password = os.Getenv("NEXA_PASSWORD")
	}

	var err error
	if email == "" {
		if !app.Interactive {
			return fmt.Errorf("email is required (use --email flag or NEXA_EMAIL env var)")
		}
		if email, err = app.promptLine("Email", app.Tokens.Email()); err != nil {
			return err
		}
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if password, err = app.promptPassword("Password"); err != nil {
			return fmt.Errorf("%w (use --password flag or NEXA_PASSWORD env var)", err)
		}
	}

	form := &forms.Login{Email: email, Password: password}
	if err := form.Validate(); err != nil {
		return err
	}

	app.Out.Info("Logging in to %s (%s)...", app.Settings.Profile, app.Client.BaseURL())

	user, err := app.Client.Login(ctx, form.Email, form.Password)
	if err != nil {
		// A 401 here has already cleared local state
		return app.fail(ctx, &userError{msg: "login failed: " + api.UserMessage(err, err.Error()), err: err})
	}

	if err := app.Login(user); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	app.Out.Success("✓ Login successful!")
	app.Out.Info("  User: %s (%s)", user.Name, user.Email)
	if user.IsAdmin() {
		app.Out.Info("  Role: Admin")
	}

	return app.Visit(ctx, router.RouteRoot, nil)
}
