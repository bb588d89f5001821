package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexa-tasks/nexa/internal/router"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove stored credentials for the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd, app)
		},
	}
}

func runLogout(cmd *cobra.Command, app *App) error {
	// Stored values go first so a failure below never leaves a usable token
	if err := app.Tokens.Clear(); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	app.Session.Clear()

	app.Out.Success("✓ Logged out of %s", app.Settings.Profile)
	return app.Visit(cmd.Context(), router.RouteLogin, nil)
}
