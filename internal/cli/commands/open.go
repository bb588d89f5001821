package commands

import (
	"github.com/spf13/cobra"

	"github.com/nexa-tasks/nexa/internal/router"
)

// NewOpenCmd creates the open command
func NewOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open [route]",
		Short: "Open a client route through the access guard",
		Long: `Open a client route through the access guard.

Without a route, the home route is opened and you are sent to the dashboard
that matches your role, or to the login page.

Examples:
  $ nexa open
  $ nexa open /admin/users
  $ nexa open /user/task-details/66f1c2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route := router.RouteRoot
			if len(args) > 0 {
				route = args[0]
			}
			return app.Open(cmd.Context(), route, nil)
		},
	}
}

// NewDashboardCmd creates the dashboard command, the home route of the
// logged-in user
func NewDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"home"},
		Short:   "Show the dashboard for your role",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Open(cmd.Context(), router.RouteRoot, nil)
		},
	}
}
