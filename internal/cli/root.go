package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nexa-tasks/nexa/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree around a fresh app
func NewRootCmd(app *commands.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nexa",
		Short: "Nexa Tasks - task management from the terminal",
		Long: `Nexa CLI - Manage tasks, team members and dashboards of a Nexa Tasks server.

Admins create and assign tasks and manage the team; members work through
their assigned tasks and checklists.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip setup for commands that never talk to the API
			if cmd.Name() == "version" || cmd.Name() == "select-profile" {
				return nil
			}
			return app.Setup(cmd)
		},
	}

	// --api_url and --api-url name the same flag
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&app.Flags.Profile, "profile", "p", "", "API profile to use (or set NEXA_PROFILE)")
	flags.StringVar(&app.Flags.APIURL, "api-url", "", "API base URL (or set NEXA_API_URL)")
	flags.DurationVar(&app.Flags.Timeout, "timeout", 0, "Request timeout (default 10s, or set NEXA_TIMEOUT)")
	flags.StringVar(&app.Flags.TokenStore, "token-store", "", "Token storage: keyring, file or memory (or set NEXA_TOKEN_STORE)")
	flags.StringVar(&app.Flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error (or set NEXA_LOG_LEVEL)")
	flags.StringVar(&app.Flags.LogFormat, "log-format", "", "Log format: console or json (or set NEXA_LOG_FORMAT)")
	flags.BoolVar(&app.JSON, "json", false, "Print JSON instead of tables")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nexa version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd(app))
	rootCmd.AddCommand(commands.NewSignupCmd(app))
	rootCmd.AddCommand(commands.NewLogoutCmd(app))
	rootCmd.AddCommand(commands.NewOpenCmd(app))
	rootCmd.AddCommand(commands.NewDashboardCmd(app))
	rootCmd.AddCommand(commands.NewAdminCmd(app))
	rootCmd.AddCommand(commands.NewUserCmd(app))
	rootCmd.AddCommand(commands.NewProfileCmd(app))
	rootCmd.AddCommand(commands.NewAvatarCmd(app))
	rootCmd.AddCommand(commands.NewPasswordCmd(app))
	rootCmd.AddCommand(commands.NewWhoamiCmd(app))
	rootCmd.AddCommand(commands.NewSelectProfileCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(commands.NewApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
