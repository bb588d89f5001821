package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/nexa-tasks/nexa/internal/models"
	"github.com/nexa-tasks/nexa/internal/router"
)

// NewAdminCmd creates the admin command group
func NewAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin pages: dashboard, tasks and team members",
	}

	cmd.AddCommand(newAdminDashboardCmd(app))
	cmd.AddCommand(newAdminTasksCmd(app))
	cmd.AddCommand(newAdminMyTasksCmd(app))
	cmd.AddCommand(newCreateTaskCmd(app))
	cmd.AddCommand(newAdminUsersCmd(app))

	return cmd
}

func newAdminDashboardCmd(app *App) *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show task statistics, charts and recent tasks",
		Long: `Show task statistics, charts and recent tasks.

With --watch the dashboard is printed again on a cron schedule until
interrupted.

Examples:
  $ nexa admin dashboard
  $ nexa admin dashboard --watch "*/5 * * * *"
  $ nexa admin dashboard --watch "@every 30s"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.Open(ctx, router.RouteAdminDashboard, nil); err != nil {
				return err
			}
			if schedule == "" {
				return nil
			}
			return app.watch(ctx, schedule, func(ctx context.Context) error {
				return app.Visit(ctx, router.RouteAdminDashboard, nil)
			})
		},
	}

	cmd.Flags().StringVar(&schedule, "watch", "", "Refresh on a cron schedule (5 fields or @every <duration>)")

	return cmd
}

// watch runs refresh on a cron schedule until ctx ends or the session is lost
func (a *App) watch(ctx context.Context, schedule string, refresh func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Parse cron expression (standard 5-field format plus descriptors)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		if err := refresh(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("Refresh failed")
		}
		if a.Session.User() == nil {
			cancel()
		}
	})
	if err != nil {
		return fmt.Errorf("invalid --watch schedule '%s': %w", schedule, err)
	}

	a.Logger.Debug().Str("schedule", schedule).Msg("Watching dashboard")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	if a.Session.User() == nil {
		return errNotLoggedIn
	}
	return nil
}

func newAdminTasksCmd(app *App) *cobra.Command {
	var status, export string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List all tasks, optionally filtered by status",
		Long: `List all tasks, optionally filtered by status.

Examples:
  $ nexa admin tasks
  $ nexa admin tasks --status "In Progress"
  $ nexa admin tasks --export               # saves tasks_report.csv
  $ nexa admin tasks --export reports/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseStatusFlag(status)
			if err != nil {
				return err
			}

			page := app.taskListPage(filter)
			if cmd.Flags().Changed("export") {
				page = func(ctx context.Context, req router.Request) error {
					report, err := app.Client.ExportTasks(ctx)
					if err != nil {
						return failed("download report", err)
					}
					return app.saveReport(report, export, "tasks_report.csv")
				}
			}
			return app.Open(cmd.Context(), router.RouteAdminTasks, page)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: Pending, In Progress, Completed")
	cmd.Flags().StringVar(&export, "export", "", "Download the task report to a file or directory")
	cmd.Flags().Lookup("export").NoOptDefVal = "."

	return cmd
}

func newAdminMyTasksCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "my-tasks",
		Short: "List tasks assigned to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseStatusFlag(status)
			if err != nil {
				return err
			}
			return app.Open(cmd.Context(), router.RouteAdminMyTasks, app.myTasksPage(filter))
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: Pending, In Progress, Completed")

	return cmd
}

func parseStatusFlag(s string) (models.Status, error) {
	if s == "" {
		return "", nil
	}
	return models.ParseStatus(s)
}

// saveReport writes a downloaded report. dest may be a file path or an
// existing directory; empty or "." saves under the server's filename, or
// defaultName when the server sent none usable.
func (a *App) saveReport(report *models.Report, dest, defaultName string) error {
	path := dest
	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, reportFilename(report.Filename, defaultName))
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to access %s: %w", path, err)
	}

	if err := os.WriteFile(path, report.Body, 0644); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	a.Out.Success("✓ Report saved to %s (%d bytes)", path, len(report.Body))
	return nil
}

// reportFilename keeps only the last element of a server-supplied name so a
// report never lands outside the chosen directory
func reportFilename(name, defaultName string) string {
	name = filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))
	switch name {
	case "", ".", "..", string(filepath.Separator):
		return defaultName
	}
	return name
}
