package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexa-tasks/nexa/internal/router"
)

// NewUserCmd creates the member command group
func NewUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"me"},
		Short:   "Member pages: dashboard, assigned tasks and checklists",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dashboard",
		Short: "Show statistics of your assigned tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Open(cmd.Context(), router.RouteUserDashboard, nil)
		},
	})
	cmd.AddCommand(newUserTasksCmd(app))
	cmd.AddCommand(newUserTaskCmd(app))

	return cmd
}

func newUserTasksCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List your assigned tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseStatusFlag(status)
			if err != nil {
				return err
			}
			return app.Open(cmd.Context(), router.RouteUserTasks, app.taskListPage(filter))
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: Pending, In Progress, Completed")

	return cmd
}

func newUserTaskCmd(app *App) *cobra.Command {
	var toggle []int
	var status string

	cmd := &cobra.Command{
		Use:   "task <task-id>",
		Short: "Show a task, tick checklist items or change its status",
		Long: `Show a task, tick checklist items or change its status.

Checklist items are numbered from 1 as shown in the task details. Ticking
items recalculates progress and status on the server.

Examples:
  $ nexa user task 65f0c2...
  $ nexa user task 65f0c2... --toggle 1 --toggle 3
  $ nexa user task 65f0c2... --status Completed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			if len(toggle) == 0 && status == "" {
				return app.Open(cmd.Context(), router.UserTaskDetails(taskID), nil)
			}

			return app.Open(cmd.Context(), router.UserTaskDetails(taskID), func(ctx context.Context, req router.Request) error {
				return updateUserTask(ctx, app, req.Param("id"), toggle, status)
			})
		},
	}

	cmd.Flags().IntSliceVarP(&toggle, "toggle", "t", nil, "Checklist item number to tick or untick (repeatable)")
	cmd.Flags().StringVar(&status, "status", "", "Set status: Pending, In Progress, Completed")

	return cmd
}

func updateUserTask(ctx context.Context, app *App, taskID string, toggle []int, status string) error {
	task, err := app.Client.GetTask(ctx, taskID)
	if err != nil {
		return failed("load task", err)
	}

	if len(toggle) > 0 {
		items := append(task.TodoChecklist[:0:0], task.TodoChecklist...)
		for _, n := range toggle {
			if n < 1 || n > len(items) {
				return fmt.Errorf("checklist item %d does not exist (task has %d items)", n, len(items))
			}
			items[n-1].Completed = !items[n-1].Completed
		}

		if task, err = app.Client.UpdateChecklist(ctx, taskID, items); err != nil {
			return failed("update checklist", err)
		}
		app.Out.Success("✓ Checklist updated")
	}

	if status != "" {
		s, err := parseStatusFlag(status)
		if err != nil {
			return err
		}
		if task, err = app.Client.UpdateTaskStatus(ctx, taskID, s); err != nil {
			return failed("update status", err)
		}
		app.Out.Success("✓ Status set to %s", task.Status)
	}

	return app.Out.TaskDetails(task)
}
