package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nexa-tasks/nexa/internal/api"
	"github.com/nexa-tasks/nexa/internal/forms"
	"github.com/nexa-tasks/nexa/internal/models"
	"github.com/nexa-tasks/nexa/internal/router"
)

type createTaskOptions struct {
	id          string
	title       string
	description string
	priority    string
	due         string
	assign      []string
	todos       []string
	attachments []string
	remove      bool
	yes         bool
}

func newCreateTaskCmd(app *App) *cobra.Command {
	var opts createTaskOptions

	cmd := &cobra.Command{
		Use:   "create-task",
		Short: "Create, edit or delete a task",
		Long: `Create, edit or delete a task.

Missing fields are asked for in a form when running in a terminal. With
--id the task is loaded first and only the given flags change it.

Examples:
  $ nexa admin create-task
  $ nexa admin create-task --title "Ship v2" --description "Release notes and tag" \
      --priority High --due 2026-11-01 --assign <user-id> --todo "Write notes" --todo "Tag"
  $ nexa admin create-task --id <task-id> --priority Low
  $ nexa admin create-task --id <task-id> --delete`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Open(cmd.Context(), router.RouteAdminCreateTask, func(ctx context.Context, req router.Request) error {
				return runCreateTask(ctx, cmd, app, &opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "Task to edit instead of creating a new one")
	cmd.Flags().StringVar(&opts.title, "title", "", "Task title")
	cmd.Flags().StringVar(&opts.description, "description", "", "Task description")
	cmd.Flags().StringVar(&opts.priority, "priority", "", "Priority: Low, Medium or High (default Low)")
	cmd.Flags().StringVar(&opts.due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&opts.assign, "assign", nil, "User ID to assign (repeatable)")
	cmd.Flags().StringArrayVar(&opts.todos, "todo", nil, "Checklist item (repeatable)")
	cmd.Flags().StringSliceVar(&opts.attachments, "attachment", nil, "Attachment URL (repeatable)")
	cmd.Flags().BoolVar(&opts.remove, "delete", false, "Delete the task given by --id")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the delete confirmation")

	return cmd
}

func runCreateTask(ctx context.Context, cmd *cobra.Command, app *App, opts *createTaskOptions) error {
	if opts.remove {
		return deleteTask(ctx, app, opts)
	}

	form := &forms.Task{Priority: string(models.PriorityLow)}
	var existing *models.Task

	if opts.id != "" {
		task, err := app.Client.GetTask(ctx, opts.id)
		if err != nil {
			return failed("load task", err)
		}
		existing = task
		fillTaskForm(form, task)
	}

	flags := cmd.Flags()
	if flags.Changed("title") {
		form.Title = opts.title
	}
	if flags.Changed("description") {
		form.Description = opts.description
	}
	if flags.Changed("priority") {
		form.Priority = opts.priority
	}
	if flags.Changed("due") {
		due, err := forms.ParseDueDate(opts.due)
		if err != nil {
			return err
		}
		form.DueDate = due
	}
	if flags.Changed("assign") {
		form.AssignedTo = opts.assign
	}
	if flags.Changed("todo") {
		form.Checklist = opts.todos
	}
	if flags.Changed("attachment") {
		form.Attachments = opts.attachments
	}

	if app.Interactive && form.Validate() != nil {
		if err := app.runTaskForm(ctx, form); err != nil {
			return err
		}
	}

	if err := form.Validate(); err != nil {
		return err
	}

	priority, err := models.ParsePriority(form.Priority)
	if err != nil {
		return err
	}

	input := api.TaskInput{
		Title:       form.Title,
		Description: form.Description,
		Priority:    priority,
		DueDate:     form.DueDate,
		AssignedTo:  form.AssignedTo,
		Attachments: form.Attachments,
	}

	if existing == nil {
		input.TodoChecklist = form.ChecklistItems(nil)
		task, err := app.Client.CreateTask(ctx, input)
		if err != nil {
			return failed("create task", err)
		}
		app.Out.Success("✓ Task created successfully")
		return app.Out.TaskDetails(task)
	}

	input.TodoChecklist = form.ChecklistItems(existing.TodoChecklist)
	task, err := app.Client.UpdateTask(ctx, existing.ID, input)
	if err != nil {
		return failed("update task", err)
	}
	app.Out.Success("✓ Task updated successfully")
	return app.Out.TaskDetails(task)
}

// fillTaskForm prefills the form from an existing task
func fillTaskForm(form *forms.Task, task *models.Task) {
	form.Title = task.Title
	form.Description = task.Description
	form.Priority = string(task.Priority)
	form.DueDate = task.DueDate
	form.AssignedTo = make([]string, 0, len(task.AssignedTo))
	for _, a := range task.AssignedTo {
		form.AssignedTo = append(form.AssignedTo, a.ID)
	}
	form.Checklist = make([]string, 0, len(task.TodoChecklist))
	for _, item := range task.TodoChecklist {
		form.Checklist = append(form.Checklist, item.Text)
	}
	form.Attachments = append([]string(nil), task.Attachments...)
}

func deleteTask(ctx context.Context, app *App, opts *createTaskOptions) error {
	if opts.id == "" {
		return fmt.Errorf("--delete requires --id")
	}

	if !opts.yes {
		if !app.Interactive {
			return fmt.Errorf("refusing to delete without confirmation (use --yes)")
		}
		confirmed := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Delete this task?").
				Description("This action cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		)).RunWithContext(ctx)
		if err != nil {
			return formError(err)
		}
		if !confirmed {
			app.Out.Info("Cancelled")
			return nil
		}
	}

	if err := app.Client.DeleteTask(ctx, opts.id); err != nil {
		return failed("delete task", err)
	}
	app.Out.Success("✓ Task deleted successfully")
	return app.Visit(ctx, router.RouteAdminTasks, nil)
}

// runTaskForm asks for the task fields in a terminal form, starting from the
// values already in form
func (a *App) runTaskForm(ctx context.Context, form *forms.Task) error {
	users, err := a.Client.ListUsers(ctx)
	if err != nil {
		return failed("load users", err)
	}
	if len(users) == 0 {
		return fmt.Errorf("no team members to assign. Ask members to sign up first")
	}

	assigneeOptions := make([]huh.Option[string], 0, len(users))
	for _, u := range users {
		assigneeOptions = append(assigneeOptions, huh.NewOption(fmt.Sprintf("%s <%s>", u.Name, u.Email), u.ID))
	}

	priorityOptions := []huh.Option[string]{
		huh.NewOption("Low", string(models.PriorityLow)),
		huh.NewOption("Medium", string(models.PriorityMedium)),
		huh.NewOption("High", string(models.PriorityHigh)),
	}

	due := ""
	if form.DueDate != nil {
		due = form.DueDate.Format("2006-01-02")
	}
	checklist := strings.Join(form.Checklist, "\n")
	attachments := strings.Join(form.Attachments, "\n")

	f := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task Title").
				Placeholder("Create App UI").
				Value(&form.Title),
			huh.NewText().
				Title("Description").
				Placeholder("Describe task").
				Value(&form.Description),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorityOptions...).
				Value(&form.Priority),
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD").
				Value(&due).
				Validate(func(s string) error {
					_, err := forms.ParseDueDate(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Assign To").
				Options(assigneeOptions...).
				Value(&form.AssignedTo),
			huh.NewText().
				Title("TODO Checklist").
				Description("One item per line").
				Value(&checklist),
			huh.NewText().
				Title("Add Attachments").
				Description("One link per line").
				Value(&attachments),
		),
	)

	if err := f.RunWithContext(ctx); err != nil {
		return formError(err)
	}

	dueDate, err := forms.ParseDueDate(due)
	if err != nil {
		return err
	}
	form.DueDate = dueDate
	form.Checklist = splitLines(checklist)
	form.Attachments = splitLines(attachments)
	return nil
}

// splitLines returns the non-empty trimmed lines of s
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func formError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return fmt.Errorf("cancelled")
	}
	return fmt.Errorf("form failed: %w", err)
}
