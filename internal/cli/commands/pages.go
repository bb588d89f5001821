package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/nexa-tasks/nexa/internal/models"
	"github.com/nexa-tasks/nexa/internal/router"
)

// registerPages attaches the default page of every client route. Commands
// pass their own page to Visit when they need flags.
func (a *App) registerPages() {
	pages := map[string]router.Page{
		router.RouteLogin:           a.loginPage,
		router.RouteSignup:          a.signupPage,
		router.RouteAdminDashboard:  a.dashboardPage(false),
		router.RouteAdminTasks:      a.taskListPage(""),
		router.RouteAdminMyTasks:    a.myTasksPage(""),
		router.RouteAdminCreateTask: a.createTaskHintPage,
		router.RouteAdminUsers:      a.usersPage,
		router.RouteUserDashboard:   a.dashboardPage(true),
		router.RouteUserTasks:       a.taskListPage(""),
		router.RouteUserTaskDetails: a.taskDetailsPage,
	}
	for pattern, page := range pages {
		if err := a.Router.SetPage(pattern, page); err != nil {
			a.Logger.Error().Err(err).Str("route", pattern).Msg("Failed to register page")
		}
	}
	a.Router.Placeholder = func(ctx context.Context, req router.Request) error {
		a.Out.Subtle("Loading...")
		return nil
	}
}

func (a *App) loginPage(ctx context.Context, req router.Request) error {
	if user := a.Session.User(); user != nil {
		a.Out.Info("Logged in as %s (%s). Run 'nexa logout' to switch accounts.", user.Name, user.Email)
		return nil
	}
	a.Out.Warning("You are not logged in.")
	a.Out.Info("Run 'nexa login' to sign in, or 'nexa signup' to create an account.")
	return nil
}

func (a *App) signupPage(ctx context.Context, req router.Request) error {
	a.Out.Info("Run 'nexa signup --name <name> --email <email>' to create an account.")
	return nil
}

func (a *App) createTaskHintPage(ctx context.Context, req router.Request) error {
	a.Out.Info("Run 'nexa admin create-task' to create a task, or add --id <task-id> to edit one.")
	return nil
}

// greeting returns a time-of-day greeting for the dashboard header
func greeting(name string, now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return fmt.Sprintf("Good morning, %s", name)
	case h < 18:
		return fmt.Sprintf("Good afternoon, %s", name)
	default:
		return fmt.Sprintf("Good evening, %s", name)
	}
}

func (a *App) dashboardPage(member bool) router.Page {
	return func(ctx context.Context, req router.Request) error {
		user, err := a.CurrentUser()
		if err != nil {
			return err
		}

		var data *models.DashboardData
		if member {
			data, err = a.Client.UserDashboardData(ctx)
		} else {
			data, err = a.Client.DashboardData(ctx)
		}
		if err != nil {
			return failed("load dashboard", err)
		}
		return a.Out.Dashboard(greeting(user.Name, time.Now()), data)
	}
}

func (a *App) taskListPage(status models.Status) router.Page {
	return func(ctx context.Context, req router.Request) error {
		list, err := a.Client.ListTasks(ctx, status)
		if err != nil {
			return failed("load tasks", err)
		}
		a.Out.Title("%s", req.Route.Title)
		return a.Out.TaskList(list)
	}
}

// myTasksPage lists the tasks assigned to the logged-in admin
func (a *App) myTasksPage(status models.Status) router.Page {
	return func(ctx context.Context, req router.Request) error {
		user, err := a.CurrentUser()
		if err != nil {
			return err
		}
		list, err := a.Client.ListTasks(ctx, status)
		if err != nil {
			return failed("load tasks", err)
		}

		mine := make([]models.Task, 0, len(list.Tasks))
		for _, task := range list.Tasks {
			for _, assignee := range task.AssignedTo {
				if assignee.ID == user.ID {
					mine = append(mine, task)
					break
				}
			}
		}
		a.Out.Title("%s", req.Route.Title)
		return a.Out.Tasks(mine)
	}
}

func (a *App) usersPage(ctx context.Context, req router.Request) error {
	users, err := a.Client.ListUsers(ctx)
	if err != nil {
		return failed("load users", err)
	}
	a.Out.Title("%s", req.Route.Title)
	return a.Out.Users(users)
}

func (a *App) taskDetailsPage(ctx context.Context, req router.Request) error {
	task, err := a.Client.GetTask(ctx, req.Param("id"))
	if err != nil {
		return failed("load task", err)
	}
	return a.Out.TaskDetails(task)
}
