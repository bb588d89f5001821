package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nexa-tasks/nexa/internal/models"
)

// TaskInput represents the create/update task request body
type TaskInput struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Priority      models.Priority   `json:"priority"`
	DueDate       *time.Time        `json:"dueDate"`
	AssignedTo    []string          `json:"assignedTo"`
	Attachments   []string          `json:"attachments"`
	TodoChecklist []models.TodoItem `json:"todoChecklist"`
}

type statusUpdateRequest struct {
	Status models.Status `json:"status"`
}

type checklistUpdateRequest struct {
	TodoChecklist []models.TodoItem `json:"todoChecklist"`
}

// taskEnvelope matches {"message": "...", "task": {...}} and the
// {"updatedTask": {...}} variant returned by the update endpoint
type taskEnvelope struct {
	Message     string       `json:"message"`
	Task        *models.Task `json:"task"`
	UpdatedTask *models.Task `json:"updatedTask"`
}

func (e *taskEnvelope) unwrap() (*models.Task, error) {
	task := e.Task
	if task == nil {
		task = e.UpdatedTask
	}
	if task == nil {
		return nil, fmt.Errorf("invalid task response: no task in body")
	}
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task response: %w", err)
	}
	return task, nil
}

// DashboardData returns the admin dashboard
func (c *Client) DashboardData(ctx context.Context) (*models.DashboardData, error) {
	var data models.DashboardData
	if err := c.Get(ctx, PathDashboardData, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// UserDashboardData returns the dashboard of the logged-in member
func (c *Client) UserDashboardData(ctx context.Context) (*models.DashboardData, error) {
	var data models.DashboardData
	if err := c.Get(ctx, PathUserDashboardData, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListTasks returns tasks visible to the caller, optionally filtered by status
func (c *Client) ListTasks(ctx context.Context, status models.Status) (*models.TaskList, error) {
	path := PathTasks
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}

	var list models.TaskList
	if err := c.Get(ctx, path, &list); err != nil {
		return nil, err
	}
	for i := range list.Tasks {
		if err := list.Tasks[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid tasks response: %w", err)
		}
	}
	return &list, nil
}

// GetTask returns a single task
func (c *Client) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	var task models.Task
	if err := c.Get(ctx, TaskPath(taskID), &task); err != nil {
		return nil, err
	}
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task response: %w", err)
	}
	return &task, nil
}

// CreateTask creates a task (admin only)
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*models.Task, error) {
	var env taskEnvelope
	if err := c.Post(ctx, PathTasks, input, &env); err != nil {
		return nil, err
	}
	return env.unwrap()
}

// UpdateTask replaces the editable fields of a task
func (c *Client) UpdateTask(ctx context.Context, taskID string, input TaskInput) (*models.Task, error) {
	var env taskEnvelope
	if err := c.Put(ctx, TaskPath(taskID), input, &env); err != nil {
		return nil, err
	}
	return env.unwrap()
}

// DeleteTask removes a task (admin only)
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.Delete(ctx, TaskPath(taskID), nil)
}

// UpdateTaskStatus moves a task to another status
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID string, status models.Status) (*models.Task, error) {
	var env taskEnvelope
	if err := c.Put(ctx, TaskStatusPath(taskID), statusUpdateRequest{Status: status}, &env); err != nil {
		return nil, err
	}
	return env.unwrap()
}

// UpdateChecklist replaces the checklist of a task; the server recomputes
// progress and status from it
func (c *Client) UpdateChecklist(ctx context.Context, taskID string, items []models.TodoItem) (*models.Task, error) {
	var env taskEnvelope
	if err := c.Put(ctx, TaskChecklistPath(taskID), checklistUpdateRequest{TodoChecklist: items}, &env); err != nil {
		return nil, err
	}
	return env.unwrap()
}

// ExportTasks downloads the task report
func (c *Client) ExportTasks(ctx context.Context) (*models.Report, error) {
	return c.exportReport(ctx, PathExportTasks, "tasks_report.csv")
}

// ExportUsers downloads the user/task report
func (c *Client) ExportUsers(ctx context.Context) (*models.Report, error) {
	return c.exportReport(ctx, PathExportUsers, "users_report.csv")
}

func (c *Client) exportReport(ctx context.Context, path, defaultName string) (*models.Report, error) {
	report, err := c.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	if report.Filename == "" {
		report.Filename = defaultName
	}
	return report, nil
}
