package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/nexa-tasks/nexa/internal/models"
)

// Now is the clock used for overdue markers
var Now = time.Now

func assignees(task *models.Task) string {
	if len(task.AssignedTo) == 0 {
		return "-"
	}
	labels := make([]string, len(task.AssignedTo))
	for i, a := range task.AssignedTo {
		labels[i] = a.Label()
	}
	return strings.Join(labels, ", ")
}

func dueCell(task *models.Task) string {
	due := FormatDate(task.DueDate)
	if task.IsOverdue(Now()) {
		return errorStyle.Render(due + " overdue")
	}
	return due
}

// Tasks prints a task table, or JSON in JSON mode
func (p *Printer) Tasks(tasks []models.Task) error {
	if p.json {
		return p.JSON(tasks)
	}
	if len(tasks) == 0 {
		p.Info("No tasks found.")
		return nil
	}

	rows := make([][]string, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		rows = append(rows, []string{
			t.ID,
			t.Title,
			FormatPriority(t.Priority),
			FormatStatus(t.Status),
			fmt.Sprintf("%d/%d", t.CompletedTodos(), len(t.TodoChecklist)),
			fmt.Sprintf("%d%%", t.Progress),
			dueCell(t),
			assignees(t),
		})
	}
	p.Table([]string{"ID", "TITLE", "PRIORITY", "STATUS", "TODOS", "PROGRESS", "DUE", "ASSIGNED TO"}, rows)
	return nil
}

// TaskList prints the status summary followed by the task table
func (p *Printer) TaskList(list *models.TaskList) error {
	if p.json {
		return p.JSON(list)
	}
	s := list.StatusSummary
	p.Info("All %d  ·  Pending %d  ·  In Progress %d  ·  Completed %d\n",
		s.All, s.PendingTasks, s.InProgressTasks, s.CompletedTasks)
	return p.Tasks(list.Tasks)
}

// TaskDetails prints one task with its checklist
func (p *Printer) TaskDetails(task *models.Task) error {
	if p.json {
		return p.JSON(task)
	}

	p.Title("%s", task.Title)
	p.Info("Status: %s  Priority: %s  Due: %s", FormatStatus(task.Status), FormatPriority(task.Priority), dueCell(task))
	p.Info("Assigned to: %s", assignees(task))
	p.Info("Progress: %s", ProgressBar(task.Progress, 20))
	if !task.CreatedAt.IsZero() {
		p.Subtle("Created %s", FormatTimeAgo(task.CreatedAt))
	}

	if task.Description != "" {
		p.Subtle("%s", SectionHeader("Description"))
		p.Info("%s", task.Description)
	}

	if len(task.TodoChecklist) > 0 {
		p.Subtle("%s", SectionHeader("Todo checklist"))
		for i, item := range task.TodoChecklist {
			mark := "[ ]"
			if item.Completed {
				mark = successStyle.Render("[x]")
			}
			p.Info("  %d. %s %s", i+1, mark, item.Text)
		}
	}

	if len(task.Attachments) > 0 {
		p.Subtle("%s", SectionHeader("Attachments"))
		for _, link := range task.Attachments {
			p.Info("  - %s", link)
		}
	}
	return nil
}

// Dashboard prints statistics, chart counters and recent tasks
func (p *Printer) Dashboard(greeting string, data *models.DashboardData) error {
	if p.json {
		return p.JSON(data)
	}

	p.Title("%s", greeting)
	p.Subtle("%s", Now().Format("Monday 2 January 2006"))

	st := data.Statistics
	p.Info("")
	p.Info("Total %d  ·  Pending %d  ·  Completed %d  ·  Overdue %d",
		st.TotalTasks, st.PendingTasks, st.CompletedTasks, st.OverdueTasks)

	dist := data.Charts.TaskDistribution
	p.Subtle("%s", SectionHeader("Task distribution"))
	p.Table([]string{"STATUS", "COUNT"}, [][]string{
		{FormatStatus(models.StatusPending), fmt.Sprint(dist.Pending)},
		{FormatStatus(models.StatusInProgress), fmt.Sprint(dist.InProgress)},
		{FormatStatus(models.StatusCompleted), fmt.Sprint(dist.Completed)},
	})

	prio := data.Charts.TaskPriorityLevels
	p.Subtle("%s", SectionHeader("Task priority levels"))
	p.Table([]string{"PRIORITY", "COUNT"}, [][]string{
		{FormatPriority(models.PriorityLow), fmt.Sprint(prio.Low)},
		{FormatPriority(models.PriorityMedium), fmt.Sprint(prio.Medium)},
		{FormatPriority(models.PriorityHigh), fmt.Sprint(prio.High)},
	})

	p.Subtle("%s", SectionHeader("Recent tasks"))
	return p.Tasks(data.RecentTasks)
}

// Users prints team members with their task counters
func (p *Printer) Users(users []models.User) error {
	if p.json {
		return p.JSON(users)
	}
	if len(users) == 0 {
		p.Info("No users found.")
		return nil
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.ID,
			u.Name,
			u.Email,
			string(u.Role),
			fmt.Sprint(u.PendingTasks),
			fmt.Sprint(u.InProgressTasks),
			fmt.Sprint(u.CompletedTasks),
		})
	}
	p.Table([]string{"ID", "NAME", "EMAIL", "ROLE", "PENDING", "IN PROGRESS", "COMPLETED"}, rows)
	return nil
}

// Profile prints the logged-in user
func (p *Printer) Profile(user *models.User) error {
	if p.json {
		return p.JSON(user)
	}
	p.Title("%s", user.Name)
	p.Info("Email: %s", user.Email)
	p.Info("Role:  %s", user.Role)
	if user.ProfileImageURL != "" {
		p.Info("Image: %s", user.ProfileImageURL)
	}
	return nil
}
