package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is the access role of a user account
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one the API issues
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an account as returned by the API
type User struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	ProfileImageURL string    `json:"profileImageUrl"`
	Token           string    `json:"token,omitempty"` // Only present on login/register responses
	CreatedAt       time.Time `json:"createdAt,omitzero"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`

	// Counters returned by the list-all users endpoint
	PendingTasks    int `json:"pendingTasks,omitempty"`
	InProgressTasks int `json:"inProgressTasks,omitempty"`
	CompletedTasks  int `json:"completedTasks,omitempty"`
}

// Validate checks the fields every user record must carry
func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user record missing _id")
	}
	if u.Email == "" {
		return fmt.Errorf("user %s missing email", u.ID)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("user %s has unknown role %q", u.ID, u.Role)
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Priority is a task priority level
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists priorities in display order
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Status is a task progress state
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists statuses in display order
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// ParseStatus accepts the display form or a loose variant (in-progress, completed)
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s)))
	for _, status := range Statuses {
		if strings.ToLower(string(status)) == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid status '%s', must be one of: Pending, In Progress, Completed", s)
}

// ParsePriority accepts a priority case-insensitively
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority '%s', must be one of: Low, Medium, High", s)
}

// TodoItem is one entry of a task checklist
type TodoItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Assignee references a user on a task. The API returns either a bare id or a
// populated user object depending on the endpoint.
type Assignee struct {
	ID              string `json:"_id"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// UnmarshalJSON decodes either an id string or a user object
func (a *Assignee) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.ID)
	}
	type plain Assignee
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Assignee(p)
	return nil
}

// Label returns the most readable name for the assignee
func (a Assignee) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Task represents a task as returned by the API
type Task struct {
	ID                 string     `json:"_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Priority           Priority   `json:"priority"`
	Status             Status     `json:"status"`
	DueDate            *time.Time `json:"dueDate"`
	AssignedTo         []Assignee `json:"assignedTo"`
	CreatedBy          string     `json:"createdBy,omitempty"`
	Attachments        []string   `json:"attachments"`
	TodoChecklist      []TodoItem `json:"todoChecklist"`
	Progress           int        `json:"progress"`
	CompletedTodoCount int        `json:"completedTodoCount,omitempty"`
	CreatedAt          time.Time  `json:"createdAt,omitzero"`
	UpdatedAt          time.Time  `json:"updatedAt,omitzero"`
}

// Validate checks the fields every task record must carry
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task record missing _id")
	}
	if t.Title == "" {
		return fmt.Errorf("task %s missing title", t.ID)
	}
	if t.Progress < 0 || t.Progress > 100 {
		return fmt.Errorf("task %s has progress %d out of range", t.ID, t.Progress)
	}
	return nil
}

// CompletedTodos counts checked checklist items
func (t *Task) CompletedTodos() int {
	n := 0
	for _, item := range t.TodoChecklist {
		if item.Completed {
			n++
		}
	}
	return n
}

// IsOverdue reports whether the task is past its due date and not completed
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.Status != StatusCompleted && t.DueDate.Before(now)
}

// StatusSummary holds per-status counts for a task listing
type StatusSummary struct {
	All             int `json:"all"`
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	CompletedTasks  int `json:"completedTasks"`
}

// TaskList is the response of the list-all tasks endpoint
type TaskList struct {
	Tasks         []Task        `json:"tasks"`
	StatusSummary StatusSummary `json:"statusSummary"`
}

// Statistics are the headline counters of a dashboard
type Statistics struct {
	TotalTasks     int `json:"totalTasks"`
	PendingTasks   int `json:"pendingTasks"`
	CompletedTasks int `json:"completedTasks"`
	OverdueTasks   int `json:"overdueTasks"`
}

// TaskDistribution counts tasks per status
type TaskDistribution struct {
	Pending    int `json:"Pending"`
	InProgress int `json:"InProgress"`
	Completed  int `json:"Completed"`
	All        int `json:"All"`
}

// PriorityLevels counts tasks per priority
type PriorityLevels struct {
	Low    int `json:"Low"`
	Medium int `json:"Medium"`
	High   int `json:"High"`
}

// Charts groups the chart series of a dashboard
type Charts struct {
	TaskDistribution   TaskDistribution `json:"taskDistribution"`
	TaskPriorityLevels PriorityLevels   `json:"taskPriorityLevels"`
}

// DashboardData is the response of both dashboard endpoints
type DashboardData struct {
	Statistics  Statistics `json:"statistics"`
	Charts      Charts     `json:"charts"`
	RecentTasks []Task     `json:"recentTasks"`
}

// Report is a downloaded export file
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}
