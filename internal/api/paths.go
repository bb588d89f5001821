package api

import (
	"fmt"
	"net/url"
)

// DefaultBaseURL is the API origin used when nothing is configured
const DefaultBaseURL = "http://localhost:8000"

// Auth endpoints
const (
	PathRegister       = "/api/auth/register"        // Register a new user (admin or member)
	PathLogin          = "/api/auth/login"           // Authenticate and return a JWT
	PathProfile        = "/api/auth/profile"         // Get or update the logged-in user
	PathChangePassword = "/api/auth/change-password" // Change the logged-in user's password
	PathUploadImage    = "/api/auth/upload-image"
)

// User endpoints (admin only)
const (
	PathUsers = "/api/users"
)

// Task endpoints
const (
	PathDashboardData     = "/api/tasks/dashboard-data"
	PathUserDashboardData = "/api/tasks/user-dashboard-data"
	PathTasks             = "/api/tasks" // Admin: all tasks, user: assigned tasks
)

// Report endpoints, both return spreadsheet downloads
const (
	PathExportTasks = "/api/reports/export/tasks"
	PathExportUsers = "/api/reports/export/users"
)

// UserPath returns the path of a single user
func UserPath(userID string) string {
	return fmt.Sprintf("%s/%s", PathUsers, url.PathEscape(userID))
}

// TaskPath returns the path of a single task
func TaskPath(taskID string) string {
	return fmt.Sprintf("%s/%s", PathTasks, url.PathEscape(taskID))
}

// TaskStatusPath returns the status update path of a task
func TaskStatusPath(taskID string) string {
	return TaskPath(taskID) + "/status"
}

// TaskChecklistPath returns the checklist update path of a task
func TaskChecklistPath(taskID string) string {
	return TaskPath(taskID) + "/todo"
}
