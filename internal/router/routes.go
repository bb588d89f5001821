package router

import "github.com/nexa-tasks/nexa/internal/models"

// Client routes
const (
	RouteRoot   = "/"
	RouteLogin  = "/login"
	RouteSignup = "/signup"

	RouteAdminDashboard  = "/admin/dashboard"
	RouteAdminMyTasks    = "/admin/my-tasks"
	RouteAdminTasks      = "/admin/tasks"
	RouteAdminCreateTask = "/admin/create-task"
	RouteAdminUsers      = "/admin/users"

	RouteUserDashboard   = "/user/dashboard"
	RouteUserTasks       = "/user/tasks"
	RouteUserTaskDetails = "/user/task-details/:id"
)

// Access says who may render a route
type Access int

const (
	Public Access = iota
	Protected
	Dispatcher
)

// Route is one entry of the client route table
type Route struct {
	Pattern string
	Access  Access
	Roles   []models.Role // Only for Protected routes
	Title   string
	Page    Page
}

var (
	adminOnly = []models.Role{models.RoleAdmin}
	userOnly  = []models.Role{models.RoleUser}
)

// DefaultRoutes returns the route table without pages attached
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: RouteLogin, Access: Public, Title: "Login"},
		{Pattern: RouteSignup, Access: Public, Title: "Sign Up"},

		{Pattern: RouteAdminDashboard, Access: Protected, Roles: adminOnly, Title: "Dashboard"},
		{Pattern: RouteAdminMyTasks, Access: Protected, Roles: adminOnly, Title: "My Tasks"},
		{Pattern: RouteAdminTasks, Access: Protected, Roles: adminOnly, Title: "Manage Tasks"},
		{Pattern: RouteAdminCreateTask, Access: Protected, Roles: adminOnly, Title: "Create Task"},
		{Pattern: RouteAdminUsers, Access: Protected, Roles: adminOnly, Title: "Team Members"},

		{Pattern: RouteUserDashboard, Access: Protected, Roles: userOnly, Title: "Dashboard"},
		{Pattern: RouteUserTasks, Access: Protected, Roles: userOnly, Title: "My Tasks"},
		{Pattern: RouteUserTaskDetails, Access: Protected, Roles: userOnly, Title: "Task Details"},

		{Pattern: RouteRoot, Access: Dispatcher, Title: "Home"},
	}
}

// UserTaskDetails returns the details route of a task
func UserTaskDetails(taskID string) string {
	return "/user/task-details/" + taskID
}
