package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexa-tasks/nexa/internal/cli/config"
	"github.com/nexa-tasks/nexa/internal/models"
	"github.com/nexa-tasks/nexa/internal/output"
	"github.com/nexa-tasks/nexa/internal/router"
	"github.com/nexa-tasks/nexa/internal/server/servertest"
	"github.com/nexa-tasks/nexa/internal/tokenstore"
)

// harness runs commands against a sandbox API. Each run gets a fresh App
// sharing one in-memory token backend, like separate CLI invocations sharing
// a keyring.
type harness struct {
	sb      *servertest.Sandbox
	backend *tokenstore.Memory
	tokens  *tokenstore.Store
	app     *App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := tokenstore.NewMemory()
	return &harness{
		sb:      servertest.Start(t),
		backend: backend,
		tokens:  tokenstore.New(backend),
	}
}

func (h *harness) run(t *testing.T, build func(*App) *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := NewApp()
	app.In = strings.NewReader("")
	app.Wire(&config.Settings{
		Profile:    "test",
		APIURL:     h.sb.APIURL,
		Timeout:    5 * time.Second,
		TokenStore: "memory",
	}, h.tokens, &out, zerolog.Nop())
	h.app = app

	cmd := build(app)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) loginAs(t *testing.T, user *models.User) {
	t.Helper()
	require.NoError(t, h.tokens.SaveToken(user.Token))
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.sb.Register(t, "Bob", "bob@example.com", false)

	t.Run("Success", func(t *testing.T) {
		out, err := h.run(t, NewLoginCmd, "--email", "bob@example.com", "--password", servertest.Password)
		require.NoError(t, err)
		assert.Contains(t, out, "Login successful")
		assert.Contains(t, out, "User: Bob (bob@example.com)")
		assert.Equal(t, router.RouteUserDashboard, h.app.Router.Current())

		token, err := h.tokens.Token()
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "bob@example.com", h.tokens.Email())
	})

	t.Run("WrongPassword", func(t *testing.T) {
		out, err := h.run(t, NewLoginCmd, "--email", "bob@example.com", "--password", "wrong-password")
		require.Error(t, err)
		assert.Equal(t, "login failed: Invalid email or password", err.Error())
		assert.Contains(t, out, "You are not logged in.")
		assert.Equal(t, router.RouteLogin, h.app.Router.Current())
		assert.Empty(t, h.app.Router.TakePending(), "the login redirect is followed, not dropped")

		token, _ := h.tokens.Token()
		assert.Empty(t, token, "a failed login leaves no credentials behind")
	})

	t.Run("MissingEmail", func(t *testing.T) {
		t.Setenv("NEXA_EMAIL", "")
		_, err := h.run(t, NewLoginCmd, "--password", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email is required")
	})
}

func TestAdminLoginLandsOnAdminDashboard(t *testing.T) {
	h := newHarness(t)
	h.sb.Register(t, "Ada", "ada@example.com", true)

	out, err := h.run(t, NewLoginCmd, "--email", "ada@example.com", "--password", servertest.Password)
	require.NoError(t, err)
	assert.Contains(t, out, "Role: Admin")
	assert.Equal(t, router.RouteAdminDashboard, h.app.Router.Current())
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, h.sb.Register(t, "Bob", "bob@example.com", false))

	out, err := h.run(t, NewLogoutCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out of test")
	assert.Contains(t, out, "You are not logged in.")
	assert.Equal(t, 0, h.backend.Len())
}

func TestExpiredTokenTearsDownSession(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.tokens.SaveToken("stale-token"))
	require.NoError(t, h.tokens.SaveEmail("bob@example.com"))

	out, err := h.run(t, NewDashboardCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "You are not logged in.")
	assert.Equal(t, router.RouteLogin, h.app.Router.Current())
	assert.Equal(t, 0, h.backend.Len(), "every stored value is cleared")
}

func TestRoleRedirects(t *testing.T) {
	h := newHarness(t)
	admin := h.sb.Register(t, "Ada", "ada@example.com", true)
	member := h.sb.Register(t, "Bob", "bob@example.com", false)

	tests := []struct {
		name  string
		user  *models.User
		route string
		want  string
	}{
		{"AdminRoot", admin, "/", router.RouteAdminDashboard},
		{"MemberRoot", member, "/", router.RouteUserDashboard},
		{"MemberOnAdminPage", member, router.RouteAdminUsers, router.RouteUserDashboard},
		{"AdminOnMemberPage", admin, router.RouteUserTasks, router.RouteAdminDashboard},
		{"AdminOnAdminPage", admin, router.RouteAdminUsers, router.RouteAdminUsers},
		{"AnonymousOnProtectedPage", nil, router.RouteUserTasks, router.RouteLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, h.tokens.Clear())
			if tt.user != nil {
				h.loginAs(t, tt.user)
			}

			_, err := h.run(t, NewOpenCmd, tt.route)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.app.Router.Current())
		})
	}

	t.Run("UnknownRoute", func(t *testing.T) {
		_, err := h.run(t, NewOpenCmd, "/nowhere")
		require.ErrorIs(t, err, router.ErrRouteNotFound)
	})
}

func TestAdminTasks(t *testing.T) {
	h := newHarness(t)
	admin := h.sb.Register(t, "Ada", "ada@example.com", true)
	member := h.sb.Register(t, "Bob", "bob@example.com", false)
	h.sb.CreateTask(t, admin.Token, "Prepare launch", []string{member.ID}, "Checklist")
	h.loginAs(t, admin)

	t.Run("List", func(t *testing.T) {
		out, err := h.run(t, NewAdminCmd, "tasks")
		require.NoError(t, err)
		assert.Contains(t, out, "Prepare launch")
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		_, err := h.run(t, NewAdminCmd, "tasks", "--status", "Blocked")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid status 'Blocked'")
	})

	t.Run("ExportToDirectory", func(t *testing.T) {
		dir := t.TempDir()
		out, err := h.run(t, NewAdminCmd, "tasks", "--export="+dir)
		require.NoError(t, err)
		assert.Contains(t, out, "Report saved to")

		data, err := os.ReadFile(filepath.Join(dir, "tasks_report.csv"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "Prepare launch")
	})

	t.Run("ExportToFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "team.csv")
		_, err := h.run(t, NewAdminCmd, "users", "--export="+path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "User Name,Email"))
	})
}

func TestCreateTaskWithFlags(t *testing.T) {
	h := newHarness(t)
	admin := h.sb.Register(t, "Ada", "ada@example.com", true)
	member := h.sb.Register(t, "Bob", "bob@example.com", false)
	h.loginAs(t, admin)

	due := time.Now().AddDate(0, 1, 0).Format(time.DateOnly)
	out, err := h.run(t, NewAdminCmd, "create-task",
		"--title", "Ship v2",
		"--description", "Release notes and tag",
		"--priority", "high",
		"--due", due,
		"--assign", member.ID,
		"--todo", "Write notes, then review",
		"--todo", "Tag",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Task created successfully")
	assert.Contains(t, out, "Ship v2")

	list, err := h.app.Client.ListTasks(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	task := list.Tasks[0]
	assert.Equal(t, models.PriorityHigh, task.Priority)
	require.Len(t, task.TodoChecklist, 2)
	assert.Equal(t, "Write notes, then review", task.TodoChecklist[0].Text)

	t.Run("EditKeepsUnchangedFields", func(t *testing.T) {
		_, err := h.run(t, NewAdminCmd, "create-task", "--id", task.ID, "--priority", "Low")
		require.NoError(t, err)

		updated, err := h.app.Client.GetTask(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PriorityLow, updated.Priority)
		assert.Equal(t, "Ship v2", updated.Title)
		assert.Len(t, updated.AssignedTo, 1)
	})

	t.Run("DeleteNeedsConfirmation", func(t *testing.T) {
		out, err := h.run(t, NewAdminCmd, "create-task", "--id", task.ID, "--delete", "--yes")
		require.NoError(t, err)
		assert.Contains(t, out, "Task deleted successfully")
		assert.Equal(t, router.RouteAdminTasks, h.app.Router.Current())
	})
}

func TestUserTaskToggle(t *testing.T) {
	h := newHarness(t)
	admin := h.sb.Register(t, "Ada", "ada@example.com", true)
	member := h.sb.Register(t, "Bob", "bob@example.com", false)
	task := h.sb.CreateTask(t, admin.Token, "Review PR", []string{member.ID}, "Read", "Comment")
	h.loginAs(t, member)

	out, err := h.run(t, NewUserCmd, "task", task.ID, "--toggle", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Checklist updated")

	updated, err := h.app.Client.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := h.run(t, NewUserCmd, "task", task.ID, "--toggle", "3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checklist item 3 does not exist")
	})

	t.Run("Status", func(t *testing.T) {
		out, err := h.run(t, NewUserCmd, "task", task.ID, "--status", "completed")
		require.NoError(t, err)
		assert.Contains(t, out, "Status set to Completed")
	})
}

func TestPassword(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, h.sb.Register(t, "Bob", "bob@example.com", false))

	t.Run("WrongCurrentKeepsSession", func(t *testing.T) {
		_, err := h.run(t, NewPasswordCmd, "--current", "not-my-password", "--new", "new-password-1", "--confirm", "new-password-1")
		require.Error(t, err)
		assert.Equal(t, "Current password is incorrect", err.Error())

		token, _ := h.tokens.Token()
		assert.NotEmpty(t, token)
	})

	t.Run("Mismatch", func(t *testing.T) {
		_, err := h.run(t, NewPasswordCmd, "--current", servertest.Password, "--new", "new-password-1", "--confirm", "new-password-2")
		require.Error(t, err)
	})

	t.Run("Success", func(t *testing.T) {
		out, err := h.run(t, NewPasswordCmd, "--current", servertest.Password, "--new", "new-password-1", "--confirm", "new-password-1")
		require.NoError(t, err)
		assert.Contains(t, out, "Password updated successfully.")
	})
}

func TestFailedRequestFollowsLoginRedirect(t *testing.T) {
	h := newHarness(t)
	h.loginAs(t, h.sb.Register(t, "Bob", "bob@example.com", false))

	_, err := h.run(t, NewDashboardCmd)
	require.NoError(t, err)
	require.Equal(t, router.RouteUserDashboard, h.app.Router.Current())

	// What the session guard records after a rejected token
	require.NoError(t, h.tokens.Clear())
	h.app.Session.Clear()
	h.app.Router.Navigate(router.RouteLogin)

	cause := errors.New("change password failed")
	err = h.app.fail(context.Background(), cause)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, router.RouteLogin, h.app.Router.Current())
	assert.Empty(t, h.app.Router.TakePending())
}

func TestWhoami(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, NewWhoamiCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Profile:     test")
	assert.Contains(t, out, "Not logged in")

	h.loginAs(t, h.sb.Register(t, "Bob", "bob@example.com", false))
	out, err = h.run(t, NewWhoamiCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "User:        Bob (bob@example.com)")
	assert.Contains(t, out, "Role:        user")
	assert.Contains(t, out, "expires")
}

func TestDescribeExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Contains(t, describeExpiry(now.Add(-time.Minute), now), "expired")
	assert.Contains(t, describeExpiry(now.Add(90*time.Minute), now), "in 1h30m0s")
}

func TestGreeting(t *testing.T) {
	day := func(h int) time.Time { return time.Date(2026, 5, 1, h, 0, 0, 0, time.UTC) }
	assert.Equal(t, "Good morning, Bob", greeting("Bob", day(8)))
	assert.Equal(t, "Good afternoon, Bob", greeting("Bob", day(13)))
	assert.Equal(t, "Good evening, Bob", greeting("Bob", day(21)))
}

func TestSaveReportStaysInDirectory(t *testing.T) {
	var out bytes.Buffer
	app := &App{Out: output.New(&out, false)}

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"ServerName", "tasks_report.csv", "tasks_report.csv"},
		{"ParentTraversal", "../escaped.csv", "escaped.csv"},
		{"NestedTraversal", "a/../../b/escaped.csv", "escaped.csv"},
		{"BackslashTraversal", `..\escaped.csv`, "escaped.csv"},
		{"Missing", "", "tasks_report.csv"},
		{"Dot", ".", "tasks_report.csv"},
		{"DotDot", "..", "tasks_report.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, "reports")
			require.NoError(t, os.Mkdir(dir, 0755))

			report := &models.Report{Filename: tt.filename, Body: []byte("Task ID\n")}
			require.NoError(t, app.saveReport(report, dir, "tasks_report.csv"))

			assert.FileExists(t, filepath.Join(dir, tt.want))
			entries, err := os.ReadDir(root)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "nothing is written next to the target directory")
		})
	}
}
