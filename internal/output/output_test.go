package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexa-tasks/nexa/internal/models"
)

func fixedNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := Now
	Now = func() time.Time { return now }
	t.Cleanup(func() { Now = orig })
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░   0%", ProgressBar(0, 10))
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(50, 10))
	assert.Equal(t, "██████████ 100%", ProgressBar(140, 10))
}

func TestFormatTimeAgo(t *testing.T) {
	assert.Equal(t, "just now", FormatTimeAgo(time.Now()))
	assert.Equal(t, "5m ago", FormatTimeAgo(time.Now().Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", FormatTimeAgo(time.Now().Add(-3*time.Hour)))
	assert.Equal(t, "2d ago", FormatTimeAgo(time.Now().Add(-50*time.Hour)))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", FormatDate(nil))
	d := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-04", FormatDate(&d))
}

func TestTasks_Table(t *testing.T) {
	fixedNow(t, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	past := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	p := New(&buf, false)
	err := p.Tasks([]models.Task{{
		ID:            "t1",
		Title:         "Write report",
		Priority:      models.PriorityHigh,
		Status:        models.StatusPending,
		DueDate:       &past,
		AssignedTo:    []models.Assignee{{ID: "u1", Name: "Jane"}, {ID: "u2"}},
		TodoChecklist: []models.TodoItem{{Text: "a", Completed: true}, {Text: "b"}},
		Progress:      50,
	}})
	require.NoError(t, err)

	out := buf.String()
	for _, want := range []string{"TITLE", "ASSIGNED TO", "Write report", "[High]", "[Pending]", "1/2", "50%", "2026-10-01 overdue", "Jane, u2"} {
		assert.Contains(t, out, want)
	}
}

func TestTasks_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, false).Tasks(nil))
	assert.Equal(t, "No tasks found.\n", buf.String())
}

func TestJSONModeSilencesDecorations(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true)
	p.Success("done")
	p.Info("hello")
	require.NoError(t, p.Users([]models.User{{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: models.RoleUser, PendingTasks: 2}}))

	var users []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0]["_id"])
	assert.Equal(t, float64(2), users[0]["pendingTasks"])
}

func TestDashboard(t *testing.T) {
	fixedNow(t, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	data := &models.DashboardData{
		Statistics: models.Statistics{TotalTasks: 7, PendingTasks: 3, CompletedTasks: 2, OverdueTasks: 1},
		Charts: models.Charts{
			TaskDistribution:   models.TaskDistribution{Pending: 3, InProgress: 2, Completed: 2, All: 7},
			TaskPriorityLevels: models.PriorityLevels{Low: 1, Medium: 4, High: 2},
		},
	}
	require.NoError(t, New(&buf, false).Dashboard("Good morning, Ada", data))

	out := buf.String()
	assert.Contains(t, out, "Good morning, Ada")
	assert.Contains(t, out, "Sunday 18 October 2026")
	assert.Contains(t, out, "Total 7")
	assert.Contains(t, out, "Overdue 1")
	assert.Contains(t, out, "TASK DISTRIBUTION")
	assert.Contains(t, out, "No tasks found.")
}

func TestTaskDetails_Checklist(t *testing.T) {
	var buf bytes.Buffer
	task := &models.Task{
		ID:            "t1",
		Title:         "Release",
		Status:        models.StatusInProgress,
		Priority:      models.PriorityLow,
		TodoChecklist: []models.TodoItem{{Text: "Tag", Completed: true}, {Text: "Publish"}},
		Attachments:   []string{"https://example.com/spec"},
		Progress:      50,
	}
	require.NoError(t, New(&buf, false).TaskDetails(task))

	lines := strings.Split(buf.String(), "\n")
	assert.Contains(t, lines, "  1. [x] Tag")
	assert.Contains(t, lines, "  2. [ ] Publish")
	assert.Contains(t, buf.String(), "https://example.com/spec")
}
