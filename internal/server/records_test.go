package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nexa-tasks/nexa/internal/models"
)

func checklist(done ...bool) []models.TodoItem {
	items := make([]models.TodoItem, len(done))
	for i, d := range done {
		items[i] = models.TodoItem{Text: "item", Completed: d}
	}
	return items
}

func TestApplyChecklist(t *testing.T) {
	tests := []struct {
		name         string
		items        []models.TodoItem
		wantProgress int
		wantStatus   models.Status
	}{
		{"Empty", nil, 0, models.StatusPending},
		{"NoneDone", checklist(false, false), 0, models.StatusPending},
		{"OneOfThree", checklist(true, false, false), 33, models.StatusInProgress},
		{"TwoOfThree", checklist(true, true, false), 67, models.StatusInProgress},
		{"Half", checklist(true, false), 50, models.StatusInProgress},
		{"All", checklist(true, true, true), 100, models.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &TaskRecord{Status: string(models.StatusCompleted), Checklist: tt.items}
			task.applyChecklist()
			assert.Equal(t, tt.wantProgress, task.Progress)
			assert.Equal(t, string(tt.wantStatus), task.Status)
		})
	}
}

func TestToTaskNeverReturnsNullLists(t *testing.T) {
	task := toTask(&TaskRecord{BaseModel: BaseModel{ID: "t1"}, Title: "x"})
	assert.NotNil(t, task.Attachments)
	assert.NotNil(t, task.TodoChecklist)
	assert.NotNil(t, task.AssignedTo)
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	record := func(id, status, priority string, due *time.Time, age time.Duration) TaskRecord {
		return TaskRecord{
			BaseModel: BaseModel{ID: id, CreatedAt: now.Add(-age)},
			Title:     id,
			Status:    status,
			Priority:  priority,
			DueDate:   due,
		}
	}

	tasks := []TaskRecord{
		record("late", "Pending", "High", &past, 3*time.Hour),
		record("done-late", "Completed", "Low", &past, 2*time.Hour),
		record("working", "In Progress", "Medium", &future, time.Hour),
		record("undated", "Pending", "Low", nil, 4*time.Hour),
	}

	data := buildDashboard(tasks, now)

	assert.Equal(t, 4, data.Statistics.TotalTasks)
	assert.Equal(t, 2, data.Statistics.PendingTasks)
	assert.Equal(t, 1, data.Statistics.CompletedTasks)
	assert.Equal(t, 1, data.Statistics.OverdueTasks, "completed tasks are never overdue")

	assert.Equal(t, 4, data.Charts.TaskDistribution.All)
	assert.Equal(t, 2, data.Charts.TaskDistribution.Pending)
	assert.Equal(t, 1, data.Charts.TaskDistribution.InProgress)
	assert.Equal(t, 1, data.Charts.TaskDistribution.Completed)

	assert.Equal(t, 2, data.Charts.TaskPriorityLevels.Low)
	assert.Equal(t, 1, data.Charts.TaskPriorityLevels.Medium)
	assert.Equal(t, 1, data.Charts.TaskPriorityLevels.High)

	ids := make([]string, 0, len(data.RecentTasks))
	for _, task := range data.RecentTasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"working", "done-late", "late", "undated"}, ids)
}

func TestBuildDashboardLimitsRecentTasks(t *testing.T) {
	now := time.Now()
	tasks := make([]TaskRecord, recentTaskLimit+5)
	for i := range tasks {
		tasks[i] = TaskRecord{BaseModel: BaseModel{ID: string(rune('a' + i)), CreatedAt: now.Add(time.Duration(i) * time.Minute)}, Title: "t"}
	}

	data := buildDashboard(tasks, now)
	assert.Len(t, data.RecentTasks, recentTaskLimit)
	assert.Equal(t, tasks[len(tasks)-1].ID, data.RecentTasks[0].ID)
}
