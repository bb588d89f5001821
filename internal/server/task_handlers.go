package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexa-tasks/nexa/internal/auth"
	"github.com/nexa-tasks/nexa/internal/models"
)

const recentTaskLimit = 10

// CreateTaskRequest represents the create task body
type CreateTaskRequest struct {
	Title         string            `json:"title" binding:"required"`
	Description   string            `json:"description"`
	Priority      string            `json:"priority" binding:"omitempty,priority"`
	DueDate       *time.Time        `json:"dueDate" binding:"required"`
	AssignedTo    []string          `json:"assignedTo" binding:"required,min=1,dive,required"`
	Attachments   []string          `json:"attachments"`
	TodoChecklist []models.TodoItem `json:"todoChecklist"`
}

// UpdateTaskRequest represents the update task body; absent fields are kept
type UpdateTaskRequest struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Priority      *string            `json:"priority" binding:"omitempty,priority"`
	DueDate       *time.Time         `json:"dueDate"`
	AssignedTo    *[]string          `json:"assignedTo"`
	Attachments   *[]string          `json:"attachments"`
	TodoChecklist *[]models.TodoItem `json:"todoChecklist"`
}

// StatusRequest represents a status change
type StatusRequest struct {
	Status string `json:"status" binding:"required,taskstatus"`
}

// ChecklistRequest represents a checklist replacement
type ChecklistRequest struct {
	TodoChecklist []models.TodoItem `json:"todoChecklist" binding:"dive"`
}

// taskBindMessage explains a task body that failed to bind
func taskBindMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "assignedTo" {
		return "assignedTo must be an array of user IDs"
	}
	return bindMessage(err)
}

// findTask loads a task with its assignees by the :id path parameter
func (s *Server) findTask(c *gin.Context) (*TaskRecord, bool) {
	var task TaskRecord
	if err := s.db.Preload("Assignees").Where("id = ?", c.Param("id")).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Task not found")
			return nil, false
		}
		s.internalError(c, err, "Failed to find task")
		return nil, false
	}
	return &task, true
}

// findAssignees loads the users named by ids, failing when any is unknown
func (s *Server) findAssignees(c *gin.Context, ids []string) ([]UserRecord, bool) {
	unique := make(map[string]bool, len(ids))
	for _, id := range ids {
		unique[id] = true
	}

	var users []UserRecord
	if len(ids) > 0 {
		if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			s.internalError(c, err, "Failed to find users")
			return nil, false
		}
	}
	if len(users) != len(unique) {
		fail(c, http.StatusBadRequest, "Assigned user not found")
		return nil, false
	}
	return users, true
}

// scopedTasks returns every task an admin may see, or the tasks assigned to
// a member, newest first
func (s *Server) scopedTasks(sessionData *auth.SessionData) ([]TaskRecord, error) {
	q := s.db.Preload("Assignees").Order("created_at DESC")
	if !sessionData.IsAdmin() {
		assigned := s.db.Table("task_assignees").
			Select("task_record_id").
			Where("user_record_id = ?", sessionData.UserID)
		q = q.Where("id IN (?)", assigned)
	}

	var tasks []TaskRecord
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Server) listTasks(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	tasks, err := s.scopedTasks(sessionData)
	if err != nil {
		s.internalError(c, err, "Failed to list tasks")
		return
	}

	status := c.Query("status")
	list := models.TaskList{Tasks: make([]models.Task, 0, len(tasks))}
	for i := range tasks {
		switch models.Status(tasks[i].Status) {
		case models.StatusPending:
			list.StatusSummary.PendingTasks++
		case models.StatusInProgress:
			list.StatusSummary.InProgressTasks++
		case models.StatusCompleted:
			list.StatusSummary.CompletedTasks++
		}
		list.StatusSummary.All++

		if status == "" || tasks[i].Status == status {
			list.Tasks = append(list.Tasks, toTask(&tasks[i]))
		}
	}

	c.JSON(http.StatusOK, list)
}

func (s *Server) getTask(c *gin.Context) {
	task, ok := s.findTask(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTask(task))
}

func (s *Server) createTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, taskBindMessage(err))
		return
	}

	assignees, ok := s.findAssignees(c, req.AssignedTo)
	if !ok {
		return
	}

	sessionData, _ := GetSessionData(c)
	task := &TaskRecord{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    req.Priority,
		Status:      string(models.StatusPending),
		DueDate:     req.DueDate,
		CreatedByID: sessionData.UserID,
		Attachments: req.Attachments,
		Checklist:   req.TodoChecklist,
		Assignees:   assignees,
	}
	if task.Priority == "" {
		task.Priority = string(models.PriorityLow)
	}

	if err := s.db.Create(task).Error; err != nil {
		s.internalError(c, err, "Failed to create task")
		return
	}

	s.logger.Info().Str("task_id", task.ID).Str("created_by", sessionData.UserID).Msg("Task created")
	c.JSON(http.StatusCreated, gin.H{"message": "Task created successfully", "task": toTask(task)})
}

func (s *Server) updateTask(c *gin.Context) {
	task, ok := s.findTask(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, taskBindMessage(err))
		return
	}

	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Attachments != nil {
		task.Attachments = *req.Attachments
	}
	if req.TodoChecklist != nil {
		task.Checklist = *req.TodoChecklist
	}

	var assignees []UserRecord
	if req.AssignedTo != nil {
		if assignees, ok = s.findAssignees(c, *req.AssignedTo); !ok {
			return
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.AssignedTo != nil {
			if err := tx.Model(task).Association("Assignees").Replace(assignees); err != nil {
				return err
			}
			task.Assignees = assignees
		}
		return tx.Omit(clause.Associations).Save(task).Error
	})
	if err != nil {
		s.internalError(c, err, "Failed to update task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully", "updatedTask": toTask(task)})
}

func (s *Server) deleteTask(c *gin.Context) {
	task, ok := s.findTask(c)
	if !ok {
		return
	}

	if err := s.db.Select("Assignees").Delete(task).Error; err != nil {
		s.internalError(c, err, "Failed to delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// canWork reports whether the session may change the status or checklist of
// a task
func canWork(sessionData *auth.SessionData, task *TaskRecord) bool {
	return sessionData.IsAdmin() || task.isAssigned(sessionData.UserID)
}

func (s *Server) updateTaskStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}

	task, ok := s.findTask(c)
	if !ok {
		return
	}

	sessionData, _ := GetSessionData(c)
	if !canWork(sessionData, task) {
		fail(c, http.StatusForbidden, "Not authorized")
		return
	}

	task.Status = req.Status
	if models.Status(req.Status) == models.StatusCompleted {
		for i := range task.Checklist {
			task.Checklist[i].Completed = true
		}
		task.Progress = 100
	}

	if err := s.db.Omit(clause.Associations).Save(task).Error; err != nil {
		s.internalError(c, err, "Failed to update task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task status updated", "task": toTask(task)})
}

func (s *Server) updateTaskChecklist(c *gin.Context) {
	var req ChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}

	task, ok := s.findTask(c)
	if !ok {
		return
	}

	sessionData, _ := GetSessionData(c)
	if !canWork(sessionData, task) {
		fail(c, http.StatusForbidden, "Not authorized to update checklist")
		return
	}

	task.Checklist = req.TodoChecklist
	task.applyChecklist()

	if err := s.db.Omit(clause.Associations).Save(task).Error; err != nil {
		s.internalError(c, err, "Failed to update checklist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task checklist updated", "task": toTask(task)})
}

func (s *Server) dashboardData(c *gin.Context) {
	s.writeDashboard(c)
}

func (s *Server) userDashboardData(c *gin.Context) {
	s.writeDashboard(c)
}

// writeDashboard answers with statistics over the tasks the session can see
func (s *Server) writeDashboard(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	tasks, err := s.scopedTasks(sessionData)
	if err != nil {
		s.internalError(c, err, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, buildDashboard(tasks, s.now()))
}

// buildDashboard computes the dashboard counters of tasks
func buildDashboard(tasks []TaskRecord, now time.Time) models.DashboardData {
	var data models.DashboardData

	for i := range tasks {
		t := &tasks[i]
		data.Statistics.TotalTasks++

		switch models.Status(t.Status) {
		case models.StatusPending:
			data.Statistics.PendingTasks++
			data.Charts.TaskDistribution.Pending++
		case models.StatusInProgress:
			data.Charts.TaskDistribution.InProgress++
		case models.StatusCompleted:
			data.Statistics.CompletedTasks++
			data.Charts.TaskDistribution.Completed++
		}

		if t.DueDate != nil && t.Status != string(models.StatusCompleted) && t.DueDate.Before(now) {
			data.Statistics.OverdueTasks++
		}

		switch models.Priority(t.Priority) {
		case models.PriorityLow:
			data.Charts.TaskPriorityLevels.Low++
		case models.PriorityMedium:
			data.Charts.TaskPriorityLevels.Medium++
		case models.PriorityHigh:
			data.Charts.TaskPriorityLevels.High++
		}
	}
	data.Charts.TaskDistribution.All = data.Statistics.TotalTasks

	recent := append([]TaskRecord(nil), tasks...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentTaskLimit {
		recent = recent[:recentTaskLimit]
	}
	data.RecentTasks = make([]models.Task, 0, len(recent))
	for i := range recent {
		data.RecentTasks = append(data.RecentTasks, toTask(&recent[i]))
	}

	return data
}
