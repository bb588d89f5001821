package server

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/nexa-tasks/nexa/internal/models"
)

// BaseModel provides common fields and auto-generated ULID for all records
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// UserRecord is a stored account
type UserRecord struct {
	BaseModel
	Name            string `gorm:"not null"`
	Email           string `gorm:"not null;uniqueIndex"`
	PasswordHash    string `gorm:"not null"`
	Role            string `gorm:"not null;default:user"`
	ProfileImageURL string
}

func (UserRecord) TableName() string { return "users" }

// TaskRecord is a stored task. Checklist and attachments are JSON columns.
type TaskRecord struct {
	BaseModel
	Title       string `gorm:"not null"`
	Description string
	Priority    string `gorm:"not null;default:Low"`
	Status      string `gorm:"not null;default:Pending"`
	DueDate     *time.Time
	CreatedByID string
	Progress    int               `gorm:"not null;default:0"`
	Attachments []string          `gorm:"serializer:json"`
	Checklist   []models.TodoItem `gorm:"serializer:json"`

	Assignees []UserRecord `gorm:"many2many:task_assignees"`
}

func (TaskRecord) TableName() string { return "tasks" }

// AutoMigrate creates or updates the sandbox schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserRecord{}, &TaskRecord{})
}

// toUser converts a record to its API shape. The password hash never leaves.
func toUser(rec *UserRecord) models.User {
	return models.User{
		ID:              rec.ID,
		Name:            rec.Name,
		Email:           rec.Email,
		Role:            models.Role(rec.Role),
		ProfileImageURL: rec.ProfileImageURL,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// toTask converts a record with preloaded assignees to its API shape
func toTask(rec *TaskRecord) models.Task {
	task := models.Task{
		ID:            rec.ID,
		Title:         rec.Title,
		Description:   rec.Description,
		Priority:      models.Priority(rec.Priority),
		Status:        models.Status(rec.Status),
		DueDate:       rec.DueDate,
		CreatedBy:     rec.CreatedByID,
		Attachments:   rec.Attachments,
		TodoChecklist: rec.Checklist,
		Progress:      rec.Progress,
		AssignedTo:    make([]models.Assignee, 0, len(rec.Assignees)),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
	if task.Attachments == nil {
		task.Attachments = []string{}
	}
	if task.TodoChecklist == nil {
		task.TodoChecklist = []models.TodoItem{}
	}
	for _, a := range rec.Assignees {
		task.AssignedTo = append(task.AssignedTo, models.Assignee{
			ID:              a.ID,
			Name:            a.Name,
			Email:           a.Email,
			ProfileImageURL: a.ProfileImageURL,
		})
	}
	task.CompletedTodoCount = task.CompletedTodos()
	return task
}

// isAssigned reports whether userID is among the task assignees
func (t *TaskRecord) isAssigned(userID string) bool {
	for _, a := range t.Assignees {
		if a.ID == userID {
			return true
		}
	}
	return false
}

// applyChecklist derives progress and status from the checklist
func (t *TaskRecord) applyChecklist() {
	total := len(t.Checklist)
	done := 0
	for _, item := range t.Checklist {
		if item.Completed {
			done++
		}
	}

	t.Progress = 0
	if total > 0 {
		t.Progress = (done*100 + total/2) / total
	}

	switch {
	case t.Progress == 100:
		t.Status = string(models.StatusCompleted)
	case t.Progress > 0:
		t.Status = string(models.StatusInProgress)
	default:
		t.Status = string(models.StatusPending)
	}
}
