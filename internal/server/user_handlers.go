package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nexa-tasks/nexa/internal/auth"
	"github.com/nexa-tasks/nexa/internal/models"
)

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
}

// UpdateUserRequest represents a request to change a user
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Role  string `json:"role" binding:"omitempty,oneof=admin user"`
}

// statusCounts counts tasks per status for each assignee
type statusCounts struct {
	UserID string
	Status string
	Count  int
}

// findUser loads a user by the :id path parameter, answering 404 when missing
func (s *Server) findUser(c *gin.Context) (*UserRecord, bool) {
	var user UserRecord
	if err := s.db.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return nil, false
		}
		s.internalError(c, err, "Failed to find user")
		return nil, false
	}
	return &user, true
}

// listUsers returns the members with their task counters
func (s *Server) listUsers(c *gin.Context) {
	var users []UserRecord
	if err := s.db.Where("role = ?", string(models.RoleUser)).Order("created_at DESC").Find(&users).Error; err != nil {
		s.internalError(c, err, "Failed to list users")
		return
	}

	var counts []statusCounts
	err := s.db.Table("task_assignees").
		Select("task_assignees.user_record_id AS user_id, tasks.status AS status, COUNT(*) AS count").
		Joins("JOIN tasks ON tasks.id = task_assignees.task_record_id").
		Group("task_assignees.user_record_id, tasks.status").
		Scan(&counts).Error
	if err != nil {
		s.internalError(c, err, "Failed to count tasks")
		return
	}

	byUser := make(map[string]map[string]int)
	for _, row := range counts {
		if byUser[row.UserID] == nil {
			byUser[row.UserID] = make(map[string]int)
		}
		byUser[row.UserID][row.Status] = row.Count
	}

	out := make([]models.User, 0, len(users))
	for i := range users {
		u := toUser(&users[i])
		u.PendingTasks = byUser[u.ID][string(models.StatusPending)]
		u.InProgressTasks = byUser[u.ID][string(models.StatusInProgress)]
		u.CompletedTasks = byUser[u.ID][string(models.StatusCompleted)]
		out = append(out, u)
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) getUser(c *gin.Context) {
	user, ok := s.findUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toUser(user))
}

func (s *Server) createUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var count int64
	if err := s.db.Model(&UserRecord{}).Where("email = ?", email).Count(&count).Error; err != nil {
		s.internalError(c, err, "Failed to check user")
		return
	}
	if count > 0 {
		fail(c, http.StatusBadRequest, "User already exists")
		return
	}

	role := req.Role
	if role == "" {
		role = string(models.RoleUser)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(c, err, "Failed to create user")
		return
	}

	user := &UserRecord{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.db.Create(user).Error; err != nil {
		s.internalError(c, err, "Failed to create user")
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("user_id", user.ID).
		Str("created_by", sessionData.UserID).
		Msg("User created")

	c.JSON(http.StatusCreated, toUser(user))
}

func (s *Server) updateUser(c *gin.Context) {
	user, ok := s.findUser(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}

	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Role != "" {
		user.Role = req.Role
	}

	if err := s.db.Save(user).Error; err != nil {
		s.internalError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, toUser(user))
}

func (s *Server) deleteUser(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	// Prevent deleting self
	if c.Param("id") == sessionData.UserID {
		fail(c, http.StatusBadRequest, "Cannot delete yourself")
		return
	}

	user, ok := s.findUser(c)
	if !ok {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_assignees WHERE user_record_id = ?", user.ID).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		s.internalError(c, err, "Failed to delete user")
		return
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("deleted_by", sessionData.UserID).
		Msg("User deleted")

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
