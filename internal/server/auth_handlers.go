package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/nexa-tasks/nexa/internal/auth"
	"github.com/nexa-tasks/nexa/internal/models"
)

// RegisterRequest represents a signup request
type RegisterRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	ProfileImageURL  string `json:"profileImageUrl"`
	AdminInviteToken string `json:"adminInviteToken"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdateRequest represents a profile update
type ProfileUpdateRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email" binding:"omitempty,email"`
	Password        string `json:"password" binding:"omitempty,min=8"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

var allowedImageTypes = map[string]bool{".jpeg": true, ".jpg": true, ".png": true}

// fail writes the {"message": ...} error body used by every endpoint
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// internalError logs err and answers 500
func (s *Server) internalError(c *gin.Context, err error, message string) {
	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	fail(c, http.StatusInternalServerError, message)
}

// bindMessage turns a binding error into a readable message
func bindMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request body"
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "priority":
		return "Priority must be one of: Low, Medium, High"
	case "taskstatus":
		return "Status must be one of: Pending, In Progress, Completed"
	}
	return fmt.Sprintf("%s is invalid", field)
}

// sessionUser loads the user of the current request
func (s *Server) sessionUser(c *gin.Context) (*UserRecord, bool) {
	sessionData, ok := GetSessionData(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Not authorized, no token")
		return nil, false
	}

	var user UserRecord
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return nil, false
		}
		s.internalError(c, err, "Failed to find user")
		return nil, false
	}
	return &user, true
}

// withToken returns the user shape of login and register responses
func (s *Server) withToken(user *UserRecord) (models.User, error) {
	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return models.User{}, err
	}
	out := toUser(user)
	out.Token = token
	return out, nil
}

func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
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

	role := string(models.RoleUser)
	if req.AdminInviteToken != "" && s.config.Auth.AdminInviteToken != "" &&
		req.AdminInviteToken == s.config.Auth.AdminInviteToken {
		role = string(models.RoleAdmin)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(c, err, "Failed to create user")
		return
	}

	user := &UserRecord{
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		PasswordHash:    passwordHash,
		Role:            role,
		ProfileImageURL: req.ProfileImageURL,
	}
	if err := s.db.Create(user).Error; err != nil {
		s.internalError(c, err, "Failed to create user")
		return
	}

	resp, err := s.withToken(user)
	if err != nil {
		s.internalError(c, err, "Failed to generate token")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", role).Msg("User registered")
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}

	// Find user by email
	var user UserRecord
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.internalError(c, err, "Failed to find user")
		return
	}

	// Verify password
	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	resp, err := s.withToken(&user)
	if err != nil {
		s.internalError(c, err, "Failed to generate token")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User logged in")
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getProfile(c *gin.Context) {
	user, ok := s.sessionUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toUser(user))
}

func (s *Server) updateProfile(c *gin.Context) {
	user, ok := s.sessionUser(c)
	if !ok {
		return
	}

	var req ProfileUpdateRequest
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
	if req.ProfileImageURL != "" {
		user.ProfileImageURL = req.ProfileImageURL
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			s.internalError(c, err, "Failed to update profile")
			return
		}
		user.PasswordHash = hash
	}

	if err := s.db.Save(user).Error; err != nil {
		s.internalError(c, err, "Failed to update profile")
		return
	}

	resp, err := s.withToken(user)
	if err != nil {
		s.internalError(c, err, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) changePassword(c *gin.Context) {
	user, ok := s.sessionUser(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		fail(c, http.StatusBadRequest, "Please provide current and new password")
		return
	}
	if len(req.NewPassword) < 8 {
		fail(c, http.StatusBadRequest, "New password must be at least 8 characters")
		return
	}

	// A wrong current password is a business error, not an expired session
	if err := auth.VerifyPassword(req.CurrentPassword, user.PasswordHash); err != nil {
		fail(c, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.internalError(c, err, "Failed to change password")
		return
	}
	if err := s.db.Model(user).Update("password_hash", hash).Error; err != nil {
		s.internalError(c, err, "Failed to change password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

func (s *Server) uploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageTypes[ext] {
		fail(c, http.StatusBadRequest, "Only .jpeg, .jpg and .png formats are allowed")
		return
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(s.config.Uploads.Dir, name)); err != nil {
		s.internalError(c, err, "Failed to save image")
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": fmt.Sprintf("%s://%s/uploads/%s", scheme, c.Request.Host, name)})
}
