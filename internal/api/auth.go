package api

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nexa-tasks/nexa/internal/models"
)

// RegisterRequest represents the signup request body
type RegisterRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	ProfileImageURL  string `json:"profileImageUrl,omitempty"`
	AdminInviteToken string `json:"adminInviteToken,omitempty"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate represents the profile update request body
type ProfileUpdate struct {
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// ChangePasswordRequest represents the change-password request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// MessageResponse is the generic {"message": "..."} acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

type uploadImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// Register creates a new account and returns it with its token
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	var user models.User
	if err := c.Post(ctx, PathRegister, req, &user); err != nil {
		return nil, err
	}
	if err := validateSession(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates the user and returns the account with its token
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := c.Post(ctx, PathLogin, LoginRequest{Email: email, Password: password}, &user); err != nil {
		return nil, err
	}
	if err := validateSession(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile returns the logged-in user
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Get(ctx, PathProfile, &user); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile response: %w", err)
	}
	return &user, nil
}

// UpdateProfile changes profile fields of the logged-in user
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.Put(ctx, PathProfile, update, &user); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile response: %w", err)
	}
	return &user, nil
}

// ChangePassword replaces the password of the logged-in user
func (c *Client) ChangePassword(ctx context.Context, current, next string) (*MessageResponse, error) {
	var resp MessageResponse
	req := ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	if err := c.Put(ctx, PathChangePassword, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadImage uploads a profile image and returns its public URL
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var resp uploadImageResponse
	if err := c.Upload(ctx, PathUploadImage, "image", filename, r, &resp); err != nil {
		return "", err
	}
	if resp.ImageURL == "" {
		return "", fmt.Errorf("image upload failed: server returned no imageUrl")
	}
	return resp.ImageURL, nil
}

func validateSession(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid auth response: %w", err)
	}
	if user.Token == "" {
		return fmt.Errorf("invalid auth response: missing token")
	}
	return nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The second return is false when the token is not a JWT or carries no exp.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
