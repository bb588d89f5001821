package api

import (
	"context"
	"fmt"

	"github.com/nexa-tasks/nexa/internal/models"
)

// UserInput represents the create/update user request body
type UserInput struct {
	Name     string      `json:"name,omitempty"`
	Email    string      `json:"email,omitempty"`
	Password string      `json:"password,omitempty"`
	Role     models.Role `json:"role,omitempty"`
}

// ListUsers returns all member accounts with their task counters
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.Get(ctx, PathUsers, &users); err != nil {
		return nil, err
	}
	for i := range users {
		if err := users[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid users response: %w", err)
		}
	}
	return users, nil
}

// GetUser returns a single user
func (c *Client) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := c.Get(ctx, UserPath(userID), &user); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user response: %w", err)
	}
	return &user, nil
}

// CreateUser creates an account on behalf of an admin
func (c *Client) CreateUser(ctx context.Context, input UserInput) (*models.User, error) {
	var user models.User
	if err := c.Post(ctx, PathUsers, input, &user); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user response: %w", err)
	}
	return &user, nil
}

// UpdateUser changes an account
func (c *Client) UpdateUser(ctx context.Context, userID string, input UserInput) (*models.User, error) {
	var user models.User
	if err := c.Put(ctx, UserPath(userID), input, &user); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user response: %w", err)
	}
	return &user, nil
}

// DeleteUser removes an account
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.Delete(ctx, UserPath(userID), nil)
}
