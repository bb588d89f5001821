// Package servertest runs the sandbox API inside tests.
package servertest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nexa-tasks/nexa/internal/config"
	"github.com/nexa-tasks/nexa/internal/models"
	"github.com/nexa-tasks/nexa/internal/server"
)

// AdminInviteToken is the invite token accepted by test sandboxes
const AdminInviteToken = "test-invite-token"

// Password is used for every account created through the helpers
const Password = "password123"

// Sandbox is a running test API with helper methods
type Sandbox struct {
	APIURL string
	Server *server.Server
	HTTP   *httptest.Server
	Config *config.Config
}

// Config returns a sandbox configuration backed by an in-memory database
func Config(t testing.TB) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Addr: "127.0.0.1:0", AllowOrigins: []string{"http://localhost:5173"}},
		Database: config.DatabaseConfig{URL: ":memory:"},
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret",
			TokenTTL:         time.Hour,
			AdminInviteToken: AdminInviteToken,
		},
		Uploads: config.UploadsConfig{Dir: t.TempDir()},
		Logging: config.LoggingConfig{Level: "error", Format: "console"},
	}
}

// Start runs a fresh sandbox for the duration of the test
func Start(t testing.TB) *Sandbox {
	t.Helper()

	cfg := Config(t)
	srv, err := server.New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err, "Failed to create sandbox server")

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		if sqlDB, err := srv.DB().DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &Sandbox{APIURL: ts.URL, Server: srv, HTTP: ts, Config: cfg}
}

// Register creates an account and returns it with its token. admin selects
// the invite token.
func (s *Sandbox) Register(t testing.TB, name, email string, admin bool) *models.User {
	t.Helper()

	body := map[string]string{"name": name, "email": email, "password": Password}
	if admin {
		body["adminInviteToken"] = AdminInviteToken
	}

	var user models.User
	s.do(t, http.MethodPost, "/api/auth/register", "", body, http.StatusCreated, &user)
	require.NotEmpty(t, user.Token, "register response has no token")
	return &user
}

// CreateTask creates a task as the admin holding token
func (s *Sandbox) CreateTask(t testing.TB, token, title string, assignees []string, todos ...string) *models.Task {
	t.Helper()

	checklist := make([]models.TodoItem, 0, len(todos))
	for _, text := range todos {
		checklist = append(checklist, models.TodoItem{Text: text})
	}
	due := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)

	body := map[string]any{
		"title":         title,
		"description":   title + " description",
		"priority":      "Medium",
		"dueDate":       due,
		"assignedTo":    assignees,
		"todoChecklist": checklist,
	}

	var resp struct {
		Task models.Task `json:"task"`
	}
	s.do(t, http.MethodPost, "/api/tasks", token, body, http.StatusCreated, &resp)
	return &resp.Task
}

func (s *Sandbox) do(t testing.TB, method, path, token string, body any, wantStatus int, result any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(method, s.APIURL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&raw)
	require.Equal(t, wantStatus, resp.StatusCode, fmt.Sprintf("%s %s: %s", method, path, raw))

	if result != nil {
		require.NoError(t, json.Unmarshal(raw, result))
	}
}
