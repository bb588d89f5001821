package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SANDBOX_ADDR", "SANDBOX_DB", "SANDBOX_JWT_SECRET", "SANDBOX_TOKEN_TTL",
		"SANDBOX_ADMIN_INVITE_TOKEN", "SANDBOX_UPLOAD_DIR", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "nexa-sandbox.sqlite", cfg.Database.URL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Len(t, cfg.Auth.JWTSecret, 64, "a random secret is generated")
	assert.Empty(t, cfg.Auth.AdminInviteToken)
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)
	t.Setenv("SANDBOX_ADDR", "127.0.0.1:9000")
	t.Setenv("SANDBOX_JWT_SECRET", "fixed")
	t.Setenv("SANDBOX_TOKEN_TTL", "90m")
	t.Setenv("SANDBOX_ADMIN_INVITE_TOKEN", "let-me-in")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "fixed", cfg.Auth.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "let-me-in", cfg.Auth.AdminInviteToken)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	clearEnv(t)
	os.Unsetenv("SANDBOX_DB")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SANDBOX_DB=from-dotenv.sqlite\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.sqlite", cfg.Database.URL)
}

func TestLoadRejectsBadTTL(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)
	t.Setenv("SANDBOX_TOKEN_TTL", "a week")

	_, err := Load()
	require.ErrorContains(t, err, "invalid SANDBOX_TOKEN_TTL")
}

func TestGenerateSecretIsRandom(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
