package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zerolog.Disabled, parseLogLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel("nonsense"))
}

func TestInitWithWriter_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	l := InitWithWriter("info", "json", &buf)
	l.Debug().Msg("hidden")
	api := Component("api")
	api.Info().Str("path", "/api/tasks").Msg("API request")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "API request", entry["message"])
	assert.Equal(t, "api", entry["component"])
	assert.Equal(t, "/api/tasks", entry["path"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestInitWithWriter_ConsoleHasNoColorOffTerminal(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	l := InitWithWriter("warn", "console", &buf)
	l.Warn().Msg("Request timeout. Please try again.")

	assert.Contains(t, buf.String(), "Request timeout. Please try again.")
	assert.NotContains(t, buf.String(), "\x1b[")
}
