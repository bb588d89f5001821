package profileselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexa-tasks/nexa/internal/cli/config"
)

func TestGetProfileByNameOrURL(t *testing.T) {
	cfg := &config.Config{Profiles: []config.Profile{
		{Name: "prod", APIURL: "https://prod.nexa.test"},
		{Name: "dev", APIURL: "http://localhost:8000"},
	}}

	p, err := GetProfileByNameOrURL(cfg, "dev")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", p.APIURL)

	p, err = GetProfileByNameOrURL(cfg, "https://prod.nexa.test")
	require.NoError(t, err)
	assert.Equal(t, "prod", p.Name)

	_, err = GetProfileByNameOrURL(cfg, "qa")
	assert.EqualError(t, err, "profile with name or URL 'qa' not found")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "dev (http://localhost:8000)", Label(&config.Profile{Name: "dev", APIURL: "http://localhost:8000"}))
}

func TestPromptWithoutProfiles(t *testing.T) {
	_, err := prompt(&config.Config{})
	assert.EqualError(t, err, "no profiles configured in .nexa.yaml")
}
