package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config at a temp dir and clears NEXA_* variables
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	for _, key := range []string{EnvAPIURL, EnvTimeout, EnvProfile, EnvTokenStore, EnvLogLevel, EnvLogFormat} {
		t.Setenv(key, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestResolve_Defaults(t *testing.T) {
	home := isolate(t)

	s, err := Resolve(t.TempDir(), Overrides{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "local", s.Profile)
	assert.Equal(t, DefaultAPIURL, s.APIURL)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.Equal(t, "keyring", s.TokenStore)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "console", s.LogFormat)
	assert.Equal(t, filepath.Join(home, "nexa"), s.StateDir)
	assert.Empty(t, s.ProjectFile)
}

func TestResolve_ProjectFileFoundUpwards(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), `
profiles:
  - name: staging
    api_url: https://staging.nexa.test
    timeout: 3s
    token_store: file
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	s, err := Resolve(nested, Overrides{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "staging", s.Profile)
	assert.Equal(t, "https://staging.nexa.test", s.APIURL)
	assert.Equal(t, 3*time.Second, s.Timeout)
	assert.Equal(t, "file", s.TokenStore)
	assert.Equal(t, filepath.Join(root, ConfigFileName), s.ProjectFile)
}

func TestResolve_Precedence(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `
profiles:
  - name: prod
    api_url: https://prod.nexa.test
  - name: dev
    api_url: http://dev.nexa.test
`)
	writeFile(t, filepath.Join(dir, ".env"), "NEXA_TIMEOUT=2500\nNEXA_LOG_LEVEL=info\n")
	writeFile(t, filepath.Join(dir, ".env.local"), "NEXA_LOG_LEVEL=debug\n")
	t.Setenv(EnvProfile, "dev")

	s, err := Resolve(dir, Overrides{APIURL: "http://flag.nexa.test"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "dev", s.Profile, "environment selects the profile")
	assert.Equal(t, "http://flag.nexa.test", s.APIURL, "flag beats profile")
	assert.Equal(t, 2500*time.Millisecond, s.Timeout, ".env supplies milliseconds")
	assert.Equal(t, "debug", s.LogLevel, ".env.local beats .env")
}

func TestResolve_RememberedProfileAndChooser(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `
profiles:
  - name: one
    api_url: http://one
  - name: two
    api_url: http://two
`)

	var offered []string
	chooser := func(cfg *Config) (*Profile, error) {
		for _, p := range cfg.Profiles {
			offered = append(offered, p.Name)
		}
		return &cfg.Profiles[1], nil
	}

	s, err := Resolve(dir, Overrides{}, chooser)
	require.NoError(t, err)
	assert.Equal(t, "two", s.Profile)
	assert.Equal(t, []string{"one", "two"}, offered)

	require.NoError(t, SetSelectedProfile("one"))
	offered = nil
	s, err = Resolve(dir, Overrides{}, chooser)
	require.NoError(t, err)
	assert.Equal(t, "one", s.Profile)
	assert.Empty(t, offered, "remembered profile skips the chooser")
}

func TestResolve_UnknownProfile(t *testing.T) {
	isolate(t)
	_, err := Resolve(t.TempDir(), Overrides{Profile: "nope"}, nil)
	assert.EqualError(t, err, "profile 'nope' not found")
}

func TestResolve_InvalidTimeout(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTimeout, "soon")
	_, err := Resolve(t.TempDir(), Overrides{}, nil)
	assert.ErrorContains(t, err, "invalid NEXA_TIMEOUT")
}

func TestMerge(t *testing.T) {
	base := &Config{Profiles: []Profile{{Name: "a", APIURL: "http://a"}, {Name: "b", APIURL: "http://b"}}}
	merged := base.Merge(&Config{Profiles: []Profile{{Name: "b", APIURL: "http://b2"}, {Name: "c", APIURL: "http://c"}}})

	assert.Equal(t, []Profile{
		{Name: "a", APIURL: "http://a"},
		{Name: "b", APIURL: "http://b2"},
		{Name: "c", APIURL: "http://c"},
	}, merged.Profiles)
	assert.Len(t, base.Profiles, 2, "receiver untouched")
}

func TestLoad_RejectsUnnamedProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, "profiles:\n  - api_url: http://x\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "has no name")
}

func TestSaveAndLoadUser(t *testing.T) {
	isolate(t)

	cfg, err := LoadUser()
	require.NoError(t, err)
	assert.Empty(t, cfg.SelectedProfile)

	require.NoError(t, SaveUser(&UserConfig{SelectedProfile: "dev", LogLevel: "debug"}))
	cfg, err = LoadUser()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.SelectedProfile)
	assert.Equal(t, "debug", cfg.LogLevel)
}
