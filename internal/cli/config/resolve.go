package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Resolve
const (
	EnvAPIURL     = "NEXA_API_URL"
	EnvTimeout    = "NEXA_TIMEOUT"
	EnvProfile    = "NEXA_PROFILE"
	EnvTokenStore = "NEXA_TOKEN_STORE"
	EnvLogLevel   = "NEXA_LOG_LEVEL"
	EnvLogFormat  = "NEXA_LOG_FORMAT"
)

// Defaults used when nothing else is configured
const (
	DefaultAPIURL     = "http://localhost:8000"
	DefaultTimeout    = 10 * time.Second
	DefaultTokenStore = "keyring"
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "console"
)

// Overrides are command line values; zero values are ignored
type Overrides struct {
	Profile    string
	APIURL     string
	Timeout    time.Duration
	TokenStore string
	LogLevel   string
	LogFormat  string
}

// Settings is the fully resolved client configuration
type Settings struct {
	Profile    string
	APIURL     string
	Timeout    time.Duration
	TokenStore string
	StateDir   string // Holds the file token store
	LogLevel   string
	LogFormat  string

	// ProjectFile is the .nexa.yaml in effect, if any
	ProjectFile string
}

// Chooser picks a profile when none was named explicitly or remembered
type Chooser func(cfg *Config) (*Profile, error)

// FirstProfile is the non-interactive chooser
func FirstProfile(cfg *Config) (*Profile, error) {
	if len(cfg.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles configured")
	}
	return &cfg.Profiles[0], nil
}

// Environment looks variables up in the process environment first, then in
// .env.local and .env of the working directory
type Environment struct {
	files []map[string]string
}

// LoadEnvironment reads .env.local and .env from dir. Missing files are
// skipped.
func LoadEnvironment(dir string) *Environment {
	env := &Environment{}
	for _, name := range []string{".env.local", ".env"} {
		values, err := godotenv.Read(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		env.files = append(env.files, values)
	}
	return env
}

// Get returns the first non-empty value for key
func (e *Environment) Get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	for _, values := range e.files {
		if v := values[key]; v != "" {
			return v
		}
	}
	return ""
}

// Resolve layers flags over environment over profile files over defaults
func Resolve(workDir string, flags Overrides, choose Chooser) (*Settings, error) {
	env := LoadEnvironment(workDir)

	user, err := LoadUser()
	if err != nil {
		return nil, err
	}

	merged, projectFile, err := Profiles(workDir, user)
	if err != nil {
		return nil, err
	}
	settings := &Settings{ProjectFile: projectFile}

	profile, err := selectProfile(merged, first(flags.Profile, env.Get(EnvProfile)), user.SelectedProfile, choose)
	if err != nil {
		return nil, err
	}
	settings.Profile = profile.Name

	settings.APIURL = first(flags.APIURL, env.Get(EnvAPIURL), profile.APIURL, DefaultAPIURL)
	settings.TokenStore = first(flags.TokenStore, env.Get(EnvTokenStore), profile.TokenStore, DefaultTokenStore)
	settings.LogLevel = first(flags.LogLevel, env.Get(EnvLogLevel), user.LogLevel, DefaultLogLevel)
	settings.LogFormat = first(flags.LogFormat, env.Get(EnvLogFormat), user.LogFormat, DefaultLogFormat)

	settings.Timeout = flags.Timeout
	if settings.Timeout == 0 {
		if raw := env.Get(EnvTimeout); raw != "" {
			if settings.Timeout, err = parseTimeout(raw); err != nil {
				return nil, fmt.Errorf("invalid %s: %w", EnvTimeout, err)
			}
		}
	}
	if settings.Timeout == 0 {
		if settings.Timeout, err = profile.TimeoutDuration(); err != nil {
			return nil, err
		}
	}
	if settings.Timeout == 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.StateDir, err = Dir(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Profiles returns the user's profiles overlaid by the nearest .nexa.yaml, or
// the default profile when neither defines any. The project file path is
// empty when none was found.
func Profiles(workDir string, user *UserConfig) (*Config, string, error) {
	merged := &Config{Profiles: user.Profiles}
	projectFile := ""
	if path, err := FindConfigFile(workDir); err == nil {
		project, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		merged = merged.Merge(project)
		projectFile = path
	}
	if len(merged.Profiles) == 0 {
		merged = DefaultConfig()
	}
	return merged, projectFile, nil
}

// selectProfile determines which profile to use based on the following priority:
// 1. An explicitly named profile (flag or environment)
// 2. The profile remembered in the user config, if it still exists
// 3. The only profile, when there is exactly one
// 4. Otherwise, the chooser
func selectProfile(cfg *Config, explicit, remembered string, choose Chooser) (*Profile, error) {
	if explicit != "" {
		return cfg.GetProfile(explicit)
	}

	if remembered != "" {
		if p, err := cfg.GetProfile(remembered); err == nil {
			return p, nil
		}
	}

	if len(cfg.Profiles) == 1 {
		return &cfg.Profiles[0], nil
	}

	if choose == nil {
		choose = FirstProfile
	}
	return choose(cfg)
}

// parseTimeout accepts a Go duration or a plain number of milliseconds
func parseTimeout(raw string) (time.Duration, error) {
	if ms, err := strconv.Atoi(raw); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("timeout must be positive")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive")
	}
	return d, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
