package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = ".nexa.yaml"

// Profile represents one Nexa Tasks API the client can talk to
type Profile struct {
	Name       string `yaml:"name"`
	APIURL     string `yaml:"api_url"`
	Timeout    string `yaml:"timeout,omitempty"`     // Go duration, e.g. "10s"
	TokenStore string `yaml:"token_store,omitempty"` // keyring, file or memory
}

// TimeoutDuration parses the profile timeout, zero when unset
func (p *Profile) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout '%s' for profile '%s': %w", p.Timeout, p.Name, err)
	}
	return d, nil
}

// Config represents a profile file, either the project .nexa.yaml or the
// user config
type Config struct {
	Profiles []Profile `yaml:"profiles"`
}

// DefaultConfig returns a default configuration pointing at a local API
func DefaultConfig() *Config {
	return &Config{
		Profiles: []Profile{
			{
				Name:   "local",
				APIURL: "http://localhost:8000",
			},
		},
	}
}

// FindConfigFile searches for .nexa.yaml in the start directory and its parents
func FindConfigFile(start string) (string, error) {
	// Search upwards until we find .nexa.yaml or reach root
	dir := start
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found in %s or any parent directory", ConfigFileName, start)
}

// Load reads a profile file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for i, p := range cfg.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile #%d in %s has no name", i+1, path)
		}
	}

	return &cfg, nil
}

// Save writes a profile file
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetProfile returns a profile by its name
func (c *Config) GetProfile(name string) (*Profile, error) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile '%s' not found", name)
}

// Merge returns the profiles of c overlaid by those of other; profiles with
// the same name are replaced, new ones are appended
func (c *Config) Merge(other *Config) *Config {
	merged := &Config{Profiles: append([]Profile(nil), c.Profiles...)}
	if other == nil {
		return merged
	}
	for _, p := range other.Profiles {
		replaced := false
		for i := range merged.Profiles {
			if merged.Profiles[i].Name == p.Name {
				merged.Profiles[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			merged.Profiles = append(merged.Profiles, p)
		}
	}
	return merged
}
