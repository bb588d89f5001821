package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "nexa"
	userConfigFile = "config.yaml"
)

// UserConfig represents the user's local configuration stored in
// ~/.config/nexa/config.yaml
type UserConfig struct {
	SelectedProfile string    `yaml:"selected_profile,omitempty"`
	LogLevel        string    `yaml:"log_level,omitempty"`
	LogFormat       string    `yaml:"log_format,omitempty"`
	Profiles        []Profile `yaml:"profiles,omitempty"`
}

// Dir returns the nexa config directory. XDG_CONFIG_HOME is honoured.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configDirName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName), nil
}

// UserConfigPath returns the path to the user config file
func UserConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, userConfigFile), nil
}

// LoadUser reads the user configuration file. A missing file yields an empty
// config.
func LoadUser() (*UserConfig, error) {
	configPath, err := UserConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// SaveUser writes the user configuration file
func SaveUser(cfg *UserConfig) error {
	configPath, err := UserConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetSelectedProfile updates the selected profile and saves the config
func SetSelectedProfile(name string) error {
	cfg, err := LoadUser()
	if err != nil {
		return err
	}

	cfg.SelectedProfile = name
	return SaveUser(cfg)
}
